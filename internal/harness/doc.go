// Package harness runs storefront scenarios against a real engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: checkout_to_confirmation
//	description: "What this scenario validates"
//	catalog: catalog.cue        # optional, relative to the scenario file
//	setup:
//	  - action: register
//	    args: { fullName: A, email: a@b.com, password: pw, confirmPassword: pw }
//	    bind: user
//	flow:
//	  - dispatch: add_address
//	    args: { userId: "${user}", address: { name: Home } }
//	  - advance: 25h
//	  - dispatch: cancel_order
//	    args: { orderId: "${order}" }
//	    expect: { outcome: rejected, code: cancellation_window_expired }
//	assertions:
//	  - type: cart_total
//	    value: 250
//
// Setup steps must be accepted. Flow steps either dispatch an action or
// advance the manual clock. bind stores the step's created id under a name;
// "${name}" in any later string argument is replaced by it.
//
// # Assertion Types
//
//   - cart_total: cart total equals value
//   - cart_quantity: quantity of product equals value
//   - order_status: order has status
//   - notification_count: notifications (for user, if set) equal count
//   - unread_count: unread notifications for user equal count
//   - storage_key: key is present (or absent) in the mirrored storage
//   - trace_count: action was dispatched exactly count times
//   - trace_order: actions were dispatched in this order
//
// # Deterministic Testing
//
// Every run starts from a fresh engine with a manual clock at
// testutil.Epoch, sequential ids ("id-1", "id-2", ...) and an in-memory
// mirror, so traces are identical across runs and can be compared against
// golden files.
package harness
