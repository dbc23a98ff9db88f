// Package engine implements the storefront state machine.
//
// The engine owns one State tree (catalog, cart, user registry and session,
// orders, notifications) and changes it only through Dispatch.
//
// ARCHITECTURE:
//
// Single Writer:
// Dispatch holds the engine lock for the whole transition:
//  1. Reduce clones the current snapshot and applies the action to the clone
//  2. On success the clone becomes the current snapshot; on rejection it is
//     discarded and the previous snapshot stays
//  3. The transition is stamped with a logical seq from the Sequencer
//  4. Observers (persistence mirror, journal, metrics) run in registration
//     order
//
// Action Contract:
// Action is a sealed interface; the type switch in reducer.apply is the
// whole transition table. DecodeAction maps wire names to typed actions for
// the CLI, the HTTP surface and scenario files.
//
// Failures:
// Every failure is a *Rejection carrying a user-visible message. Nothing is
// partially applied and nothing propagates further than the Outcome.
//
// Time:
// Wall time comes from a Clock and is only used for timestamps and deadline
// checks (added-to-cart flash, cancellation window). There are no timers or
// background goroutines.
//
// Order lifecycle:
//
//	pending --accept--> confirmed --ship--> shipped --deliver--> delivered
//	   |                    |
//	   +------cancel--------+-----> cancelled
//
// SetOrderStatus is the administrative override and bypasses the arrows.
package engine
