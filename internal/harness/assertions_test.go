package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bitshub/internal/domain"
	"github.com/roach88/bitshub/internal/engine"
	"github.com/roach88/bitshub/internal/persist"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Action: "register", Outcome: OutcomeOK, CreatedID: "id-1"},
		{Seq: 2, Action: "add_to_cart", Outcome: OutcomeOK},
		{Seq: 3, Action: "place_order", Outcome: OutcomeRejected, Code: "address_required"},
		{Seq: 4, Action: "add_to_cart", Outcome: OutcomeOK},
	}
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"register", "place_order"}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"add_to_cart", "add_to_cart"}}))

	err := assertTraceOrder(trace, Assertion{Actions: []string{"place_order", "register"}})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceOrder, ae.Type)
	assert.Contains(t, err.Error(), "3 place_order rejected address_required")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "add_to_cart", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "logout", Count: 0}))
	assert.Error(t, assertTraceCount(trace, Assertion{Action: "register", Count: 2}))
}

func TestAssertState(t *testing.T) {
	s := engine.NewState(nil)
	s.Cart = []domain.CartItem{{Product: domain.Product{ID: "p1", Price: 100}, Quantity: 2}}
	s.Orders = []domain.Order{{ID: "o1", UserID: "u1", Status: domain.StatusShipped}}
	s.Notifications = []domain.Notification{
		{ID: "n1", UserID: "u1"},
		{ID: "n2", UserID: "u1", Read: true},
		{ID: "n3", UserID: "u2"},
	}
	actx := &AssertionContext{
		Ctx:      context.Background(),
		State:    s,
		Bindings: map[string]string{"order": "o1", "user": "u1"},
	}

	ok := []Assertion{
		{Type: AssertCartTotal, Value: 200},
		{Type: AssertCartQuantity, Product: "p1", Value: 2},
		{Type: AssertCartQuantity, Product: "p9", Value: 0},
		{Type: AssertOrderStatus, Order: "${order}", Status: "shipped"},
		{Type: AssertNotificationCount, Count: 3},
		{Type: AssertNotificationCount, User: "${user}", Count: 2},
		{Type: AssertUnreadCount, User: "u1", Count: 1},
	}
	assert.Empty(t, EvaluateAssertions(NewResult(), ok, actx))

	bad := []Assertion{
		{Type: AssertCartTotal, Value: 1},
		{Type: AssertOrderStatus, Order: "o2", Status: "shipped"},
		{Type: AssertUnreadCount, User: "u2", Count: 0},
	}
	errs := EvaluateAssertions(NewResult(), bad, actx)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[1], "order not found")
}

func TestAssertStorageKey(t *testing.T) {
	ctx := context.Background()
	storage := persist.NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, persist.KeyCart, []byte("[]")))
	actx := &AssertionContext{Ctx: ctx, Storage: storage}

	yes, no := true, false
	assert.NoError(t, assertStorageKey(actx, Assertion{Key: persist.KeyCart, Present: &yes}))
	assert.NoError(t, assertStorageKey(actx, Assertion{Key: persist.KeyOrders, Present: &no}))
	assert.Error(t, assertStorageKey(actx, Assertion{Key: persist.KeyOrders, Present: &yes}))
}

func TestEvaluateAssertions_MissingContext(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{
		{Type: AssertCartTotal},
		{Type: AssertStorageKey, Key: "k"},
	}, nil)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "requires final state")
	assert.Contains(t, errs[1], "requires storage")
}

func TestFormatTrace(t *testing.T) {
	assert.Equal(t,
		"1 register ok -> id-1\n2 add_to_cart ok\n3 place_order rejected address_required\n4 add_to_cart ok\n",
		FormatTrace(sampleTrace()))
}
