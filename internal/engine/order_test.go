package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bitshub/internal/domain"
)

// checkoutReady registers a user with one address and a two-line cart.
func checkoutReady(t *testing.T, e *Engine) (userID, addressID string) {
	t.Helper()
	userID = registerAndLogin(t, e, "a@b.com")
	addressID = mustDispatch(t, e, AddAddress{UserID: userID, Address: domain.Address{Name: "Home", City: "Pune", Pincode: "411001"}}).CreatedID
	mustDispatch(t, e, AddToCart{Product: laptop})
	mustDispatch(t, e, AddToCart{Product: laptop})
	mustDispatch(t, e, AddToCart{Product: mouse})
	return userID, addressID
}

func placeOrder(t *testing.T, e *Engine) string {
	t.Helper()
	return mustDispatch(t, e, PlaceOrder{}).CreatedID
}

func orderOf(t *testing.T, e *Engine, id string) domain.Order {
	t.Helper()
	o, ok := e.Snapshot().Order(id)
	require.True(t, ok, "order %s", id)
	return o
}

func TestPlaceOrder(t *testing.T) {
	e, clock := newTestEngine(t)
	uid, aid := checkoutReady(t, e)

	out := mustDispatch(t, e, PlaceOrder{})

	assert.Equal(t, RedirectOrders, out.Redirect)
	snap := e.Snapshot()
	assert.Empty(t, snap.Cart)
	require.Len(t, snap.Orders, 1)

	o := snap.Orders[0]
	assert.Equal(t, out.CreatedID, o.ID)
	assert.Equal(t, uid, o.UserID)
	assert.Equal(t, domain.Money(250), o.Total)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, clock.Now(), o.CreatedAt)
	assert.Equal(t, aid, o.DeliveryAddress.ID)
	assert.Equal(t, domain.PaymentCard, o.PaymentMethod)
	assert.Nil(t, o.EstimatedDelivery)
	assert.True(t, o.CanCancel)
	require.Len(t, o.Items, 2)
	assert.Equal(t, 2, o.Items[0].Quantity)
}

func TestPlaceOrder_TotalIsSnapshot(t *testing.T) {
	e, _ := newTestEngine(t)
	checkoutReady(t, e)
	id := placeOrder(t, e)

	repriced := laptop
	repriced.Price = 1
	mustDispatch(t, e, UpdateProduct{Product: repriced})

	assert.Equal(t, domain.Money(250), orderOf(t, e, id).Total)
}

func TestPlaceOrder_NewestFirst(t *testing.T) {
	e, clock := newTestEngine(t)
	checkoutReady(t, e)
	first := placeOrder(t, e)

	clock.Advance(time.Minute)
	mustDispatch(t, e, AddToCart{Product: cans})
	second := placeOrder(t, e)

	snap := e.Snapshot()
	require.Len(t, snap.Orders, 2)
	assert.Equal(t, second, snap.Orders[0].ID)
	assert.Equal(t, first, snap.Orders[1].ID)
}

func TestPlaceOrder_ChosenAddress(t *testing.T) {
	e, _ := newTestEngine(t)
	uid, _ := checkoutReady(t, e)
	office := mustDispatch(t, e, AddAddress{UserID: uid, Address: domain.Address{Name: "Office"}}).CreatedID

	id := mustDispatch(t, e, PlaceOrder{AddressID: office}).CreatedID

	assert.Equal(t, office, orderOf(t, e, id).DeliveryAddress.ID)
}

func TestPlaceOrder_Rejections(t *testing.T) {
	t.Run("not logged in", func(t *testing.T) {
		e, _ := newTestEngine(t)
		mustDispatch(t, e, AddToCart{Product: laptop})

		out := e.Dispatch(PlaceOrder{})
		assert.True(t, IsRejection(out.Err, CodeNotLoggedIn))
		assert.Len(t, e.Snapshot().Cart, 1)
	})

	t.Run("empty cart", func(t *testing.T) {
		e, _ := newTestEngine(t)
		uid := registerAndLogin(t, e, "a@b.com")
		mustDispatch(t, e, AddAddress{UserID: uid, Address: domain.Address{Name: "Home"}})

		out := e.Dispatch(PlaceOrder{})
		assert.True(t, IsRejection(out.Err, CodeEmptyCart))
		assert.Empty(t, e.Snapshot().Orders)
	})

	t.Run("no address redirects to the form", func(t *testing.T) {
		e, _ := newTestEngine(t)
		registerAndLogin(t, e, "a@b.com")
		mustDispatch(t, e, AddToCart{Product: laptop})

		out := e.Dispatch(PlaceOrder{})
		assert.True(t, IsRejection(out.Err, CodeAddressRequired))
		assert.Equal(t, RedirectAddressForm, out.Redirect)
		assert.Len(t, e.Snapshot().Cart, 1, "cart survives a failed checkout")
	})

	t.Run("unknown address id", func(t *testing.T) {
		e, _ := newTestEngine(t)
		checkoutReady(t, e)

		out := e.Dispatch(PlaceOrder{AddressID: "nope"})
		assert.True(t, IsRejection(out.Err, CodeAddressRequired))
	})
}

func TestLifecycle_HappyPath(t *testing.T) {
	e, _ := newTestEngine(t)
	uid, _ := checkoutReady(t, e)
	id := placeOrder(t, e)

	mustDispatch(t, e, AcceptOrder{OrderID: id})
	o := orderOf(t, e, id)
	assert.Equal(t, domain.StatusConfirmed, o.Status)
	assert.True(t, o.CanCancel)

	mustDispatch(t, e, ShipOrder{OrderID: id})
	o = orderOf(t, e, id)
	assert.Equal(t, domain.StatusShipped, o.Status)
	assert.False(t, o.CanCancel)

	mustDispatch(t, e, DeliverOrder{OrderID: id})
	o = orderOf(t, e, id)
	assert.Equal(t, domain.StatusDelivered, o.Status)
	assert.False(t, o.CanCancel)

	notes := e.Snapshot().NotificationsFor(uid)
	require.Len(t, notes, 3)
	assert.Equal(t, domain.NotifySuccess, notes[0].Type)
	assert.Equal(t, domain.NotifyInfo, notes[1].Type)
	assert.Equal(t, "Your order #"+id+" has been shipped and is on its way!", notes[1].Message)
	assert.Equal(t, domain.NotifySuccess, notes[2].Type)
	assert.Equal(t, "Your order #"+id+" has been delivered successfully!", notes[2].Message)
	assert.Equal(t, 3, e.Snapshot().UnreadCount(uid))
}

func TestLifecycle_InvalidTransitions(t *testing.T) {
	rank := map[domain.OrderStatus]int{
		domain.StatusPending:   0,
		domain.StatusConfirmed: 1,
		domain.StatusShipped:   2,
		domain.StatusDelivered: 3,
	}

	tests := []struct {
		name   string
		setup  []func(id string) Action
		action func(id string) Action
	}{
		{"ship pending", nil, func(id string) Action { return ShipOrder{OrderID: id} }},
		{"deliver pending", nil, func(id string) Action { return DeliverOrder{OrderID: id} }},
		{"deliver confirmed", []func(string) Action{
			func(id string) Action { return AcceptOrder{OrderID: id} },
		}, func(id string) Action { return DeliverOrder{OrderID: id} }},
		{"accept twice", []func(string) Action{
			func(id string) Action { return AcceptOrder{OrderID: id} },
		}, func(id string) Action { return AcceptOrder{OrderID: id} }},
		{"accept shipped", []func(string) Action{
			func(id string) Action { return AcceptOrder{OrderID: id} },
			func(id string) Action { return ShipOrder{OrderID: id} },
		}, func(id string) Action { return AcceptOrder{OrderID: id} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			checkoutReady(t, e)
			id := placeOrder(t, e)
			for _, step := range tt.setup {
				mustDispatch(t, e, step(id))
			}
			before := orderOf(t, e, id)

			out := e.Dispatch(tt.action(id))

			require.True(t, IsRejection(out.Err, CodeInvalidTransition), "got %v", out.Err)
			after := orderOf(t, e, id)
			assert.Equal(t, before, after)
			assert.GreaterOrEqual(t, rank[after.Status], rank[before.Status])
		})
	}
}

func TestLifecycle_UnknownOrder(t *testing.T) {
	e, _ := newTestEngine(t)

	for _, a := range []Action{
		AcceptOrder{OrderID: "x"},
		ShipOrder{OrderID: "x"},
		DeliverOrder{OrderID: "x"},
		CancelOrder{OrderID: "x"},
		SetOrderStatus{OrderID: "x", Status: domain.StatusShipped},
		UpdateDeliveryDate{OrderID: "x", Date: time.Now()},
	} {
		out := e.Dispatch(a)
		assert.True(t, IsRejection(out.Err, CodeOrderNotFound), a.ActionName())
	}
}

func TestCancelOrder_Window(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		wantErr bool
	}{
		{"immediately", 0, false},
		{"after 23 hours", 23 * time.Hour, false},
		{"exactly 24 hours", 24 * time.Hour, false},
		{"after 25 hours", 25 * time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, clock := newTestEngine(t)
			checkoutReady(t, e)
			id := placeOrder(t, e)
			clock.Advance(tt.elapsed)

			out := e.Dispatch(CancelOrder{OrderID: id})

			o := orderOf(t, e, id)
			if tt.wantErr {
				require.True(t, IsRejection(out.Err, CodeCancellationWindowExpired), "got %v", out.Err)
				assert.Equal(t, "Order can only be cancelled within 24 hours of placement.", out.Err.(*Rejection).Message)
				assert.Equal(t, domain.StatusPending, o.Status)
				return
			}
			require.NoError(t, out.Err)
			assert.Equal(t, domain.StatusCancelled, o.Status)
			assert.False(t, o.CanCancel)
		})
	}
}

func TestCancelOrder_ConfirmedWithinWindow(t *testing.T) {
	e, clock := newTestEngine(t)
	checkoutReady(t, e)
	id := placeOrder(t, e)
	mustDispatch(t, e, AcceptOrder{OrderID: id})
	clock.Advance(2 * time.Hour)

	mustDispatch(t, e, CancelOrder{OrderID: id})

	assert.Equal(t, domain.StatusCancelled, orderOf(t, e, id).Status)
}

func TestCancelOrder_NotCancellable(t *testing.T) {
	e, _ := newTestEngine(t)
	checkoutReady(t, e)
	id := placeOrder(t, e)
	mustDispatch(t, e, AcceptOrder{OrderID: id})
	mustDispatch(t, e, ShipOrder{OrderID: id})

	out := e.Dispatch(CancelOrder{OrderID: id})

	assert.True(t, IsRejection(out.Err, CodeCancellationWindowExpired))
	assert.Equal(t, domain.StatusShipped, orderOf(t, e, id).Status)

	// cancelled orders stay cancelled
	e2, _ := newTestEngine(t)
	checkoutReady(t, e2)
	id2 := placeOrder(t, e2)
	mustDispatch(t, e2, CancelOrder{OrderID: id2})
	out = e2.Dispatch(CancelOrder{OrderID: id2})
	assert.True(t, IsRejection(out.Err, CodeCancellationWindowExpired))
	out = e2.Dispatch(AcceptOrder{OrderID: id2})
	assert.True(t, IsRejection(out.Err, CodeInvalidTransition))
}

func TestCancelOrder_CustomWindow(t *testing.T) {
	p := DefaultPolicy()
	p.CancelWindow = 90 * time.Minute
	e, clock := newTestEngine(t, WithPolicy(p))
	checkoutReady(t, e)
	id := placeOrder(t, e)
	clock.Advance(2 * time.Hour)

	out := e.Dispatch(CancelOrder{OrderID: id})

	require.True(t, IsRejection(out.Err, CodeCancellationWindowExpired))
	assert.Equal(t, "Order can only be cancelled within 1h30m0s of placement.", out.Err.(*Rejection).Message)
}

func TestSetOrderStatus(t *testing.T) {
	e, _ := newTestEngine(t)
	checkoutReady(t, e)
	id := placeOrder(t, e)

	mustDispatch(t, e, SetOrderStatus{OrderID: id, Status: domain.StatusShipped})
	o := orderOf(t, e, id)
	assert.Equal(t, domain.StatusShipped, o.Status)
	assert.False(t, o.CanCancel)
	assert.Nil(t, o.EstimatedDelivery)

	eta := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	mustDispatch(t, e, SetOrderStatus{OrderID: id, Status: domain.StatusConfirmed, EstimatedDelivery: &eta})
	o = orderOf(t, e, id)
	assert.Equal(t, domain.StatusConfirmed, o.Status)
	assert.True(t, o.CanCancel)
	require.NotNil(t, o.EstimatedDelivery)
	assert.Equal(t, eta, *o.EstimatedDelivery)

	mustDispatch(t, e, SetOrderStatus{OrderID: id, Status: domain.StatusDelivered})
	o = orderOf(t, e, id)
	require.NotNil(t, o.EstimatedDelivery, "estimate kept when none given")
	assert.Equal(t, eta, *o.EstimatedDelivery)

	out := e.Dispatch(SetOrderStatus{OrderID: id, Status: "lost"})
	assert.True(t, IsRejection(out.Err, CodeInvalidStatus))
}

func TestUpdateDeliveryDate(t *testing.T) {
	e, _ := newTestEngine(t)
	uid, _ := checkoutReady(t, e)
	id := placeOrder(t, e)
	mustDispatch(t, e, AcceptOrder{OrderID: id})

	date := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	mustDispatch(t, e, UpdateDeliveryDate{OrderID: id, Date: date})

	o := orderOf(t, e, id)
	assert.Equal(t, domain.StatusConfirmed, o.Status)
	require.NotNil(t, o.EstimatedDelivery)
	assert.Equal(t, date, *o.EstimatedDelivery)

	notes := e.Snapshot().NotificationsFor(uid)
	require.Len(t, notes, 2)
	assert.Equal(t, domain.NotifyInfo, notes[1].Type)
	assert.Equal(t, "Delivery date updated for order #"+id+". New estimated delivery: 05 Mar 2025", notes[1].Message)
}

func TestRestoreOrder_Prepends(t *testing.T) {
	e, _ := newTestEngine(t)
	mustDispatch(t, e, RestoreOrder{Order: domain.Order{ID: "old", Status: domain.StatusDelivered}})
	mustDispatch(t, e, RestoreOrder{Order: domain.Order{ID: "new", Status: domain.StatusPending, CanCancel: true}})

	snap := e.Snapshot()
	require.Len(t, snap.Orders, 2)
	assert.Equal(t, "new", snap.Orders[0].ID)
	assert.Equal(t, "old", snap.Orders[1].ID)
}

// A customer buys two laptops and a mouse, checks out, and the admin accepts.
func TestCheckoutToConfirmation(t *testing.T) {
	e, clock := newTestEngine(t)
	uid := registerAndLogin(t, e, "a@b.com")
	mustDispatch(t, e, AddToCart{Product: laptop})
	mustDispatch(t, e, AddToCart{Product: laptop})
	mustDispatch(t, e, AddToCart{Product: mouse})
	require.Equal(t, domain.Money(250), e.Snapshot().CartTotal())

	mustDispatch(t, e, AddAddress{UserID: uid, Address: domain.Address{Name: "Home", City: "Pune"}})
	out := mustDispatch(t, e, PlaceOrder{})
	id := out.CreatedID
	placedAt := clock.Now()

	clock.Advance(3 * time.Hour)
	mustDispatch(t, e, AcceptOrder{OrderID: id})

	o := orderOf(t, e, id)
	assert.Equal(t, domain.StatusConfirmed, o.Status)
	assert.Equal(t, domain.Money(250), o.Total)
	require.NotNil(t, o.EstimatedDelivery)
	assert.Equal(t, placedAt.Add(7*24*time.Hour), *o.EstimatedDelivery)

	notes := e.Snapshot().NotificationsFor(uid)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotifySuccess, notes[0].Type)
	assert.False(t, notes[0].Read)
	assert.Equal(t, "Your order #"+id+" has been confirmed and will be delivered by 08 Mar 2025", notes[0].Message)
	assert.Equal(t, clock.Now(), notes[0].CreatedAt)
}
