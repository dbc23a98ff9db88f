package engine

import (
	"fmt"
	"time"

	"github.com/roach88/bitshub/internal/domain"
)

// deliveryDateLayout formats dates inside notification messages.
const deliveryDateLayout = "02 Jan 2006"

// placeOrder snapshots the cart into a pending order for the session user.
//
// The delivery address is the one named by AddressID, else the user's
// default, else their first address. A user without addresses is sent to the
// address form instead of getting an order.
func (r *reducer) placeOrder(a PlaceOrder) error {
	u := r.s.SessionUser()
	if u == nil {
		return reject(CodeNotLoggedIn, "Please login to place an order")
	}
	if len(r.s.Cart) == 0 {
		return reject(CodeEmptyCart, "Your cart is empty")
	}

	addr, ok := r.deliveryAddress(u, a.AddressID)
	if !ok {
		r.out.Redirect = RedirectAddressForm
		return reject(CodeAddressRequired, "Please select a delivery address", "address_id", a.AddressID)
	}

	order := domain.Order{
		ID:              r.ids.NewID(),
		UserID:          u.ID,
		Items:           append([]domain.CartItem{}, r.s.Cart...),
		Total:           r.s.CartTotal(),
		Status:          domain.StatusPending,
		CreatedAt:       r.now,
		DeliveryAddress: addr,
		PaymentMethod:   domain.PaymentCard,
		CanCancel:       true,
	}
	r.s.Orders = append([]domain.Order{order}, r.s.Orders...)
	r.s.Cart = []domain.CartItem{}

	r.out.CreatedID = order.ID
	r.out.Redirect = RedirectOrders
	return nil
}

func (r *reducer) deliveryAddress(u *domain.User, addressID string) (domain.Address, bool) {
	if addressID == "" {
		return u.DefaultAddress()
	}
	for _, addr := range u.Addresses {
		if addr.ID == addressID {
			return addr, true
		}
	}
	return domain.Address{}, false
}

// transition moves an order from one lifecycle status to the next. Any other
// starting status is rejected and nothing changes.
func (r *reducer) transition(orderID string, from, to domain.OrderStatus) (*domain.Order, error) {
	i := r.s.orderIndex(orderID)
	if i < 0 {
		return nil, reject(CodeOrderNotFound, "Order not found", "order_id", orderID)
	}
	o := &r.s.Orders[i]
	if o.Status != from {
		return nil, reject(CodeInvalidTransition,
			fmt.Sprintf("Order #%s is %s and cannot be marked %s", orderID, o.Status, to),
			"order_id", orderID, "from", string(o.Status), "to", string(to))
	}
	o.Status = to
	o.CanCancel = to.Cancellable()
	return o, nil
}

// acceptOrder confirms a pending order and stamps the delivery estimate.
func (r *reducer) acceptOrder(a AcceptOrder) error {
	o, err := r.transition(a.OrderID, domain.StatusPending, domain.StatusConfirmed)
	if err != nil {
		return err
	}
	eta := o.CreatedAt.Add(r.policy.DeliveryLead)
	o.EstimatedDelivery = &eta

	r.notify(o.UserID, domain.NotifySuccess, fmt.Sprintf(
		"Your order #%s has been confirmed and will be delivered by %s",
		o.ID, eta.Format(deliveryDateLayout)))
	return nil
}

func (r *reducer) shipOrder(a ShipOrder) error {
	o, err := r.transition(a.OrderID, domain.StatusConfirmed, domain.StatusShipped)
	if err != nil {
		return err
	}
	r.notify(o.UserID, domain.NotifyInfo, fmt.Sprintf(
		"Your order #%s has been shipped and is on its way!", o.ID))
	return nil
}

func (r *reducer) deliverOrder(a DeliverOrder) error {
	o, err := r.transition(a.OrderID, domain.StatusShipped, domain.StatusDelivered)
	if err != nil {
		return err
	}
	r.notify(o.UserID, domain.NotifySuccess, fmt.Sprintf(
		"Your order #%s has been delivered successfully!", o.ID))
	return nil
}

// setOrderStatus overrides the status without transition checks and
// recomputes CanCancel from the new status.
func (r *reducer) setOrderStatus(a SetOrderStatus) error {
	if !a.Status.Valid() {
		return reject(CodeInvalidStatus, fmt.Sprintf("unknown order status %q", a.Status))
	}
	i := r.s.orderIndex(a.OrderID)
	if i < 0 {
		return reject(CodeOrderNotFound, "Order not found", "order_id", a.OrderID)
	}
	o := &r.s.Orders[i]
	o.Status = a.Status
	if a.EstimatedDelivery != nil {
		eta := *a.EstimatedDelivery
		o.EstimatedDelivery = &eta
	}
	o.CanCancel = o.Status.Cancellable()
	return nil
}

// cancelOrder allows customer cancellation while CanCancel holds and the
// order is no older than the cancellation window.
func (r *reducer) cancelOrder(a CancelOrder) error {
	i := r.s.orderIndex(a.OrderID)
	if i < 0 {
		return reject(CodeOrderNotFound, "Order not found", "order_id", a.OrderID)
	}
	o := &r.s.Orders[i]

	if !o.CanCancel {
		return reject(CodeCancellationWindowExpired,
			fmt.Sprintf("Order #%s can no longer be cancelled", o.ID),
			"order_id", o.ID, "status", string(o.Status))
	}
	if elapsed := r.now.Sub(o.CreatedAt); elapsed > r.policy.CancelWindow {
		return reject(CodeCancellationWindowExpired,
			fmt.Sprintf("Order can only be cancelled within %s of placement.", humanWindow(r.policy.CancelWindow)),
			"order_id", o.ID, "elapsed", elapsed.String())
	}

	o.Status = domain.StatusCancelled
	o.CanCancel = false
	return nil
}

// updateDeliveryDate moves the estimate, keeps the status, and tells the
// owner.
func (r *reducer) updateDeliveryDate(a UpdateDeliveryDate) error {
	i := r.s.orderIndex(a.OrderID)
	if i < 0 {
		return reject(CodeOrderNotFound, "Order not found", "order_id", a.OrderID)
	}
	o := &r.s.Orders[i]
	eta := a.Date
	o.EstimatedDelivery = &eta
	o.CanCancel = o.Status.Cancellable()

	r.notify(o.UserID, domain.NotifyInfo, fmt.Sprintf(
		"Delivery date updated for order #%s. New estimated delivery: %s",
		o.ID, eta.Format(deliveryDateLayout)))
	return nil
}

// restoreOrder prepends, like a freshly placed order.
func (r *reducer) restoreOrder(a RestoreOrder) error {
	r.s.Orders = append([]domain.Order{a.Order}, r.s.Orders...)
	return nil
}

// humanWindow renders whole-hour windows as "24 hours".
func humanWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return d.String()
}
