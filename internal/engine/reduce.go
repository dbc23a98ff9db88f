package engine

import (
	"time"

	"github.com/roach88/bitshub/internal/domain"
)

// Policy holds the fixed rules of the storefront.
type Policy struct {
	// AdminEmail and AdminPassword are the one admin credential pair.
	// The admin is never stored in the registry.
	AdminEmail    string
	AdminPassword string

	// CancelWindow is how long after creation a customer may cancel.
	CancelWindow time.Duration

	// DeliveryLead is added to an order's creation time on acceptance.
	DeliveryLead time.Duration

	// AddedFlash is how long the added-to-cart flash stays visible.
	AddedFlash time.Duration
}

// DefaultPolicy returns the storefront defaults: 24h cancellation window,
// 7 day delivery lead, 2s added-to-cart flash.
func DefaultPolicy() Policy {
	return Policy{
		AdminEmail:    "admin@bitshub.store",
		AdminPassword: "1234567",
		CancelWindow:  24 * time.Hour,
		DeliveryLead:  7 * 24 * time.Hour,
		AddedFlash:    2 * time.Second,
	}
}

// AdminID is the fixed id of the admin identity.
const AdminID = "admin"

// Env is everything a transition may read besides the state itself.
type Env struct {
	Clock  Clock
	IDs    IDGenerator
	Policy Policy
}

// Redirect tells the caller which surface to present after a transition.
type Redirect string

const (
	RedirectNone        Redirect = ""
	RedirectLogin       Redirect = "login"
	RedirectOrders      Redirect = "orders"
	RedirectAddressForm Redirect = "address_form"
)

// Outcome describes the result of one transition.
type Outcome struct {
	// Seq is the transition's logical timestamp (set by Engine.Dispatch).
	Seq int64 `json:"seq"`

	// Action is the wire name of the dispatched action ("" for nil).
	Action string `json:"action"`

	// Err is a *Rejection when the action was refused. State is unchanged.
	Err error `json:"-"`

	// Redirect is the surface the caller should show next.
	Redirect Redirect `json:"redirect,omitempty"`

	// CreatedID is the id assigned to a newly created entity, if any.
	CreatedID string `json:"createdId,omitempty"`
}

// OK reports whether the transition was accepted.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Reduce computes the next state for an action.
//
// prev is never modified. On rejection the returned state is prev itself.
// A nil action is a no-op.
func Reduce(prev *State, a Action, env Env) (*State, Outcome) {
	if env.Clock == nil {
		env.Clock = SystemClock{}
	}
	if env.IDs == nil {
		env.IDs = UUIDGenerator{}
	}

	r := &reducer{
		s:      prev.Clone(),
		now:    env.Clock.Now(),
		ids:    env.IDs,
		policy: env.Policy,
	}
	if a != nil {
		r.out.Action = a.ActionName()
	}

	if err := r.apply(a); err != nil {
		r.out.Err = err
		return prev, r.out
	}
	return r.s, r.out
}

// reducer carries one transition's working copy and environment.
type reducer struct {
	s      *State
	now    time.Time
	ids    IDGenerator
	policy Policy
	out    Outcome
}

// apply is the transition table.
func (r *reducer) apply(a Action) error {
	switch a := a.(type) {
	case AddProduct:
		return r.addProduct(a)
	case UpdateProduct:
		return r.updateProduct(a)
	case DeleteProduct:
		return r.deleteProduct(a)

	case AddToCart:
		return r.addToCart(a)
	case UpdateCartQuantity:
		return r.updateCartQuantity(a)
	case RemoveFromCart:
		return r.removeFromCart(a.ProductID)
	case ClearCart:
		r.s.Cart = []domain.CartItem{}
		return nil
	case HideAddedToCart:
		r.s.AddedToCartUntil = time.Time{}
		return nil

	case Login:
		return r.login(a)
	case Register:
		return r.register(a)
	case Logout:
		return r.logout()
	case RestoreUsers:
		return r.restoreUsers(a)
	case RestoreSession:
		return r.restoreSession(a)

	case AddAddress:
		return r.addAddress(a)
	case UpdateAddress:
		return r.updateAddress(a)
	case DeleteAddress:
		return r.deleteAddress(a)
	case SetDefaultAddress:
		return r.setDefaultAddress(a)

	case PlaceOrder:
		return r.placeOrder(a)
	case AcceptOrder:
		return r.acceptOrder(a)
	case ShipOrder:
		return r.shipOrder(a)
	case DeliverOrder:
		return r.deliverOrder(a)
	case SetOrderStatus:
		return r.setOrderStatus(a)
	case CancelOrder:
		return r.cancelOrder(a)
	case UpdateDeliveryDate:
		return r.updateDeliveryDate(a)
	case RestoreOrder:
		return r.restoreOrder(a)

	case AddNotification:
		return r.addNotification(a)
	case MarkNotificationRead:
		return r.markNotificationRead(a)
	}
	return nil
}

// newID returns id if set, otherwise a generated one.
func (r *reducer) newID(id string) string {
	if id != "" {
		return id
	}
	return r.ids.NewID()
}
