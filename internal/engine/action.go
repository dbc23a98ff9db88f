package engine

import (
	"time"

	"github.com/roach88/bitshub/internal/domain"
)

// Action is a sealed interface over every intent the reducer accepts.
// Only types in this package implement it, so the type switch in Reduce is
// the complete transition table.
//
// ActionName is the snake_case name used on the wire (CLI, HTTP, scenario
// files, journal).
type Action interface {
	ActionName() string
	isAction()
}

// Catalog

// AddProduct appends a product. An empty ID is assigned; an ID that collides
// with an existing product is accepted as is.
type AddProduct struct {
	Product domain.Product `json:"product"`
}

// UpdateProduct replaces the product with the same ID.
type UpdateProduct struct {
	Product domain.Product `json:"product"`
}

// DeleteProduct removes a product from the catalog. Cart items keep their
// snapshot.
type DeleteProduct struct {
	ProductID string `json:"productId"`
}

// Cart

// AddToCart adds one unit of a product. Either Product carries the full
// snapshot or ProductID names a catalog entry to snapshot.
type AddToCart struct {
	Product   domain.Product `json:"product"`
	ProductID string         `json:"productId,omitempty"`
}

// UpdateCartQuantity sets the quantity of a cart line; zero removes it.
type UpdateCartQuantity struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// RemoveFromCart deletes a cart line.
type RemoveFromCart struct {
	ProductID string `json:"productId"`
}

// ClearCart empties the cart.
type ClearCart struct{}

// HideAddedToCart clears the added-to-cart flash before its deadline.
type HideAddedToCart struct{}

// Identity

// Login starts a session.
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a registered user and starts a session for it.
type Register struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Logout ends the session and empties the cart.
type Logout struct{}

// RestoreUsers replaces the registry with a persisted snapshot.
type RestoreUsers struct {
	Users []domain.User `json:"users"`
}

// RestoreSession resumes a persisted session.
type RestoreSession struct {
	User domain.User `json:"user"`
}

// Address book

// AddAddress appends an address to a user's address book.
type AddAddress struct {
	UserID  string         `json:"userId"`
	Address domain.Address `json:"address"`
}

// UpdateAddress replaces the address with the same ID.
type UpdateAddress struct {
	UserID  string         `json:"userId"`
	Address domain.Address `json:"address"`
}

// DeleteAddress removes an address.
type DeleteAddress struct {
	UserID    string `json:"userId"`
	AddressID string `json:"addressId"`
}

// SetDefaultAddress makes one address the only default.
type SetDefaultAddress struct {
	UserID    string `json:"userId"`
	AddressID string `json:"addressId"`
}

// Orders

// PlaceOrder checks out the current cart for the session user. An empty
// AddressID selects the default address (or the first one).
type PlaceOrder struct {
	AddressID string `json:"addressId,omitempty"`
}

// AcceptOrder confirms a pending order.
type AcceptOrder struct {
	OrderID string `json:"orderId"`
}

// ShipOrder ships a confirmed order.
type ShipOrder struct {
	OrderID string `json:"orderId"`
}

// DeliverOrder marks a shipped order delivered.
type DeliverOrder struct {
	OrderID string `json:"orderId"`
}

// SetOrderStatus is the administrative override. It skips transition
// checks. A nil EstimatedDelivery keeps the current estimate.
type SetOrderStatus struct {
	OrderID           string             `json:"orderId"`
	Status            domain.OrderStatus `json:"status"`
	EstimatedDelivery *time.Time         `json:"estimatedDelivery,omitempty"`
}

// CancelOrder is the customer-initiated cancellation.
type CancelOrder struct {
	OrderID string `json:"orderId"`
}

// UpdateDeliveryDate changes the delivery estimate of an order.
type UpdateDeliveryDate struct {
	OrderID string    `json:"orderId"`
	Date    time.Time `json:"date"`
}

// RestoreOrder puts a persisted order at the head of the order list.
type RestoreOrder struct {
	Order domain.Order `json:"order"`
}

// Notifications

// AddNotification appends a notification. An empty ID is assigned.
type AddNotification struct {
	Notification domain.Notification `json:"notification"`
}

// MarkNotificationRead flips Read to true.
type MarkNotificationRead struct {
	ID string `json:"id"`
}

func (AddProduct) ActionName() string { return "add_product" }
func (UpdateProduct) ActionName() string { return "update_product" }
func (DeleteProduct) ActionName() string { return "delete_product" }
func (AddToCart) ActionName() string { return "add_to_cart" }
func (UpdateCartQuantity) ActionName() string { return "update_cart_quantity" }
func (RemoveFromCart) ActionName() string { return "remove_from_cart" }
func (ClearCart) ActionName() string { return "clear_cart" }
func (HideAddedToCart) ActionName() string { return "hide_added_to_cart" }
func (Login) ActionName() string { return "login" }
func (Register) ActionName() string { return "register" }
func (Logout) ActionName() string { return "logout" }
func (RestoreUsers) ActionName() string { return "restore_users" }
func (RestoreSession) ActionName() string { return "restore_session" }
func (AddAddress) ActionName() string { return "add_address" }
func (UpdateAddress) ActionName() string { return "update_address" }
func (DeleteAddress) ActionName() string { return "delete_address" }
func (SetDefaultAddress) ActionName() string { return "set_default_address" }
func (PlaceOrder) ActionName() string { return "place_order" }
func (AcceptOrder) ActionName() string { return "accept_order" }
func (ShipOrder) ActionName() string { return "ship_order" }
func (DeliverOrder) ActionName() string { return "deliver_order" }
func (SetOrderStatus) ActionName() string { return "set_order_status" }
func (CancelOrder) ActionName() string { return "cancel_order" }
func (UpdateDeliveryDate) ActionName() string { return "update_delivery_date" }
func (RestoreOrder) ActionName() string { return "restore_order" }
func (AddNotification) ActionName() string { return "add_notification" }
func (MarkNotificationRead) ActionName() string { return "mark_notification_read" }

func (AddProduct) isAction() {}
func (UpdateProduct) isAction() {}
func (DeleteProduct) isAction() {}
func (AddToCart) isAction() {}
func (UpdateCartQuantity) isAction() {}
func (RemoveFromCart) isAction() {}
func (ClearCart) isAction() {}
func (HideAddedToCart) isAction() {}
func (Login) isAction() {}
func (Register) isAction() {}
func (Logout) isAction() {}
func (RestoreUsers) isAction() {}
func (RestoreSession) isAction() {}
func (AddAddress) isAction() {}
func (UpdateAddress) isAction() {}
func (DeleteAddress) isAction() {}
func (SetDefaultAddress) isAction() {}
func (PlaceOrder) isAction() {}
func (AcceptOrder) isAction() {}
func (ShipOrder) isAction() {}
func (DeliverOrder) isAction() {}
func (SetOrderStatus) isAction() {}
func (CancelOrder) isAction() {}
func (UpdateDeliveryDate) isAction() {}
func (RestoreOrder) isAction() {}
func (AddNotification) isAction() {}
func (MarkNotificationRead) isAction() {}
