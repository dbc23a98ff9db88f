package domain

import "time"

// Money is an amount in whole rupees.
type Money int64

// Category groups products in the catalog.
type Category string

const (
	CategoryLaptops     Category = "laptops"
	CategoryAccessories Category = "accessories"
	CategoryHeadphones  Category = "headphones"
)

// ValidCategories lists the categories a product may belong to.
var ValidCategories = []Category{CategoryLaptops, CategoryAccessories, CategoryHeadphones}

// Valid reports whether c is one of ValidCategories.
func (c Category) Valid() bool {
	for _, v := range ValidCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Product is a catalog entry. ID is the identity; two products are never
// compared by any other field.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         Money    `json:"price"`
	OriginalPrice *Money   `json:"originalPrice,omitempty"`
	Image         string   `json:"image"`
	Category      Category `json:"category"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	InStock       bool     `json:"inStock"`
	Description   string   `json:"description"`
	Specs         []string `json:"specs,omitempty"`
	Discount      *int     `json:"discount,omitempty"`
}

// Clone returns a copy of p that shares no slices or pointees with it.
func (p Product) Clone() Product {
	c := p
	if p.Specs != nil {
		c.Specs = append([]string{}, p.Specs...)
	}
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		c.OriginalPrice = &v
	}
	if p.Discount != nil {
		v := *p.Discount
		c.Discount = &v
	}
	return c
}

// CartItem pairs a product snapshot with a quantity.
// Quantity is always >= 1 while the item is in a cart.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price times quantity.
func (i CartItem) Subtotal() Money {
	return i.Product.Price * Money(i.Quantity)
}

// Address is a delivery address in a user's address book.
type Address struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	IsDefault    bool   `json:"isDefault"`
}

// User is a registered customer or the fixed admin identity.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	Addresses []Address `json:"addresses"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultAddress returns the first address flagged default, falling back to
// the first address. ok is false when the user has no addresses.
func (u *User) DefaultAddress() (Address, bool) {
	for _, a := range u.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	if len(u.Addresses) > 0 {
		return u.Addresses[0], true
	}
	return Address{}, false
}

// Clone returns a copy of u that shares no slices with it.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Addresses = append([]Address(nil), u.Addresses...)
	if c.Addresses == nil {
		c.Addresses = []Address{}
	}
	return &c
}

// OrderStatus is a state of the order lifecycle.
//
//	pending -> confirmed -> shipped -> delivered
//	pending | confirmed -> cancelled
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in status s may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether s admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// PaymentCard is the only supported payment method.
const PaymentCard = "Card"

// Order is an immutable snapshot of a checkout. Only Status,
// EstimatedDelivery and CanCancel change after creation.
type Order struct {
	ID                string      `json:"id"`
	UserID            string      `json:"userId"`
	Items             []CartItem  `json:"items"`
	Total             Money       `json:"total"`
	Status            OrderStatus `json:"status"`
	CreatedAt         time.Time   `json:"createdAt"`
	DeliveryAddress   Address     `json:"deliveryAddress"`
	PaymentMethod     string      `json:"paymentMethod"`
	EstimatedDelivery *time.Time  `json:"estimatedDelivery,omitempty"`
	CanCancel         bool        `json:"canCancel"`
}

// Clone returns a copy of o whose items and delivery estimate are its own.
func (o Order) Clone() Order {
	c := o
	if o.Items != nil {
		c.Items = make([]CartItem, len(o.Items))
		for i, it := range o.Items {
			c.Items[i] = CartItem{Product: it.Product.Clone(), Quantity: it.Quantity}
		}
	}
	if o.EstimatedDelivery != nil {
		v := *o.EstimatedDelivery
		c.EstimatedDelivery = &v
	}
	return c
}

// NotificationType is the severity shown next to a notification.
type NotificationType string

const (
	NotifySuccess NotificationType = "success"
	NotifyInfo    NotificationType = "info"
	NotifyWarning NotificationType = "warning"
	NotifyError   NotificationType = "error"
)

// Notification is a message addressed to one user. Only Read ever changes.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	CreatedAt time.Time        `json:"createdAt"`
	Read      bool             `json:"read"`
}
