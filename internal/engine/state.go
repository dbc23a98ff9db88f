package engine

import (
	"time"

	"github.com/roach88/bitshub/internal/domain"
)

// State is one immutable snapshot of the storefront.
//
// Users is the single source of truth for registered users. The session is
// an id into Users (or the admin identity), never a second copy of the
// record, so address edits through either view land in one place.
//
// INVARIANTS:
//   - at most one CartItem per product id, each with Quantity >= 1
//   - every id in UserOrder is a key of Users and vice versa
//   - Orders are newest first
//   - Admin is only set while the admin is logged in
type State struct {
	Products      []domain.Product        `json:"products"`
	Cart          []domain.CartItem       `json:"cart"`
	Users         map[string]*domain.User `json:"-"`
	UserOrder     []string                `json:"-"`
	SessionID     string                  `json:"sessionId,omitempty"`
	Admin         *domain.User            `json:"-"`
	Orders        []domain.Order          `json:"orders"`
	Notifications []domain.Notification   `json:"notifications"`

	// AddedToCartUntil is the deadline of the added-to-cart flash.
	AddedToCartUntil time.Time `json:"addedToCartUntil,omitempty"`
}

// NewState returns an empty state seeded with a catalog.
func NewState(products []domain.Product) *State {
	s := &State{
		Products:      append([]domain.Product{}, products...),
		Cart:          []domain.CartItem{},
		Users:         make(map[string]*domain.User),
		UserOrder:     []string{},
		Orders:        []domain.Order{},
		Notifications: []domain.Notification{},
	}
	return s
}

// Clone returns a copy that shares no mutable memory with s. Products,
// cart lines and orders are copied down to their specs, items and
// pointer fields.
func (s *State) Clone() *State {
	c := &State{
		Products:         make([]domain.Product, len(s.Products)),
		Cart:             make([]domain.CartItem, len(s.Cart)),
		Users:            make(map[string]*domain.User, len(s.Users)),
		UserOrder:        append([]string{}, s.UserOrder...),
		SessionID:        s.SessionID,
		Admin:            s.Admin.Clone(),
		Orders:           make([]domain.Order, len(s.Orders)),
		Notifications:    append([]domain.Notification{}, s.Notifications...),
		AddedToCartUntil: s.AddedToCartUntil,
	}
	for i, p := range s.Products {
		c.Products[i] = p.Clone()
	}
	for i, it := range s.Cart {
		c.Cart[i] = domain.CartItem{Product: it.Product.Clone(), Quantity: it.Quantity}
	}
	for i, o := range s.Orders {
		c.Orders[i] = o.Clone()
	}
	for id, u := range s.Users {
		c.Users[id] = u.Clone()
	}
	return c
}

// SessionUser returns the logged-in user, or nil.
func (s *State) SessionUser() *domain.User {
	if s.SessionID == "" {
		return nil
	}
	if s.Admin != nil && s.Admin.ID == s.SessionID {
		return s.Admin
	}
	return s.Users[s.SessionID]
}

// RegisteredUsers returns the registry in registration order.
func (s *State) RegisteredUsers() []domain.User {
	out := make([]domain.User, 0, len(s.UserOrder))
	for _, id := range s.UserOrder {
		if u, ok := s.Users[id]; ok {
			out = append(out, *u)
		}
	}
	return out
}

// userByEmail finds a non-admin registered user by exact email.
func (s *State) userByEmail(email string) *domain.User {
	for _, id := range s.UserOrder {
		u := s.Users[id]
		if u != nil && !u.IsAdmin && u.Email == email {
			return u
		}
	}
	return nil
}

// userRecord returns the single mutable record for userID: the registry
// entry, or the admin identity while the admin is logged in.
func (s *State) userRecord(userID string) *domain.User {
	if u, ok := s.Users[userID]; ok {
		return u
	}
	if s.Admin != nil && s.Admin.ID == userID {
		return s.Admin
	}
	return nil
}

// addUser inserts or replaces a registry entry, keeping UserOrder in sync.
func (s *State) addUser(u *domain.User) {
	if _, exists := s.Users[u.ID]; !exists {
		s.UserOrder = append(s.UserOrder, u.ID)
	}
	s.Users[u.ID] = u
}

// Product returns the catalog entry with the given id.
func (s *State) Product(id string) (domain.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// CartTotal is the sum of price times quantity over the cart.
// It is always derived, never stored.
func (s *State) CartTotal() domain.Money {
	var total domain.Money
	for _, item := range s.Cart {
		total += item.Subtotal()
	}
	return total
}

// CartCount is the number of units in the cart.
func (s *State) CartCount() int {
	n := 0
	for _, item := range s.Cart {
		n += item.Quantity
	}
	return n
}

// CartQuantity returns the quantity of a product in the cart, 0 if absent.
func (s *State) CartQuantity(productID string) int {
	for _, item := range s.Cart {
		if item.Product.ID == productID {
			return item.Quantity
		}
	}
	return 0
}

// AddedToCartVisible reports whether the added-to-cart flash is showing at now.
func (s *State) AddedToCartVisible(now time.Time) bool {
	return now.Before(s.AddedToCartUntil)
}

// Order returns the order with the given id.
func (s *State) Order(id string) (domain.Order, bool) {
	if i := s.orderIndex(id); i >= 0 {
		return s.Orders[i], true
	}
	return domain.Order{}, false
}

func (s *State) orderIndex(id string) int {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			return i
		}
	}
	return -1
}

// OrdersFor returns the orders placed by userID, newest first.
func (s *State) OrdersFor(userID string) []domain.Order {
	var out []domain.Order
	for _, o := range s.Orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

// NotificationsFor returns the notifications addressed to userID in
// append order.
func (s *State) NotificationsFor(userID string) []domain.Notification {
	var out []domain.Notification
	for _, n := range s.Notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount is the number of unread notifications for userID.
func (s *State) UnreadCount(userID string) int {
	n := 0
	for _, notif := range s.Notifications {
		if notif.UserID == userID && !notif.Read {
			n++
		}
	}
	return n
}
