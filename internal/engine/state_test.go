package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bitshub/internal/domain"
)

func TestNewState(t *testing.T) {
	products := []domain.Product{laptop}
	s := NewState(products)
	products[0].Name = "mutated"

	assert.Equal(t, laptop.Name, s.Products[0].Name)
	assert.NotNil(t, s.Cart)
	assert.NotNil(t, s.Orders)
	assert.NotNil(t, s.Notifications)
	assert.Nil(t, s.SessionUser())
	assert.Empty(t, s.RegisteredUsers())
}

func TestStateClone_Independent(t *testing.T) {
	s := NewState([]domain.Product{laptop})
	s.addUser(&domain.User{ID: "u1", Addresses: []domain.Address{{ID: "a1", City: "Pune"}}})
	s.Cart = append(s.Cart, domain.CartItem{Product: laptop, Quantity: 1})

	c := s.Clone()
	c.Users["u1"].Addresses[0].City = "Delhi"
	c.Cart[0].Quantity = 9
	c.addUser(&domain.User{ID: "u2"})

	assert.Equal(t, "Pune", s.Users["u1"].Addresses[0].City)
	assert.Equal(t, 1, s.Cart[0].Quantity)
	assert.Len(t, s.RegisteredUsers(), 1)
	assert.Len(t, c.RegisteredUsers(), 2)
}

func TestState_AddedToCartVisible(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewState(nil)
	assert.False(t, s.AddedToCartVisible(at))

	s.AddedToCartUntil = at.Add(time.Second)
	assert.True(t, s.AddedToCartVisible(at))
	assert.False(t, s.AddedToCartVisible(at.Add(time.Second)))
}

func TestState_OrdersFor(t *testing.T) {
	s := NewState(nil)
	s.Orders = []domain.Order{{ID: "o3", UserID: "u1"}, {ID: "o2", UserID: "u2"}, {ID: "o1", UserID: "u1"}}

	got := s.OrdersFor("u1")
	require.Len(t, got, 2)
	assert.Equal(t, "o3", got[0].ID)
	assert.Equal(t, "o1", got[1].ID)

	_, ok := s.Order("o9")
	assert.False(t, ok)
}
