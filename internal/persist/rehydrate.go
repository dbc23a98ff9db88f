package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/roach88/bitshub/internal/domain"
	"github.com/roach88/bitshub/internal/engine"
)

// Report summarizes one rehydration.
type Report struct {
	// Restored lists the keys that were present and replayed.
	Restored []string

	// Malformed lists the keys whose JSON could not be decoded.
	Malformed []string

	// Actions is the number of actions dispatched.
	Actions int
}

// Rehydrate restores eng from src by replaying the equivalent actions.
//
// Keys are processed in Keys order. A missing key leaves the seeded state
// alone. A malformed key is logged and skipped. Only storage read errors are
// returned.
func Rehydrate(ctx context.Context, eng *engine.Engine, src Storage, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &rehydrator{eng: eng, logger: logger}

	steps := []struct {
		key    string
		decode func([]byte) ([]engine.Action, error)
	}{
		{KeyUsers, decodeUsers},
		{KeyCurrentUser, decodeSession},
		{KeyCart, decodeCart},
		{KeyOrders, decodeOrders},
		{KeyNotifications, decodeNotifications},
		{KeyProducts, r.decodeProducts},
	}

	for _, step := range steps {
		data, ok, err := src.Get(ctx, step.key)
		if err != nil {
			return r.report, fmt.Errorf("rehydrate %s: %w", step.key, err)
		}
		if !ok {
			continue
		}
		actions, err := step.decode(data)
		if err != nil {
			logger.Warn("skipping malformed slice", "key", step.key, "error", err)
			r.report.Malformed = append(r.report.Malformed, step.key)
			continue
		}
		r.dispatch(actions)
		r.report.Restored = append(r.report.Restored, step.key)
	}

	logger.Info("rehydrated",
		"restored", len(r.report.Restored),
		"malformed", len(r.report.Malformed),
		"actions", r.report.Actions,
	)
	return r.report, nil
}

type rehydrator struct {
	eng    *engine.Engine
	logger *slog.Logger
	report Report
}

func (r *rehydrator) dispatch(actions []engine.Action) {
	for _, a := range actions {
		out := r.eng.Dispatch(a)
		r.report.Actions++
		if !out.OK() {
			r.logger.Warn("rehydrate action rejected", "action", out.Action, "error", out.Err)
		}
	}
}

func decodeUsers(data []byte) ([]engine.Action, error) {
	var users []domain.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return []engine.Action{engine.RestoreUsers{Users: users}}, nil
}

func decodeSession(data []byte) ([]engine.Action, error) {
	var u *domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	return []engine.Action{engine.RestoreSession{User: *u}}, nil
}

// decodeCart re-adds each line and then sets its quantity, finishing with
// the added-to-cart flash hidden.
func decodeCart(data []byte) ([]engine.Action, error) {
	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	var actions []engine.Action
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		actions = append(actions, engine.AddToCart{Product: item.Product})
		if item.Quantity > 1 {
			actions = append(actions, engine.UpdateCartQuantity{ProductID: item.Product.ID, Quantity: item.Quantity})
		}
	}
	if len(actions) > 0 {
		actions = append(actions, engine.HideAddedToCart{})
	}
	return actions, nil
}

// decodeOrders replays oldest first because RestoreOrder prepends.
func decodeOrders(data []byte) ([]engine.Action, error) {
	var orders []domain.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, err
	}
	actions := make([]engine.Action, 0, len(orders))
	for i := len(orders) - 1; i >= 0; i-- {
		actions = append(actions, engine.RestoreOrder{Order: orders[i]})
	}
	return actions, nil
}

func decodeNotifications(data []byte) ([]engine.Action, error) {
	var notes []domain.Notification
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, err
	}
	actions := make([]engine.Action, 0, len(notes))
	for _, n := range notes {
		actions = append(actions, engine.AddNotification{Notification: n})
	}
	return actions, nil
}

// decodeProducts updates seeded products in place, adds new ones and deletes
// seeded products missing from the stored catalog.
func (r *rehydrator) decodeProducts(data []byte) ([]engine.Action, error) {
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}

	stored := make(map[string]bool, len(products))
	var actions []engine.Action
	current := r.eng.Snapshot()
	for _, p := range products {
		stored[p.ID] = true
		if _, ok := current.Product(p.ID); ok {
			actions = append(actions, engine.UpdateProduct{Product: p})
		} else {
			actions = append(actions, engine.AddProduct{Product: p})
		}
	}
	for _, p := range current.Products {
		if !stored[p.ID] {
			actions = append(actions, engine.DeleteProduct{ProductID: p.ID})
		}
	}
	return actions, nil
}
