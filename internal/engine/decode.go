package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

type actionDecoder func(data []byte) (Action, error)

// decoders maps every public wire name to its payload decoder.
// Keep in sync with the ActionName methods in action.go. The restore_*
// actions are absent on purpose: only rehydration builds them.
var decoders = map[string]actionDecoder{
	"add_product":            decodeAs[AddProduct],
	"update_product":         decodeAs[UpdateProduct],
	"delete_product":         decodeAs[DeleteProduct],
	"add_to_cart":            decodeAs[AddToCart],
	"update_cart_quantity":   decodeAs[UpdateCartQuantity],
	"remove_from_cart":       decodeAs[RemoveFromCart],
	"clear_cart":             decodeAs[ClearCart],
	"hide_added_to_cart":     decodeAs[HideAddedToCart],
	"login":                  decodeAs[Login],
	"register":               decodeAs[Register],
	"logout":                 decodeAs[Logout],
	"add_address":            decodeAs[AddAddress],
	"update_address":         decodeAs[UpdateAddress],
	"delete_address":         decodeAs[DeleteAddress],
	"set_default_address":    decodeAs[SetDefaultAddress],
	"place_order":            decodeAs[PlaceOrder],
	"accept_order":           decodeAs[AcceptOrder],
	"ship_order":             decodeAs[ShipOrder],
	"deliver_order":          decodeAs[DeliverOrder],
	"set_order_status":       decodeAs[SetOrderStatus],
	"cancel_order":           decodeAs[CancelOrder],
	"update_delivery_date":   decodeAs[UpdateDeliveryDate],
	"add_notification":       decodeAs[AddNotification],
	"mark_notification_read": decodeAs[MarkNotificationRead],
}

// DecodeAction builds a typed action from its wire name and JSON payload.
//
// An empty payload decodes to the zero value. Unknown payload fields are
// rejected so typos surface instead of silently becoming no-ops.
// Unknown names return ErrUnknownAction.
func DecodeAction(name string, payload []byte) (Action, error) {
	dec, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	a, err := dec(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return a, nil
}

// ActionNames returns every wire name in sorted order.
func ActionNames() []string {
	names := make([]string, 0, len(decoders))
	for name := range decoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func decodeAs[T Action](data []byte) (Action, error) {
	var a T
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return a, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, err
	}
	return a, nil
}
