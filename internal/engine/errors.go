package engine

import (
	"errors"
	"fmt"
)

// Rejection is a validation failure surfaced to the user.
//
// Rejections are the only failure mode of the reducer. A rejected action
// never mutates state; the caller shows Message inline (or, for
// CodeAddressRequired, redirects to the address form).
type Rejection struct {
	// Code identifies the failure category.
	Code RejectionCode `json:"code"`

	// Message is the user-visible text.
	Message string `json:"message"`

	// Details contains additional context (order id, status, ...).
	Details map[string]string `json:"details,omitempty"`
}

// RejectionCode categorizes rejections.
type RejectionCode string

const (
	// CodeAccountNotFound: login email matches neither the admin pair nor a
	// registered user.
	CodeAccountNotFound RejectionCode = "account_not_found"

	// CodePasswordMismatch: registration password and confirmation differ.
	CodePasswordMismatch RejectionCode = "password_mismatch"

	// CodeEmailExists: registration email is already registered.
	CodeEmailExists RejectionCode = "email_exists"

	// CodeNotLoggedIn: the action needs an active session.
	CodeNotLoggedIn RejectionCode = "not_logged_in"

	// CodeEmptyCart: checkout with nothing in the cart.
	CodeEmptyCart RejectionCode = "empty_cart"

	// CodeAddressRequired: checkout without a usable delivery address.
	CodeAddressRequired RejectionCode = "address_required"

	// CodeProductNotFound: add-to-cart by id for a product not in the catalog,
	// or with no product at all.
	CodeProductNotFound RejectionCode = "product_not_found"

	// CodeOrderNotFound: the order id is unknown.
	CodeOrderNotFound RejectionCode = "order_not_found"

	// CodeInvalidTransition: a lifecycle step called out of order.
	CodeInvalidTransition RejectionCode = "invalid_transition"

	// CodeInvalidStatus: a manual status override names an unknown status.
	CodeInvalidStatus RejectionCode = "invalid_status"

	// CodeCancellationWindowExpired: the order can no longer be cancelled.
	CodeCancellationWindowExpired RejectionCode = "cancellation_window_expired"
)

// ErrUnknownAction is returned by DecodeAction for names outside the
// action contract.
var ErrUnknownAction = errors.New("unknown action")

// Error implements the error interface.
func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// reject builds a Rejection. Details are given as alternating key/value pairs.
func reject(code RejectionCode, message string, kv ...string) *Rejection {
	r := &Rejection{Code: code, Message: message}
	if len(kv) > 1 {
		r.Details = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			r.Details[kv[i]] = kv[i+1]
		}
	}
	return r
}

// IsRejection reports whether err is a Rejection with the given code.
// Uses errors.As to handle wrapped errors.
func IsRejection(err error, code RejectionCode) bool {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Code == code
	}
	return false
}

// CodeOf returns the rejection code of err, or "" when err is not a Rejection.
func CodeOf(err error) RejectionCode {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Code
	}
	return ""
}
