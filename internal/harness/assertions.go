package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/bitshub/internal/domain"
	"github.com/roach88/bitshub/internal/engine"
	"github.com/roach88/bitshub/internal/persist"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", event)
		}
	}

	return buf.String()
}

// AssertionContext provides what assertions evaluate against.
type AssertionContext struct {
	Ctx      context.Context
	State    *engine.State
	Storage  persist.Storage
	Bindings map[string]string
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertCartTotal, AssertCartQuantity, AssertOrderStatus,
			AssertNotificationCount, AssertUnreadCount:
			if actx == nil || actx.State == nil {
				err = fmt.Errorf("assertion[%d]: %s requires final state", i, assertion.Type)
			} else {
				err = assertState(actx, assertion)
			}
		case AssertStorageKey:
			if actx == nil || actx.Storage == nil {
				err = fmt.Errorf("assertion[%d]: storage_key requires storage", i)
			} else {
				err = assertStorageKey(actx, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertTraceOrder checks that the actions appear in the trace as a
// subsequence. Intervening actions are allowed.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(assertion.Actions) && event.Action == assertion.Actions[next] {
			next++
		}
	}
	if next == len(assertion.Actions) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
		Actual:   fmt.Sprintf("no %s after %v", assertion.Actions[next], assertion.Actions[:next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that the action was dispatched exactly Count
// times, accepted or rejected.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Action == assertion.Action {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertState(actx *AssertionContext, assertion Assertion) error {
	s := actx.State
	switch assertion.Type {
	case AssertCartTotal:
		if got := s.CartTotal(); got != domain.Money(assertion.Value) {
			return mismatch(assertion.Type, fmt.Sprint(assertion.Value), fmt.Sprint(got))
		}
	case AssertCartQuantity:
		if got := s.CartQuantity(assertion.Product); int64(got) != assertion.Value {
			return mismatch(assertion.Type,
				fmt.Sprintf("%d of product %s", assertion.Value, assertion.Product), fmt.Sprint(got))
		}
	case AssertOrderStatus:
		id, err := resolveRef(assertion.Order, actx.Bindings)
		if err != nil {
			return fmt.Errorf("order_status: %w", err)
		}
		o, ok := s.Order(id)
		if !ok {
			return mismatch(assertion.Type, fmt.Sprintf("order %s is %s", id, assertion.Status), "order not found")
		}
		if string(o.Status) != assertion.Status {
			return mismatch(assertion.Type, fmt.Sprintf("order %s is %s", id, assertion.Status), string(o.Status))
		}
	case AssertNotificationCount:
		got := len(s.Notifications)
		if assertion.User != "" {
			id, err := resolveRef(assertion.User, actx.Bindings)
			if err != nil {
				return fmt.Errorf("notification_count: %w", err)
			}
			got = len(s.NotificationsFor(id))
		}
		if got != assertion.Count {
			return mismatch(assertion.Type, fmt.Sprint(assertion.Count), fmt.Sprint(got))
		}
	case AssertUnreadCount:
		id, err := resolveRef(assertion.User, actx.Bindings)
		if err != nil {
			return fmt.Errorf("unread_count: %w", err)
		}
		if got := s.UnreadCount(id); got != assertion.Count {
			return mismatch(assertion.Type, fmt.Sprint(assertion.Count), fmt.Sprint(got))
		}
	}
	return nil
}

func assertStorageKey(actx *AssertionContext, assertion Assertion) error {
	_, ok, err := actx.Storage.Get(actx.Ctx, assertion.Key)
	if err != nil {
		return fmt.Errorf("storage_key %s: %w", assertion.Key, err)
	}
	if ok != *assertion.Present {
		return mismatch(assertion.Type,
			fmt.Sprintf("%s present=%t", assertion.Key, *assertion.Present),
			fmt.Sprintf("present=%t", ok))
	}
	return nil
}

func mismatch(typ, expected, actual string) error {
	return &AssertionError{Type: typ, Expected: expected, Actual: actual}
}
