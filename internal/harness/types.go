package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/bitshub/internal/engine"
	"github.com/roach88/bitshub/internal/persist"
)

// TraceEvent is one dispatched action in a scenario run.
type TraceEvent struct {
	Seq       int64  `json:"seq"`
	Action    string `json:"action"`
	Outcome   string `json:"outcome"`
	Code      string `json:"code,omitempty"`
	CreatedID string `json:"created_id,omitempty"`
}

// String renders the event as one golden-file line.
func (e TraceEvent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s %s", e.Seq, e.Action, e.Outcome)
	if e.Code != "" {
		fmt.Fprintf(&b, " %s", e.Code)
	}
	if e.CreatedID != "" {
		fmt.Fprintf(&b, " -> %s", e.CreatedID)
	}
	return b.String()
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every dispatched action in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final engine snapshot.
	State *engine.State `json:"-"`

	// Storage is the mirrored storage after the run.
	Storage *persist.MemoryStorage `json:"-"`

	// Bindings maps bind names to created ids.
	Bindings map[string]string `json:"bindings,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
		Bindings: make(map[string]string),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// FormatTrace renders a trace one event per line.
func FormatTrace(trace []TraceEvent) string {
	var b strings.Builder
	for _, e := range trace {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
