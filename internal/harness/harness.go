package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/bitshub/internal/catalog"
	"github.com/roach88/bitshub/internal/domain"
	"github.com/roach88/bitshub/internal/engine"
	"github.com/roach88/bitshub/internal/persist"
	"github.com/roach88/bitshub/internal/testutil"
)

// Harness is the scenario execution environment.
// It owns one engine with a manual clock and sequential ids.
type Harness struct {
	engine  *engine.Engine
	clock   *testutil.ManualClock
	storage *persist.MemoryStorage
	logger  *slog.Logger
	result  *Result
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh engine for isolation.
//
// Execution flow:
// 1. Load the catalog (scenario file or built-in seed)
// 2. Build the engine with the mirror and a trace observer
// 3. Execute setup steps, each of which must be accepted
// 4. Execute flow steps with expect validation
// 5. Evaluate assertions
//
// An error is returned only when the scenario itself cannot run (bad
// catalog, setup rejection, undecodable args). Failed expectations and
// assertions are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	products, err := loadCatalog(scenario.Catalog)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	h := &Harness{
		clock:   testutil.NewManualClock(testutil.Epoch),
		storage: persist.NewMemoryStorage(),
		logger:  logger,
		result:  NewResult(),
	}

	mirror := persist.NewMirror(ctx, h.storage, logger)
	h.engine = engine.New(
		engine.WithClock(h.clock),
		engine.WithIDGenerator(testutil.NewSequentialIDs("id")),
		engine.WithCatalog(products),
		engine.WithLogger(logger),
		engine.WithObserver(engine.ObserverFunc(h.record)),
	)
	mirror.Sync(h.engine.Snapshot())
	h.engine.Subscribe(mirror)

	if err := h.executeSetup(scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	if err := h.executeFlow(scenario.Flow); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	h.result.State = h.engine.Snapshot()
	h.result.Storage = h.storage

	actx := &AssertionContext{
		Ctx:      ctx,
		State:    h.result.State,
		Storage:  h.storage,
		Bindings: h.result.Bindings,
	}
	for _, errMsg := range EvaluateAssertions(h.result, scenario.Assertions, actx) {
		h.result.AddError(errMsg)
	}

	return h.result, nil
}

func loadCatalog(path string) ([]domain.Product, error) {
	if path == "" {
		products, err := catalog.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load built-in catalog: %w", err)
		}
		return products, nil
	}
	products, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return products, nil
}

// record appends every transition to the trace.
func (h *Harness) record(t engine.Transition) {
	ev := TraceEvent{
		Seq:       t.Outcome.Seq,
		Action:    t.Outcome.Action,
		Outcome:   OutcomeOK,
		CreatedID: t.Outcome.CreatedID,
	}
	if t.Outcome.Err != nil {
		ev.Outcome = OutcomeRejected
		ev.Code = string(engine.CodeOf(t.Outcome.Err))
	}
	h.result.Trace = append(h.result.Trace, ev)
}

// executeSetup runs all setup steps. A rejected setup step aborts the run.
func (h *Harness) executeSetup(setup []ActionStep) error {
	for i, step := range setup {
		out, err := h.dispatch(step.Action, step.Args)
		if err != nil {
			return fmt.Errorf("setup step %d (%s): %w", i, step.Action, err)
		}
		if out.Err != nil {
			return fmt.Errorf("setup step %d (%s) rejected: %w", i, step.Action, out.Err)
		}
		h.bind(step.Bind, out)

		h.logger.Info("setup step completed",
			"step", i,
			"action", step.Action,
			"seq", out.Seq,
		)
	}
	return nil
}

// executeFlow runs all flow steps and validates expectations.
func (h *Harness) executeFlow(flow []FlowStep) error {
	for i, step := range flow {
		if step.Advance != "" {
			d, err := time.ParseDuration(step.Advance)
			if err != nil {
				return fmt.Errorf("flow step %d: %w", i, err)
			}
			h.clock.Advance(d)
			continue
		}

		out, err := h.dispatch(step.Dispatch, step.Args)
		if err != nil {
			return fmt.Errorf("flow step %d (%s): %w", i, step.Dispatch, err)
		}
		h.bind(step.Bind, out)

		for _, msg := range checkExpect(step.Expect, out) {
			h.result.AddError(fmt.Sprintf("flow step %d (%s): %s", i, step.Dispatch, msg))
		}
	}
	return nil
}

func (h *Harness) dispatch(name string, args map[string]interface{}) (engine.Outcome, error) {
	payload, err := encodeArgs(args, h.result.Bindings)
	if err != nil {
		return engine.Outcome{}, err
	}
	action, err := engine.DecodeAction(name, payload)
	if err != nil {
		return engine.Outcome{}, err
	}
	return h.engine.Dispatch(action), nil
}

func (h *Harness) bind(name string, out engine.Outcome) {
	if name == "" {
		return
	}
	if out.CreatedID == "" {
		h.result.AddError(fmt.Sprintf("bind %q: %s created no id", name, out.Action))
		return
	}
	h.result.Bindings[name] = out.CreatedID
}

// checkExpect compares an outcome to its expect clause. A nil clause
// expects acceptance.
func checkExpect(expect *ExpectClause, out engine.Outcome) []string {
	want := ExpectClause{Outcome: OutcomeOK}
	if expect != nil {
		want = *expect
	}

	got := OutcomeOK
	if out.Err != nil {
		got = OutcomeRejected
	}

	var errs []string
	if got != want.Outcome {
		msg := fmt.Sprintf("expected outcome %s, got %s", want.Outcome, got)
		if out.Err != nil {
			msg += fmt.Sprintf(" (%v)", out.Err)
		}
		errs = append(errs, msg)
	}
	if want.Code != "" {
		if code := string(engine.CodeOf(out.Err)); code != want.Code {
			errs = append(errs, fmt.Sprintf("expected code %s, got %q", want.Code, code))
		}
	}
	if want.Redirect != "" && string(out.Redirect) != want.Redirect {
		errs = append(errs, fmt.Sprintf("expected redirect %s, got %q", want.Redirect, out.Redirect))
	}
	return errs
}

// encodeArgs substitutes bindings and encodes args as a JSON payload.
func encodeArgs(args map[string]interface{}, bindings map[string]string) ([]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}
	resolved, err := substitute(args, bindings)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to encode args: %w", err)
	}
	return payload, nil
}

// substitute replaces "${name}" references in every string value.
func substitute(v interface{}, bindings map[string]string) (interface{}, error) {
	switch val := v.(type) {
	case string:
		return resolveRef(val, bindings)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			r, err := substitute(item, bindings)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = r
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			r, err := substitute(item, bindings)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

// resolveRef expands every "${name}" in s.
func resolveRef(s string, bindings map[string]string) (string, error) {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			return "", fmt.Errorf("unterminated reference in %q", s)
		}
		name := s[start+2 : start+end]
		id, ok := bindings[name]
		if !ok {
			return "", fmt.Errorf("unknown binding %q", name)
		}
		b.WriteString(s[:start])
		b.WriteString(id)
		s = s[start+end+1:]
	}
}
