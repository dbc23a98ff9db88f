package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines one storefront scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is an optional CUE catalog path. Relative paths are resolved
	// against the scenario file. Empty means the built-in seed.
	Catalog string `yaml:"catalog,omitempty"`

	// Setup contains actions that must be accepted before the flow.
	Setup []ActionStep `yaml:"setup,omitempty"`

	// Flow contains the steps under test.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final state and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// ActionStep is a setup action.
type ActionStep struct {
	// Action is the action's wire name, e.g. "add_to_cart".
	Action string `yaml:"action"`

	// Args is the action payload.
	Args map[string]interface{} `yaml:"args"`

	// Bind names the created id for later "${name}" references.
	Bind string `yaml:"bind,omitempty"`
}

// FlowStep is either a dispatch or a clock advance.
type FlowStep struct {
	// Dispatch is the action's wire name.
	Dispatch string `yaml:"dispatch,omitempty"`

	// Args is the action payload.
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Bind names the created id for later "${name}" references.
	Bind string `yaml:"bind,omitempty"`

	// Advance moves the manual clock forward, e.g. "25h".
	Advance string `yaml:"advance,omitempty"`

	// Expect validates the outcome. Nil means the action must be accepted.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a dispatch.
type ExpectClause struct {
	// Outcome is "ok" or "rejected".
	Outcome string `yaml:"outcome"`

	// Code is the expected rejection code.
	Code string `yaml:"code,omitempty"`

	// Redirect is the expected redirect.
	Redirect string `yaml:"redirect,omitempty"`
}

// Assertion validates final state or the trace.
type Assertion struct {
	Type string `yaml:"type"`

	// Value is the expected amount (cart_total, cart_quantity).
	Value int64 `yaml:"value,omitempty"`

	// Product is a product id (cart_quantity).
	Product string `yaml:"product,omitempty"`

	// Order is an order id or "${binding}" (order_status).
	Order string `yaml:"order,omitempty"`

	// Status is the expected order status (order_status).
	Status string `yaml:"status,omitempty"`

	// User is a user id or "${binding}" (notification_count, unread_count).
	User string `yaml:"user,omitempty"`

	// Count is the expected number (notification_count, unread_count,
	// trace_count).
	Count int `yaml:"count,omitempty"`

	// Key is a storage key (storage_key).
	Key string `yaml:"key,omitempty"`

	// Present is whether the key must exist (storage_key).
	Present *bool `yaml:"present,omitempty"`

	// Action is an action name (trace_count).
	Action string `yaml:"action,omitempty"`

	// Actions is the expected dispatch order (trace_order).
	Actions []string `yaml:"actions,omitempty"`
}

// Assertion type constants.
const (
	AssertCartTotal         = "cart_total"
	AssertCartQuantity      = "cart_quantity"
	AssertOrderStatus       = "order_status"
	AssertNotificationCount = "notification_count"
	AssertUnreadCount       = "unread_count"
	AssertStorageKey        = "storage_key"
	AssertTraceCount        = "trace_count"
	AssertTraceOrder        = "trace_order"
)

// Expected outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Catalog != "" {
		if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("catalog file not found: %s", s.Catalog)
		}
	}

	for i, step := range s.Setup {
		if step.Action == "" {
			return fmt.Errorf("setup[%d]: action is required", i)
		}
	}

	for i, step := range s.Flow {
		if (step.Dispatch == "") == (step.Advance == "") {
			return fmt.Errorf("flow[%d]: exactly one of dispatch or advance is required", i)
		}
		if step.Advance != "" {
			if _, err := time.ParseDuration(step.Advance); err != nil {
				return fmt.Errorf("flow[%d]: invalid advance: %w", i, err)
			}
			if step.Args != nil || step.Expect != nil || step.Bind != "" {
				return fmt.Errorf("flow[%d]: advance takes no args, expect or bind", i)
			}
		}
		if step.Expect != nil && step.Expect.Outcome != OutcomeOK && step.Expect.Outcome != OutcomeRejected {
			return fmt.Errorf("flow[%d].expect: outcome must be %q or %q", i, OutcomeOK, OutcomeRejected)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCartTotal:
	case AssertCartQuantity:
		if a.Product == "" {
			return fmt.Errorf("assertions[%d]: product is required for cart_quantity", index)
		}
	case AssertOrderStatus:
		if a.Order == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: order and status are required for order_status", index)
		}
	case AssertNotificationCount:
	case AssertUnreadCount:
		if a.User == "" {
			return fmt.Errorf("assertions[%d]: user is required for unread_count", index)
		}
	case AssertStorageKey:
		if a.Key == "" || a.Present == nil {
			return fmt.Errorf("assertions[%d]: key and present are required for storage_key", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
