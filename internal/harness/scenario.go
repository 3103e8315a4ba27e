package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// Scenario defines a tournament test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Items is the catalog size; references are item-01.jpg, item-02.jpg, ...
	// Ignored when Refs is set.
	Items int `yaml:"items,omitempty"`

	// Refs lists explicit item references in insertion (id) order.
	Refs []string `yaml:"refs,omitempty"`

	// Shuffle selects the pairing order: "sorted" (default) or "seeded".
	Shuffle string `yaml:"shuffle,omitempty"`

	// Seed drives the seeded shuffle.
	Seed uint64 `yaml:"seed,omitempty"`

	// Policy picks winners: "lower_id" (default), "higher_id" or "ranked".
	Policy string `yaml:"policy,omitempty"`

	// Order is the preference list of the ranked policy, best first.
	Order []model.ItemID `yaml:"order,omitempty"`

	// Failing lists items that fail to render whenever they are shown.
	Failing []model.ItemID `yaml:"failing,omitempty"`

	// Threshold overrides the export threshold.
	Threshold *float64 `yaml:"threshold,omitempty"`

	// Sessions splits the tournament into interrupted runs. When empty a
	// single session runs to completion.
	Sessions []Session `yaml:"sessions,omitempty"`

	// Assertions validate the final ledger, ranking and store.
	Assertions []Assertion `yaml:"assertions"`
}

// Session is one engine Run.
type Session struct {
	// StopAfter stops the session after this many decisions. Zero runs
	// until the tournament finishes.
	StopAfter int `yaml:"stop_after,omitempty"`
}

// Assertion validates the scenario outcome.
type Assertion struct {
	// Type specifies the assertion type (see the Assert* constants).
	Type string `yaml:"type"`

	// Record is a ledger record (used by trace_contains).
	Record string `yaml:"record,omitempty"`

	// Records are ledger records in expected order (used by trace_order).
	Records []string `yaml:"records,omitempty"`

	// Kind is a ledger record kind (used by trace_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of records (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Item is the expected champion, 0 for none (used by champion).
	Item model.ItemID `yaml:"item,omitempty"`

	// Items are the expected exported ids, best first (used by exported).
	Items []model.ItemID `yaml:"items,omitempty"`

	// Table is the store table name (used by final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (used by final_state).
	// All fields must match exactly.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected field values (used by final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains    = "trace_contains"
	AssertTraceOrder       = "trace_order"
	AssertTraceCount       = "trace_count"
	AssertChampion         = "champion"
	AssertExported         = "exported"
	AssertLedgerConsistent = "ledger_consistent"
	AssertFinalState       = "final_state"
)

// Shuffle and policy names.
const (
	ShuffleSorted = "sorted"
	ShuffleSeeded = "seeded"

	PolicyLowerID  = "lower_id"
	PolicyHigherID = "higher_id"
	PolicyRanked   = "ranked"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&scenario)
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

func applyDefaults(s *Scenario) {
	if s.Shuffle == "" {
		s.Shuffle = ShuffleSorted
	}
	if s.Policy == "" {
		s.Policy = PolicyLowerID
	}
	if len(s.Sessions) == 0 {
		s.Sessions = []Session{{}}
	}
}

// References returns the item references the scenario inserts.
func (s *Scenario) References() []string {
	if len(s.Refs) > 0 {
		return s.Refs
	}
	refs := make([]string, s.Items)
	for i := range refs {
		refs[i] = fmt.Sprintf("item-%02d.jpg", i+1)
	}
	return refs
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Items < 0 {
		return fmt.Errorf("items must not be negative")
	}
	if s.Items == 0 && len(s.Refs) == 0 {
		return fmt.Errorf("items or refs is required")
	}

	switch s.Shuffle {
	case ShuffleSorted:
	case ShuffleSeeded:
		if s.Seed == 0 {
			return fmt.Errorf("seeded shuffle requires a non-zero seed")
		}
	default:
		return fmt.Errorf("unknown shuffle %q", s.Shuffle)
	}

	switch s.Policy {
	case PolicyLowerID, PolicyHigherID:
	case PolicyRanked:
		if len(s.Order) == 0 {
			return fmt.Errorf("ranked policy requires order")
		}
	default:
		return fmt.Errorf("unknown policy %q", s.Policy)
	}

	if s.Threshold != nil && (*s.Threshold < 0 || *s.Threshold > 100) {
		return fmt.Errorf("threshold %v out of range 0..100", *s.Threshold)
	}

	// Every session but the last must be interrupted, or later ones
	// would have nothing to do.
	for i, sess := range s.Sessions {
		if sess.StopAfter < 0 {
			return fmt.Errorf("sessions[%d]: stop_after must not be negative", i)
		}
		if sess.StopAfter == 0 && i < len(s.Sessions)-1 {
			return fmt.Errorf("sessions[%d]: only the last session may run to completion", i)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
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
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Record == "" {
			return fmt.Errorf("assertions[%d]: trace_contains requires record", index)
		}
	case AssertTraceOrder:
		if len(a.Records) < 2 {
			return fmt.Errorf("assertions[%d]: trace_order requires at least 2 records", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: trace_count requires kind", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: trace_count count must not be negative", index)
		}
	case AssertChampion, AssertExported, AssertLedgerConsistent:
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: final_state requires table", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: final_state requires expect", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
