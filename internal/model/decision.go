package model

import "fmt"

// Decision is the outcome reported by the presentation layer for a pairing.
// Render failures are ordinary decisions, not errors.
type Decision int

const (
	// WinnerIsA means the first participant was preferred.
	WinnerIsA Decision = iota + 1
	// WinnerIsB means the second participant was preferred.
	WinnerIsB
	// AFailedToRender means the first participant could not be displayed.
	AFailedToRender
	// BFailedToRender means the second participant could not be displayed.
	BFailedToRender
	// BothFailedToRender means neither participant could be displayed.
	BothFailedToRender
)

var decisionNames = map[Decision]string{
	WinnerIsA:          "winner_is_a",
	WinnerIsB:          "winner_is_b",
	AFailedToRender:    "a_failed_to_render",
	BFailedToRender:    "b_failed_to_render",
	BothFailedToRender: "both_failed_to_render",
}

// String returns the snake_case name of the decision.
func (d Decision) String() string {
	if name, ok := decisionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Valid reports whether d is one of the defined decisions.
func (d Decision) Valid() bool {
	_, ok := decisionNames[d]
	return ok
}

// IsRenderFailure reports whether the decision stems from a render failure.
func (d Decision) IsRenderFailure() bool {
	return d == AFailedToRender || d == BFailedToRender || d == BothFailedToRender
}

// ParseDecision parses the snake_case name produced by String.
func ParseDecision(s string) (Decision, error) {
	for d, name := range decisionNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown decision %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Decision) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid decision %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decision) UnmarshalText(text []byte) error {
	parsed, err := ParseDecision(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
