package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDecision_RoundTripNames(t *testing.T) {
	for d := WinnerIsA; d <= BothFailedToRender; d++ {
		parsed, err := ParseDecision(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
}

func TestDecision_Invalid(t *testing.T) {
	assert.False(t, Decision(0).Valid())
	assert.Equal(t, "decision(42)", Decision(42).String())

	_, err := ParseDecision("left")
	assert.Error(t, err)

	_, err = Decision(0).MarshalText()
	assert.Error(t, err)
}

func TestDecision_IsRenderFailure(t *testing.T) {
	assert.False(t, WinnerIsA.IsRenderFailure())
	assert.False(t, WinnerIsB.IsRenderFailure())
	assert.True(t, AFailedToRender.IsRenderFailure())
	assert.True(t, BFailedToRender.IsRenderFailure())
	assert.True(t, BothFailedToRender.IsRenderFailure())
}

func TestDecision_YAML(t *testing.T) {
	var doc struct {
		Decisions []Decision `yaml:"decisions"`
	}
	err := yaml.Unmarshal([]byte("decisions: [winner_is_b, both_failed_to_render]"), &doc)
	require.NoError(t, err)
	assert.Equal(t, []Decision{WinnerIsB, BothFailedToRender}, doc.Decisions)
}
