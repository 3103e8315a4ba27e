package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaaclb98/find-my-fav/internal/engine"
	"github.com/isaaclb98/find-my-fav/internal/model"
)

var (
	itemA = model.Item{ID: 1, Reference: "/photos/a.png"}
	itemB = model.Item{ID: 2, Reference: "/photos/b.png"}
)

func TestTerminalPresenter_Answers(t *testing.T) {
	tests := []struct {
		input string
		want  model.Decision
	}{
		{"1\n", model.WinnerIsA},
		{"a\n", model.WinnerIsA},
		{" B \n", model.WinnerIsB},
		{"2\n", model.WinnerIsB},
		{"x\n\n2\n", model.WinnerIsB},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			out := &bytes.Buffer{}
			p := NewTerminalPresenter(strings.NewReader(tt.input), out, nil)

			d, err := p.PresentPairing(context.Background(), itemA, itemB)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
			assert.Contains(t, out.String(), "[1] /photos/a.png")
			assert.Contains(t, out.String(), "[2] /photos/b.png")
		})
	}
}

func TestTerminalPresenter_InvalidAnswerReprompts(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewTerminalPresenter(strings.NewReader("3\n1\n"), out, nil)

	d, err := p.PresentPairing(context.Background(), itemA, itemB)
	require.NoError(t, err)
	assert.Equal(t, model.WinnerIsA, d)
	assert.Equal(t, 2, strings.Count(out.String(), "Which do you prefer?"))
	assert.Contains(t, out.String(), "Please answer 1 or 2.")
}

func TestTerminalPresenter_Stop(t *testing.T) {
	for _, input := range []string{"q\n", "quit\n", ""} {
		p := NewTerminalPresenter(strings.NewReader(input), io.Discard, nil)
		_, err := p.PresentPairing(context.Background(), itemA, itemB)
		assert.True(t, engine.IsStopped(err), "input %q", input)
	}
}

func TestTerminalPresenter_SequentialPairings(t *testing.T) {
	p := NewTerminalPresenter(strings.NewReader("1\n2\n"), io.Discard, nil)
	ctx := context.Background()

	d, err := p.PresentPairing(ctx, itemA, itemB)
	require.NoError(t, err)
	assert.Equal(t, model.WinnerIsA, d)

	d, err = p.PresentPairing(ctx, itemA, itemB)
	require.NoError(t, err)
	assert.Equal(t, model.WinnerIsB, d)
}

func TestTerminalPresenter_RenderFailures(t *testing.T) {
	broken := map[string]bool{}
	probe := func(ref string) error {
		if broken[ref] {
			return errors.New("not an image")
		}
		return nil
	}

	tests := []struct {
		name   string
		broken []string
		want   model.Decision
	}{
		{"first", []string{itemA.Reference}, model.AFailedToRender},
		{"second", []string{itemB.Reference}, model.BFailedToRender},
		{"both", []string{itemA.Reference, itemB.Reference}, model.BothFailedToRender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clear(broken)
			for _, ref := range tt.broken {
				broken[ref] = true
			}

			// No input: a prompt would stop the session.
			p := NewTerminalPresenter(strings.NewReader(""), io.Discard, probe)
			d, err := p.PresentPairing(context.Background(), itemA, itemB)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestTerminalPresenter_ContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewTerminalPresenter(pr, io.Discard, nil)
	_, err := p.PresentPairing(ctx, itemA, itemB)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTerminalPresenter_LineKeptAcrossCancel(t *testing.T) {
	p := NewTerminalPresenter(strings.NewReader("1\n2\n"), io.Discard, nil)
	defer p.Close()

	d, err := p.PresentPairing(context.Background(), itemA, itemB)
	require.NoError(t, err)
	assert.Equal(t, model.WinnerIsA, d)

	// The second answer is already typed when this prompt is cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.PresentPairing(ctx, itemA, itemB)
	require.ErrorIs(t, err, context.Canceled)

	d, err = p.PresentPairing(context.Background(), itemA, itemB)
	require.NoError(t, err)
	assert.Equal(t, model.WinnerIsB, d)
}

func TestTerminalPresenter_Close(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	p := NewTerminalPresenter(pr, io.Discard, nil)
	p.Close()
	p.Close()

	_, err := p.PresentPairing(context.Background(), itemA, itemB)
	assert.ErrorIs(t, err, engine.ErrStopped)
}
