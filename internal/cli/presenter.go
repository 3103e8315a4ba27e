package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/isaaclb98/find-my-fav/internal/engine"
	"github.com/isaaclb98/find-my-fav/internal/model"
)

// TerminalPresenter asks for decisions on a line-oriented terminal.
//
// Before prompting, both items are probed; items that cannot be rendered
// produce the matching failure decision without asking. Answers are "1" or
// "a" for the first item, "2" or "b" for the second and "q" to stop. End of
// input also stops the session.
type TerminalPresenter struct {
	in    io.Reader
	out   io.Writer
	probe func(ref string) error

	once      sync.Once
	lines     chan string
	done      chan struct{}
	closeOnce sync.Once
}

var _ engine.Presenter = (*TerminalPresenter)(nil)

// NewTerminalPresenter reads answers from in and writes prompts to out.
// probe reports whether an item reference can be shown; nil skips probing.
func NewTerminalPresenter(in io.Reader, out io.Writer, probe func(ref string) error) *TerminalPresenter {
	return &TerminalPresenter{in: in, out: out, probe: probe, done: make(chan struct{})}
}

// Close releases the reader goroutine. A read already blocked on the
// input returns when the next line arrives. Safe to call more than once.
func (p *TerminalPresenter) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// PresentPairing implements engine.Presenter.
func (p *TerminalPresenter) PresentPairing(ctx context.Context, a, b model.Item) (model.Decision, error) {
	if d, failed := p.renderFailure(a, b); failed {
		fmt.Fprintf(p.out, "Skipped: %s\n", d)
		return d, nil
	}

	fmt.Fprintf(p.out, "\n  [1] %s\n  [2] %s\n", a.Reference, b.Reference)
	for {
		fmt.Fprint(p.out, "Which do you prefer? (1/2, q to stop): ")
		line, err := p.readLine(ctx)
		if err != nil {
			return 0, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "1", "a":
			return model.WinnerIsA, nil
		case "2", "b":
			return model.WinnerIsB, nil
		case "q", "quit":
			return 0, engine.ErrStopped
		}
		fmt.Fprintln(p.out, "Please answer 1 or 2.")
	}
}

func (p *TerminalPresenter) renderFailure(a, b model.Item) (model.Decision, bool) {
	if p.probe == nil {
		return 0, false
	}

	errA := p.probe(a.Reference)
	errB := p.probe(b.Reference)
	for _, f := range []struct {
		item model.Item
		err  error
	}{{a, errA}, {b, errB}} {
		if f.err != nil {
			slog.Warn("item failed to render", "id", f.item.ID, "reference", f.item.Reference, "error", f.err)
		}
	}

	switch {
	case errA != nil && errB != nil:
		return model.BothFailedToRender, true
	case errA != nil:
		return model.AFailedToRender, true
	case errB != nil:
		return model.BFailedToRender, true
	}
	return 0, false
}

// readLine returns the next input line. The reader goroutine is started on
// first use so a blocked read never outlives ctx for the caller. A line that
// arrives while nobody is waiting stays buffered for the next call.
func (p *TerminalPresenter) readLine(ctx context.Context) (string, error) {
	p.once.Do(func() {
		p.lines = make(chan string, 1)
		go func() {
			defer close(p.lines)
			scanner := bufio.NewScanner(p.in)
			for scanner.Scan() {
				select {
				case p.lines <- scanner.Text():
				case <-p.done:
					return
				}
			}
		}()
	})

	if err := ctx.Err(); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-p.done:
		return "", engine.ErrStopped
	case line, ok := <-p.lines:
		if !ok {
			return "", engine.ErrStopped
		}
		return line, nil
	}
}
