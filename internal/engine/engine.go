package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// Presenter shows two items and reports the user's decision.
//
// PresentPairing may block indefinitely; the engine has no timeout. Return
// a render-failure decision for items that cannot be shown, and ErrStopped
// to end the session.
type Presenter interface {
	PresentPairing(ctx context.Context, a, b model.Item) (model.Decision, error)
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(ctx context.Context, a, b model.Item) (model.Decision, error)

// PresentPairing implements Presenter.
func (f PresenterFunc) PresentPairing(ctx context.Context, a, b model.Item) (model.Decision, error) {
	return f(ctx, a, b)
}

// Result is how a Run ended.
type Result struct {
	Finished bool
	Stopped  bool
	Round    int
	Champion model.ItemID // NoItem if unfinished or nobody survived
	Resolved int          // Pairings decided during this Run
}

// Engine drives one tournament.
//
// Run must be called from a single goroutine; the engine assumes it is the
// only writer of its store.
type Engine struct {
	store     Store
	scheduler *Scheduler
	resolver  *Resolver
	ranker    *Ranker
}

type options struct {
	shuffler  Shuffler
	observer  Observer
	threshold float64
}

// Option configures an Engine.
type Option func(*options)

// WithShuffler sets the pairing shuffler. Default: RandomShuffler.
func WithShuffler(s Shuffler) Option {
	return func(o *options) {
		o.shuffler = s
	}
}

// WithObserver sets the event observer. Default: NopObserver.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithExportThreshold sets the export percentile threshold.
// Default: DefaultExportThreshold.
func WithExportThreshold(threshold float64) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}

// New creates an Engine over the given store.
func New(s Store, opts ...Option) *Engine {
	o := options{
		shuffler:  RandomShuffler{},
		observer:  NopObserver{},
		threshold: DefaultExportThreshold,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{
		store:     s,
		scheduler: NewScheduler(s, o.shuffler, o.observer),
		resolver:  NewResolver(s, o.observer),
		ranker:    NewRanker(s, o.threshold),
	}
}

// Scheduler returns the engine's scheduler.
func (e *Engine) Scheduler() *Scheduler {
	return e.scheduler
}

// Resolver returns the engine's resolver.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// Ranker returns the engine's ranker.
func (e *Engine) Ranker() *Ranker {
	return e.ranker
}

// Resume reconstructs the current position. See the package function.
func (e *Engine) Resume(ctx context.Context) (State, error) {
	return Resume(ctx, e.store, e.scheduler)
}

// Progress reports where the tournament stands without writing.
func (e *Engine) Progress(ctx context.Context) (Progress, error) {
	return ReadProgress(ctx, e.store)
}

// Run is the control loop: resume, then plan, present and resolve until
// the tournament finishes, the presenter stops or ctx is cancelled.
//
// Every decision is durable before the next pairing is presented, so a Run
// that ends for any reason can be continued by a later Run.
func (e *Engine) Run(ctx context.Context, p Presenter) (Result, error) {
	st, err := e.Resume(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Round: st.Round}
	if st.Finished {
		return e.finished(ctx, res)
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		plan, err := e.scheduler.Next(ctx)
		if err != nil {
			return res, err
		}
		res.Round = plan.Round
		if plan.Finished {
			res.Finished = true
			res.Champion = plan.Champion
			return res, nil
		}

		if !plan.Bye.IsNone() {
			if _, err := e.resolver.Bye(ctx, plan.Round, plan.Bye); err != nil {
				return res, err
			}
		}

		for _, pairing := range plan.Pairings {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			a, err := e.store.Item(ctx, pairing.A)
			if err != nil {
				return res, fmt.Errorf("load item %d: %w", pairing.A, err)
			}
			b, err := e.store.Item(ctx, pairing.B)
			if err != nil {
				return res, fmt.Errorf("load item %d: %w", pairing.B, err)
			}

			d, err := p.PresentPairing(ctx, a, b)
			if IsStopped(err) {
				slog.Info("tournament paused", "round", plan.Round, "resolved", res.Resolved)
				res.Stopped = true
				return res, nil
			}
			if err != nil {
				return res, fmt.Errorf("present pairing: %w", err)
			}
			if !d.Valid() {
				return res, fmt.Errorf("present pairing: invalid decision %d", int(d))
			}

			// A decision the user already made is committed even if ctx
			// was cancelled while the presenter was waiting.
			if _, err := e.resolver.Resolve(context.WithoutCancel(ctx), pairing, d); err != nil {
				return res, err
			}
			res.Resolved++
		}
	}
}

// finished fills in the champion of an already finished tournament.
func (e *Engine) finished(ctx context.Context, res Result) (Result, error) {
	live, err := e.store.ListLiveItems(ctx)
	if err != nil {
		return res, fmt.Errorf("finished: %w", err)
	}
	res.Finished = true
	if len(live) == 1 {
		res.Champion = live[0].ID
	}
	return res, nil
}

// Rank returns the final ranking. See Ranker.Rank.
func (e *Engine) Rank(ctx context.Context) ([]Ranked, error) {
	return e.ranker.Rank(ctx)
}

// Select returns the export list. See Ranker.Select.
func (e *Engine) Select(ctx context.Context) ([]Selection, error) {
	return e.ranker.Select(ctx)
}
