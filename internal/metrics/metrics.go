// Package metrics exposes tournament progress as Prometheus metrics.
//
// Metrics live on a private registry so several engines (and tests) can
// coexist in one process.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/isaaclb98/find-my-fav/internal/engine"
	"github.com/isaaclb98/find-my-fav/internal/model"
)

// Namespace prefixes every metric name.
const Namespace = "findmyfav"

// Collector implements engine.Observer by updating Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	pairings        *prometheus.CounterVec
	byes            prometheus.Counter
	rounds          prometheus.Counter
	currentRound    prometheus.Gauge
	liveItems       prometheus.Gauge
	finished        prometheus.Gauge
	decisionLatency *prometheus.HistogramVec
}

var _ engine.Observer = (*Collector)(nil)

// NewCollector creates a collector with its own registry. Go runtime and
// process collectors are registered alongside the tournament metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		pairings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "pairings_resolved_total",
				Help:      "Pairings committed to the ledger, by decision.",
			},
			[]string{"decision"},
		),
		byes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "byes_total",
			Help:      "Byes committed to the ledger.",
		}),
		rounds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rounds_completed_total",
			Help:      "Rounds closed with a boundary record.",
		}),
		currentRound: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "current_round",
			Help:      "Round currently being played.",
		}),
		liveItems: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "live_items",
			Help:      "Items not yet eliminated.",
		}),
		finished: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "tournament_finished",
			Help:      "1 once the tournament has finished.",
		}),
		decisionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "decision_duration_seconds",
				Help:      "Time the presenter took to produce a decision.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 300},
			},
			[]string{"outcome"},
		),
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// SetPosition seeds the gauges from a resumed state.
func (c *Collector) SetPosition(round, live int, finished bool) {
	c.currentRound.Set(float64(round))
	c.liveItems.Set(float64(live))
	if finished {
		c.finished.Set(1)
	}
}

// PairingResolved implements engine.Observer.
func (c *Collector) PairingResolved(d model.Decision, out model.Outcome) {
	c.pairings.WithLabelValues(d.String()).Inc()
	c.currentRound.Set(float64(out.Match.RoundNumber))
	c.liveItems.Sub(float64(len(out.Losers)))
}

// ByeRecorded implements engine.Observer.
func (c *Collector) ByeRecorded(round int, _ model.ItemID) {
	c.byes.Inc()
	c.currentRound.Set(float64(round))
}

// RoundCompleted implements engine.Observer.
func (c *Collector) RoundCompleted(round, live int) {
	c.rounds.Inc()
	c.currentRound.Set(float64(round + 1))
	c.liveItems.Set(float64(live))
}

// TournamentFinished implements engine.Observer.
func (c *Collector) TournamentFinished(round int, champion model.ItemID) {
	c.currentRound.Set(float64(round))
	live := 0.0
	if !champion.IsNone() {
		live = 1
	}
	c.liveItems.Set(live)
	c.finished.Set(1)
}

// Presenter wraps p so the time spent on each decision is observed.
func (c *Collector) Presenter(p engine.Presenter) engine.Presenter {
	return engine.PresenterFunc(func(ctx context.Context, a, b model.Item) (model.Decision, error) {
		start := time.Now()
		d, err := p.PresentPairing(ctx, a, b)

		outcome := "decided"
		switch {
		case err != nil:
			outcome = "error"
		case d.IsRenderFailure():
			outcome = "render_failure"
		}
		c.decisionLatency.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		return d, err
	})
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done. The listener is bound
// before Serve returns, so a bad address fails immediately.
func (c *Collector) Serve(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	slog.Info("metrics server listening", "addr", ln.Addr().String())
	return ln.Addr(), nil
}
