package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Panel names, used as log and metric labels and in fragment URLs.
const (
	PanelOverview   = "overview"
	PanelMap        = "map"
	PanelSnapshot   = "snapshot"
	PanelInsights   = "insights"
	PanelForecast   = "forecast"
	PanelImpact     = "impact"
	PanelSimulation = "simulation"
	PanelHistory    = "history"

	// PanelActions renders the insights action plan as a carousel.
	PanelActions = "actions"
)

// PanelState is a point-in-time copy of a panel.
type PanelState[T any] struct {
	Data      T
	HasData   bool
	Loading   bool
	Err       error
	UpdatedAt time.Time
}

// Panel holds one panel's view-model and its fetch lifecycle. Every Load
// issues a new generation and cancels the previous one, so only the most
// recently issued request can update the panel. A failed fetch keeps the
// previous data.
type Panel[T any] struct {
	name    string
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock

	mu        sync.Mutex
	data      T
	hasData   bool
	loading   bool
	err       error
	updatedAt time.Time
	gen       uint64
	cancel    context.CancelFunc

	wg sync.WaitGroup
}

func newPanel[T any](name string, logger *slog.Logger, metrics *observability.Metrics, clk clockwork.Clock) *Panel[T] {
	return &Panel[T]{
		name:    name,
		logger:  logger.With("panel", name),
		metrics: metrics,
		clock:   clk,
	}
}

// Name returns the panel name.
func (p *Panel[T]) Name() string {
	return p.name
}

// Load marks the panel loading and runs fetch in the background under ctx.
func (p *Panel[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) {
	fetchCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.gen++
	gen := p.gen
	p.cancel = cancel
	p.loading = true
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		p.run(fetchCtx, gen, fetch)
	}()
}

func (p *Panel[T]) run(ctx context.Context, gen uint64, fetch func(context.Context) (T, error)) {
	start := p.clock.Now()
	data, err := fetch(ctx)
	p.metrics.PanelFetchDuration.WithLabelValues(p.name).Observe(p.clock.Since(start).Seconds())

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		p.metrics.StaleResponses.WithLabelValues(p.name).Inc()
		p.metrics.PanelFetches.WithLabelValues(p.name, "canceled").Inc()
		return
	}
	p.loading = false
	p.cancel = nil

	if err != nil {
		outcome := "error"
		if errors.Is(err, context.Canceled) {
			outcome = "canceled"
		}
		p.metrics.PanelFetches.WithLabelValues(p.name, outcome).Inc()
		p.err = err
		p.logger.Warn("panel fetch failed", "error", err)
		return
	}

	p.metrics.PanelFetches.WithLabelValues(p.name, "success").Inc()
	p.data = data
	p.hasData = true
	p.err = nil
	p.updatedAt = p.clock.Now()
}

// State returns a copy of the panel's current state.
func (p *Panel[T]) State() PanelState[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PanelState[T]{
		Data:      p.data,
		HasData:   p.hasData,
		Loading:   p.loading,
		Err:       p.err,
		UpdatedAt: p.updatedAt,
	}
}

// Data returns the panel's last successfully fetched view-model.
func (p *Panel[T]) Data() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data, p.hasData
}

// Loading reports whether a fetch is in flight.
func (p *Panel[T]) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Wait blocks until every issued fetch has returned.
func (p *Panel[T]) Wait() {
	p.wg.Wait()
}
