package view

import (
	"github.com/Sureka400/Ecolens-AI/internal/domain"
	"github.com/Sureka400/Ecolens-AI/internal/observability"
)

// Icons resolves glyphs from stable identifiers. Unknown identifiers fall
// back to a default symbol and are counted.
type Icons struct {
	metrics *observability.Metrics
}

// NewIcons creates an icon resolver reporting fallbacks to metrics.
func NewIcons(metrics *observability.Metrics) *Icons {
	return &Icons{metrics: metrics}
}

func (i *Icons) resolve(kind string, sym domain.Symbol, ok bool) string {
	if !ok {
		i.metrics.IconFallbacks.WithLabelValues(kind).Inc()
	}
	return sym.Glyph()
}

// Action returns the glyph for a recommended action.
func (i *Icons) Action(a domain.Action) string {
	sym, ok := domain.ActionSymbol(a.ResolveKind())
	return i.resolve("action", sym, ok)
}

// Component returns the glyph for an impact score component.
func (i *Icons) Component(c domain.ScoreComponent) string {
	sym, ok := domain.ComponentSymbol(c.ResolveKind())
	return i.resolve("component", sym, ok)
}

// Layer returns the glyph for a map layer.
func (i *Icons) Layer(id string) string {
	sym, ok := domain.LayerSymbol(id)
	return i.resolve("layer", sym, ok)
}

// Metric returns the glyph for a snapshot metric.
func (i *Icons) Metric(title string) string {
	sym, ok := domain.MetricSymbol(title)
	return i.resolve("metric", sym, ok)
}
