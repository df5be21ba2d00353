package pipeline

import (
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/pkg/logger"
)

type productStage struct {
	name  string
	phase Phase
}

// PerProduct lifts a product phase into a stage applied to every product
// that has order history. Identity-only products pass through unchanged.
func PerProduct(name string, phase Phase) Stage {
	return productStage{name: name, phase: phase}
}

func (s productStage) Name() string { return s.name }

func (s productStage) Apply(products []domain.UnifiedProduct) []domain.UnifiedProduct {
	out := make([]domain.UnifiedProduct, len(products))
	for i, p := range products {
		if !p.HasHistory() {
			out[i] = p
			continue
		}
		out[i] = s.phase(p)
	}
	return out
}

type batchStage struct {
	name string
	fn   BatchPhase
}

// Batch wraps a collection-level transformation as a stage.
func Batch(name string, fn BatchPhase) Stage {
	return batchStage{name: name, fn: fn}
}

func (s batchStage) Name() string { return s.name }

func (s batchStage) Apply(products []domain.UnifiedProduct) []domain.UnifiedProduct {
	return s.fn(products)
}

// Pipeline runs stages sequentially, each one receiving the previous output.
type Pipeline struct {
	name   string
	stages []Stage
	now    func() time.Time
}

// New creates a pipeline from the given stages.
func New(name string, stages ...Stage) *Pipeline {
	return &Pipeline{name: name, stages: stages, now: time.Now}
}

// Name returns the pipeline identifier
func (p *Pipeline) Name() string { return p.name }

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run applies every stage in order and returns the final collection.
func (p *Pipeline) Run(products []domain.UnifiedProduct) ([]domain.UnifiedProduct, RunMetrics) {
	metrics := RunMetrics{
		Pipeline:  p.name,
		Status:    StatusRunning,
		StartedAt: p.now(),
	}

	l := logger.Component("pipeline")
	current := products
	for _, stage := range p.stages {
		start := p.now()
		current = stage.Apply(current)
		m := StageMetrics{
			Name:     stage.Name(),
			Products: len(current),
			Duration: p.now().Sub(start),
		}
		metrics.Stages = append(metrics.Stages, m)

		l.Debug().
			Str("pipeline", p.name).
			Str("stage", m.Name).
			Int("products", m.Products).
			Dur("duration", m.Duration).
			Msg("stage completed")
	}

	metrics.Status = StatusCompleted
	metrics.CompletedAt = p.now()
	return current, metrics
}

// Apply runs the phases on a single product in order. Products without
// history are returned unchanged.
func Apply(p domain.UnifiedProduct, phases ...Phase) domain.UnifiedProduct {
	if !p.HasHistory() {
		return p
	}
	for _, phase := range phases {
		p = phase(p)
	}
	return p
}
