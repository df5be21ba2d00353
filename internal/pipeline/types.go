package pipeline

import (
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
)

// Phase derives new values for a single product. Implementations must not
// mutate the slices of their input.
type Phase func(domain.UnifiedProduct) domain.UnifiedProduct

// BatchPhase transforms a whole product collection.
type BatchPhase func([]domain.UnifiedProduct) []domain.UnifiedProduct

// Stage defines the interface every analysis stage implements
type Stage interface {
	// Name returns the identifier used in logs and metrics
	Name() string

	// Apply returns the transformed collection
	Apply(products []domain.UnifiedProduct) []domain.UnifiedProduct
}

// RunStatus represents the state of a pipeline run
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
)

// StageMetrics holds the outcome of a single stage
type StageMetrics struct {
	Name     string
	Products int
	Duration time.Duration
}

// RunMetrics summarises a complete run
type RunMetrics struct {
	Pipeline    string
	Status      RunStatus
	Stages      []StageMetrics
	StartedAt   time.Time
	CompletedAt time.Time
}
