package driven

import (
	"context"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
)

// Narrator defines the driven port for the external text-generation provider.
// Implementations return provider failures as errors; callers decide how to
// degrade.
type Narrator interface {
	Summarize(ctx context.Context, metrics model.MetricRecord) (string, error)
}
