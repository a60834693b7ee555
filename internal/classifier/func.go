package classifier

import (
	"context"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

// Func adapts a plain function to risk.Classifier.
type Func func(ctx context.Context, obs domain.MaterialObservation) (string, error)

func (f Func) Predict(ctx context.Context, obs domain.MaterialObservation) (string, error) {
	return f(ctx, obs)
}
