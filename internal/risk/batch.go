package risk

import (
	"context"
	"sync"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

// Result is the outcome of evaluating one observation in a batch.
type Result struct {
	Observation domain.MaterialObservation
	Assessment  domain.RiskAssessment
	Err         error
}

// EvaluateBatch evaluates observations on a bounded worker pool. Results keep
// the input order, and a failure is recorded only on its own result.
func (e *Evaluator) EvaluateBatch(ctx context.Context, observations []domain.MaterialObservation) []Result {
	results := make([]Result, len(observations))
	if len(observations) == 0 {
		return results
	}

	workerCount := e.workers
	if workerCount > len(observations) {
		workerCount = len(observations)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				obs := observations[idx]
				assessment, err := e.Evaluate(ctx, obs)
				results[idx] = Result{Observation: obs, Assessment: assessment, Err: err}
			}
		}()
	}

	for i := range observations {
		select {
		case <-ctx.Done():
			// unscheduled observations carry the cancellation
			for j := i; j < len(observations); j++ {
				results[j] = Result{Observation: observations[j], Err: ctx.Err()}
			}
			close(jobs)
			wg.Wait()
			return results
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}
