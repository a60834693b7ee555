package risk

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

// Classifier predicts a coarse risk label for an observation. The label comes
// from the classifier's own vocabulary.
type Classifier interface {
	Predict(ctx context.Context, obs domain.MaterialObservation) (string, error)
}

// Vocabulary maps a classifier's raw labels onto the three statuses.
// Matching ignores case and surrounding whitespace.
type Vocabulary struct {
	Critical string
	Watch    string
	Safe     string
}

// DefaultVocabulary is the label set the plant models are trained with.
var DefaultVocabulary = Vocabulary{
	Critical: "Merah",
	Watch:    "Kuning",
	Safe:     "Hijau",
}

func (v Vocabulary) resolve(raw string) (domain.Status, bool) {
	label := strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(label, v.Critical):
		// only the buffer check can declare a material critical
		return domain.StatusWatch, true
	case strings.EqualFold(label, v.Watch):
		return domain.StatusWatch, true
	case strings.EqualFold(label, v.Safe):
		return domain.StatusSafe, true
	}
	return "", false
}

// Evaluator derives risk assessments. It holds no mutable state and is safe
// for concurrent use.
type Evaluator struct {
	classifier Classifier
	vocab      Vocabulary
	workers    int
}

type Option func(*Evaluator)

func WithVocabulary(v Vocabulary) Option {
	return func(e *Evaluator) { e.vocab = v }
}

// WithWorkers bounds the concurrency of EvaluateBatch.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

func NewEvaluator(classifier Classifier, opts ...Option) *Evaluator {
	e := &Evaluator{
		classifier: classifier,
		vocab:      DefaultVocabulary,
		workers:    4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate assesses a single observation with the default vocabulary.
func Evaluate(ctx context.Context, obs domain.MaterialObservation, classifier Classifier) (domain.RiskAssessment, error) {
	return NewEvaluator(classifier).Evaluate(ctx, obs)
}

// Evaluate computes depletion and buffer time for obs and derives its status.
// A non-positive buffer is Critical without consulting the classifier.
func (e *Evaluator) Evaluate(ctx context.Context, obs domain.MaterialObservation) (domain.RiskAssessment, error) {
	if err := checkFields(obs); err != nil {
		return domain.RiskAssessment{}, err
	}

	depletion := DepletionTime(obs.AvailableStock, obs.ConsumptionRate)
	buffer := depletion - obs.LeadTime

	assessment := domain.RiskAssessment{
		DepletionTime: domain.Hours(depletion),
		BufferTime:    domain.Hours(buffer),
	}

	if buffer <= 0 {
		assessment.Status = domain.StatusCritical
		return assessment, nil
	}

	if e.classifier == nil {
		return domain.RiskAssessment{}, classifierError(obs, domain.ErrNotReady)
	}

	raw, err := e.classifier.Predict(ctx, obs)
	if err != nil {
		return domain.RiskAssessment{}, classifierError(obs, err)
	}

	status, ok := e.vocab.resolve(raw)
	if !ok {
		return domain.RiskAssessment{}, classifierError(obs, fmt.Errorf("unrecognized label %q", raw))
	}
	assessment.Status = status

	return assessment, nil
}

// DepletionTime is stock/rate, or +Inf when nothing is consumed.
func DepletionTime(stock, rate float64) float64 {
	if rate > 0 {
		return stock / rate
	}
	return math.Inf(1)
}

func checkFields(obs domain.MaterialObservation) error {
	var missing []string
	if strings.TrimSpace(obs.Section) == "" {
		missing = append(missing, "destination_section")
	}
	if strings.TrimSpace(obs.Component) == "" {
		missing = append(missing, "component_name")
	}
	if math.IsNaN(obs.AvailableStock) {
		missing = append(missing, "available_stock")
	}
	if math.IsNaN(obs.ConsumptionRate) {
		missing = append(missing, "consumption_rate")
	}
	if math.IsNaN(obs.LeadTime) {
		missing = append(missing, "lead_time")
	}
	if len(missing) > 0 {
		return domain.NewMissingFieldError(missing...)
	}
	return nil
}

func classifierError(obs domain.MaterialObservation, err error) error {
	return &domain.ClassifierError{
		Section:   obs.Section,
		Component: obs.Component,
		Err:       err,
	}
}
