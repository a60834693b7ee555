// Package alert publishes critical material events to Kafka.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
	"github.com/andresuchdata/ppic-monitor/internal/risk"
)

// CriticalEvent is emitted once per Critical assessment.
type CriticalEvent struct {
	ID            string       `json:"id"`
	Timestamp     time.Time    `json:"timestamp"`
	ObservedAt    time.Time    `json:"observed_at"`
	Section       string       `json:"destination_section"`
	Component     string       `json:"component_name"`
	Stock         float64      `json:"available_stock"`
	LeadTime      float64      `json:"lead_time"`
	DepletionTime domain.Hours `json:"depletion_time"`
	BufferTime    domain.Hours `json:"buffer_time"`
}

// Key groups events of one section and component on the same partition.
func (e CriticalEvent) Key() string {
	return e.Section + "|" + e.Component
}

type Publisher interface {
	PublishCritical(ctx context.Context, results []risk.Result) (int, error)
	Close() error
}

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 250 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}

// NewPublisher returns a Kafka publisher, or a noop one when no brokers are
// configured.
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 || topic == "" {
		return NoopPublisher{}
	}
	return &KafkaPublisher{writer: NewWriter(brokers, topic), now: time.Now}
}

func (p *KafkaPublisher) PublishCritical(ctx context.Context, results []risk.Result) (int, error) {
	events := CriticalEvents(results, p.now().UTC())
	if len(events) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		body, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("encode critical event: %w", err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(e.Key()), Value: body, Time: e.Timestamp})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish critical events: %w", err)
	}
	log.Info().Int("events", len(msgs)).Msg("alert: published critical materials")
	return len(msgs), nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// CriticalEvents builds one event per successful Critical result.
func CriticalEvents(results []risk.Result, now time.Time) []CriticalEvent {
	var events []CriticalEvent
	for _, r := range results {
		if r.Err != nil || r.Assessment.Status != domain.StatusCritical {
			continue
		}
		events = append(events, CriticalEvent{
			ID:            uuid.NewString(),
			Timestamp:     now,
			ObservedAt:    r.Observation.ObservedAt,
			Section:       r.Observation.Section,
			Component:     r.Observation.Component,
			Stock:         r.Observation.AvailableStock,
			LeadTime:      r.Observation.LeadTime,
			DepletionTime: r.Assessment.DepletionTime,
			BufferTime:    r.Assessment.BufferTime,
		})
	}
	return events
}

type NoopPublisher struct{}

func (NoopPublisher) PublishCritical(ctx context.Context, results []risk.Result) (int, error) {
	return 0, nil
}

func (NoopPublisher) Close() error { return nil }
