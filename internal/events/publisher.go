package events

import (
	"context"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/kafka"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

const source = "trading-agents"

// Publisher publishes pipeline events to Kafka
type Publisher struct {
	producer kafka.Publisher
	log      *logger.Logger
}

// NewPublisher creates a new event publisher. A nil producer drops every event.
func NewPublisher(producer kafka.Publisher) *Publisher {
	if producer == nil {
		producer = kafka.NoopPublisher{}
	}
	return &Publisher{
		producer: producer,
		log:      logger.Get().With("component", "event_publisher"),
	}
}

// PublishDecision publishes the outcome of one run, keyed by subject.
func (p *Publisher) PublishDecision(ctx context.Context, event DecisionEvent) error {
	event.BaseEvent = NewBaseEvent(TypeDecisionMade, source)
	event.FinalDecision = SanitizeUTF8(event.FinalDecision)
	return p.publish(ctx, kafka.TopicAgentDecision, event.Subject, event)
}

// PublishReflection publishes a reflection summary, keyed by subject.
func (p *Publisher) PublishReflection(ctx context.Context, event ReflectionEvent) error {
	event.BaseEvent = NewBaseEvent(TypeReflectionRecorded, source)
	return p.publish(ctx, kafka.TopicAgentReflection, event.Subject, event)
}

func (p *Publisher) publish(ctx context.Context, topic, key string, event interface{}) error {
	if err := p.producer.Publish(ctx, topic, key, event); err != nil {
		p.log.Warnw("Failed to publish event", "topic", topic, "key", key, "error", err)
		return errors.Wrap(err, "send to kafka")
	}
	p.log.Debugw("Event published", "topic", topic, "key", key)
	return nil
}
