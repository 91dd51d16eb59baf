package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/kafka"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "valid string unchanged", input: "FINAL TRANSACTION PROPOSAL: **BUY**", expected: "FINAL TRANSACTION PROPOSAL: **BUY**"},
		{name: "empty string", input: "", expected: ""},
		{name: "invalid byte removed", input: "Hello\xffWorld", expected: "HelloWorld"},
		{name: "multiple invalid sequences", input: "Start\xffMiddle\xfeEnd\xfd", expected: "StartMiddleEnd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeUTF8(tt.input))
		})
	}
}

type recordingProducer struct {
	topics []string
	keys   []string
	events []interface{}
	err    error
}

func (r *recordingProducer) Publish(_ context.Context, topic, key string, event interface{}) error {
	r.topics = append(r.topics, topic)
	r.keys = append(r.keys, key)
	r.events = append(r.events, event)
	return r.err
}

func TestPublisher_PublishDecision(t *testing.T) {
	rec := &recordingProducer{}
	pub := NewPublisher(rec)

	err := pub.PublishDecision(context.Background(), DecisionEvent{
		RunID:         "run-1",
		Subject:       "ACME",
		Date:          "2024-01-10",
		FinalDecision: "HOLD\xff",
	})
	require.NoError(t, err)

	require.Len(t, rec.events, 1)
	assert.Equal(t, kafka.TopicAgentDecision, rec.topics[0])
	assert.Equal(t, "ACME", rec.keys[0])

	event := rec.events[0].(DecisionEvent)
	assert.Equal(t, TypeDecisionMade, event.Type)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "HOLD", event.FinalDecision)
}

func TestPublisher_PublishReflectionError(t *testing.T) {
	rec := &recordingProducer{err: errors.ErrExternal}
	pub := NewPublisher(rec)

	err := pub.PublishReflection(context.Background(), ReflectionEvent{Subject: "ACME"})
	assert.ErrorIs(t, err, errors.ErrExternal)
	assert.Equal(t, kafka.TopicAgentReflection, rec.topics[0])
}

func TestPublisher_NilProducerDrops(t *testing.T) {
	assert.NoError(t, NewPublisher(nil).PublishDecision(context.Background(), DecisionEvent{Subject: "ACME"}))
}
