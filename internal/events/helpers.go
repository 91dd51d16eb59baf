package events

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const eventVersion = "1.0"

// Event types
const (
	TypeDecisionMade       = "agent.decision_made"
	TypeReflectionRecorded = "agent.reflection_recorded"
)

// BaseEvent carries the envelope fields shared by every event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// NewBaseEvent creates a new base event with defaults
func NewBaseEvent(eventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Version:   eventVersion,
	}
}

// TraceSummary is the compact form of a run's execution trace.
type TraceSummary struct {
	SessionID   string   `json:"session_id"`
	Path        []string `json:"path"`
	TotalMillis int64    `json:"total_ms"`
	AverageNode int64    `json:"avg_node_ms"`
	NodeCount   int      `json:"node_count"`
}

// DecisionEvent is published after every finished run.
type DecisionEvent struct {
	BaseEvent
	RunID         string       `json:"run_id"`
	Subject       string       `json:"subject"`
	Date          string       `json:"date"`
	Signal        string       `json:"signal,omitempty"`
	FinalDecision string       `json:"final_decision"`
	Trace         TraceSummary `json:"trace"`
}

// ReflectionEvent is published after a reflection bundle is produced.
type ReflectionEvent struct {
	BaseEvent
	Subject     string  `json:"subject"`
	Date        string  `json:"date"`
	Signal      string  `json:"signal"`
	Returns     float64 `json:"returns"`
	Correctness string  `json:"correctness"`
	Lessons     int     `json:"lessons_stored"`
}

// AnalysisRequest asks a serving process to run the pipeline once.
type AnalysisRequest struct {
	Subject  string `json:"subject"`
	AsOfDate string `json:"as_of_date,omitempty"`
}

// SanitizeUTF8 removes invalid UTF-8 sequences from generated text.
func SanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}
