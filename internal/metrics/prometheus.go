package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_agents_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trading_agents_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{1, 10, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trading_agents_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Agent metrics
	AgentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_agents_agent_calls_total",
			Help: "Total number of generative calls per agent role",
		},
		[]string{"agent", "model", "status"}, // status: success|error|timeout
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trading_agents_agent_latency_seconds",
			Help:    "Generative call latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"agent", "model"},
	)

	AgentTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_agents_agent_tokens_total",
			Help: "Total tokens used by agents",
		},
		[]string{"agent", "model", "type"}, // type: input|output
	)

	// Tool metrics
	ToolExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_agents_tool_executions_total",
			Help: "Total number of tool executions",
		},
		[]string{"tool", "status"},
	)

	ToolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trading_agents_tool_latency_seconds",
			Help:    "Tool execution latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"tool"},
	)

	// Pipeline metrics
	NodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trading_agents_node_duration_seconds",
			Help:    "Pipeline node execution time in seconds",
			Buckets: []float64{0.01, 0.1, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"node"},
	)

	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trading_agents_run_duration_seconds",
			Help:    "End-to-end pipeline run time in seconds",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 1800},
		},
	)

	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_agents_runs_total",
			Help: "Completed pipeline runs",
		},
		[]string{"status"}, // success|error|locked
	)

	DebateRounds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trading_agents_debate_rounds",
			Help:    "Round count of each debate at termination",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
		[]string{"debate"},
	)

	DegradedOutputs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_agents_degraded_outputs_total",
			Help: "Stage outputs replaced by an empty value after a failure",
		},
		[]string{"stage"},
	)

	Decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_agents_decisions_total",
			Help: "Extracted decision labels",
		},
		[]string{"signal"},
	)

	ReflectionVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_agents_reflection_verdicts_total",
			Help: "Correctness verdicts computed by reflection",
		},
		[]string{"verdict"},
	)

	// Infrastructure metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_agents_kafka_messages_total",
			Help: "Messages published to or consumed from Kafka",
		},
		[]string{"topic", "direction", "status"}, // direction: publish|consume
	)
)

var initOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			WorkerExecutions, WorkerDuration, WorkerLastRun,
			AgentCalls, AgentLatency, AgentTokens,
			ToolExecutions, ToolLatency,
			NodeDuration, RunDuration, Runs, DebateRounds, DegradedOutputs,
			Decisions, ReflectionVerdicts,
			KafkaMessages,
		)
	})
}

// Handler returns the /metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	WorkerExecutions.WithLabelValues(worker, status(err)).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordAgentCall records one generative call of an agent role.
func RecordAgentCall(agent, model string, latency time.Duration, inputTokens, outputTokens int, err error) {
	AgentCalls.WithLabelValues(agent, model, status(err)).Inc()
	AgentLatency.WithLabelValues(agent, model).Observe(latency.Seconds())
	if inputTokens > 0 {
		AgentTokens.WithLabelValues(agent, model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		AgentTokens.WithLabelValues(agent, model, "output").Add(float64(outputTokens))
	}
}

func RecordToolExecution(tool string, latency time.Duration, err error) {
	ToolExecutions.WithLabelValues(tool, status(err)).Inc()
	ToolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

func RecordNode(node string, duration time.Duration) {
	NodeDuration.WithLabelValues(node).Observe(duration.Seconds())
}

func RecordRun(duration time.Duration, result string) {
	Runs.WithLabelValues(result).Inc()
	if duration > 0 {
		RunDuration.Observe(duration.Seconds())
	}
}

func RecordDebate(debate string, rounds int) {
	DebateRounds.WithLabelValues(debate).Observe(float64(rounds))
}

func RecordDegraded(stage string) {
	DegradedOutputs.WithLabelValues(stage).Inc()
}

func RecordKafkaMessage(topic, direction string, err error) {
	KafkaMessages.WithLabelValues(topic, direction, status(err)).Inc()
}

func RecordDecision(signal string) {
	Decisions.WithLabelValues(signal).Inc()
}

func RecordReflectionVerdict(verdict string) {
	ReflectionVerdicts.WithLabelValues(verdict).Inc()
}
