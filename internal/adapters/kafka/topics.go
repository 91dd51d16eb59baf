package kafka

// Topic definitions for Kafka event streaming
const (
	// TopicAgentDecision carries one DecisionEvent per finished run.
	TopicAgentDecision = "agents.decisions"
	// TopicAgentReflection carries one ReflectionEvent per reflection bundle.
	TopicAgentReflection = "agents.reflections"
	// TopicAnalysisRequests carries on-demand AnalysisRequest messages consumed by serve.
	TopicAnalysisRequests = "agents.requests"
)
