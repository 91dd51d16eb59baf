package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// DefaultMaxSteps bounds the reason/act iterations of one analyst.
const DefaultMaxSteps = 5

// Analyst writes one report by alternating model calls and tool invocations.
type Analyst struct {
	kind     analysis.ReportKind
	agent    AgentType
	invoker  *Invoker
	catalog  tools.Catalog
	maxSteps int
	log      *logger.Logger
}

// NewAnalyst builds the producer of kind. Every analyst receives the full catalog.
func NewAnalyst(kind analysis.ReportKind, invoker *Invoker, catalog tools.Catalog, maxSteps int) *Analyst {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	agent := AnalystFor(kind)
	return &Analyst{
		kind:     kind,
		agent:    agent,
		invoker:  invoker,
		catalog:  catalog,
		maxSteps: maxSteps,
		log:      logger.Get().With("component", "analyst", "agent", agent),
	}
}

func (a *Analyst) Kind() analysis.ReportKind { return a.kind }

func (a *Analyst) Name() string { return a.agent.String() }

// Produce runs the ReAct loop against a read-only snapshot. The report is the text of the
// first reply that requests no tool; when the step bound runs out, the last reply's text is
// kept, which may be empty.
func (a *Analyst) Produce(ctx context.Context, snapshot analysis.State) (string, []analysis.AuditEntry, error) {
	system, task, err := a.prompts(snapshot)
	if err != nil {
		return "", nil, err
	}

	conv := NewConversation(system, task)
	defs := a.catalog.Definitions()
	audit := []analysis.AuditEntry{{Role: "user", Text: task}}

	var last string
	for step := 1; step <= a.maxSteps; step++ {
		reply, err := a.invoker.Chat(ctx, a.agent, conv.Messages(), defs)
		if err != nil {
			return "", audit, errors.Wrapf(err, "%s step %d", a.agent, step)
		}
		conv.AddAssistantMessage(reply)
		last = strings.TrimSpace(reply.Content)

		if len(reply.ToolCalls) == 0 {
			a.log.Debugw("Analyst finished", "step", step, "report_length", len(last))
			audit = append(audit, analysis.AuditEntry{Role: a.agent.String(), Text: last})
			return last, audit, nil
		}

		for _, call := range reply.ToolCalls {
			args := DecodeToolArgs(call.Function.Arguments)
			result := a.catalog.Invoke(ctx, call.Function.Name, args)
			conv.AddToolResult(call.ID, call.Function.Name, result)
			audit = append(audit,
				analysis.AuditEntry{Role: a.agent.String(), Text: fmt.Sprintf("tool call %s(%s)", call.Function.Name, call.Function.Arguments)},
				analysis.AuditEntry{Role: "tool:" + call.Function.Name, Text: result},
			)
		}
		a.log.Debugw("Analyst step used tools", "step", step, "tool_calls", len(reply.ToolCalls))
	}

	a.log.Warnw("Analyst hit step bound", "max_steps", a.maxSteps, "report_length", len(last))
	audit = append(audit, analysis.AuditEntry{Role: a.agent.String(), Text: last})
	return last, audit, nil
}

func (a *Analyst) prompts(s analysis.State) (system, task string, err error) {
	data := map[string]any{
		"Subject":   s.Subject,
		"Date":      s.AsOfDate,
		"Kind":      string(a.kind),
		"ToolNames": a.catalog.Names(),
	}

	instructions, err := a.invoker.Render(ConfigFor(a.agent).SystemPromptTemplate, data)
	if err != nil {
		return "", "", err
	}
	data["Instructions"] = instructions

	if system, err = a.invoker.Render("agents/analyst_system", data); err != nil {
		return "", "", err
	}
	if task, err = a.invoker.Render("agents/analyst_task", data); err != nil {
		return "", "", err
	}
	return system, task, nil
}

// DecodeToolArgs turns a model's JSON argument object into string arguments.
// Malformed JSON is repaired first; non-string values are formatted.
func DecodeToolArgs(raw string) tools.Args {
	args := tools.Args{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return args
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		repaired, rerr := jsonrepair.RepairJSON(raw)
		if rerr != nil {
			return args
		}
		if err := json.Unmarshal([]byte(repaired), &decoded); err != nil {
			return args
		}
	}

	for k, v := range decoded {
		switch val := v.(type) {
		case string:
			args[k] = val
		case nil:
		case float64:
			args[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			args[k] = fmt.Sprint(val)
		}
	}
	return args
}
