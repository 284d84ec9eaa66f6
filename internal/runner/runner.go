package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/petasbytes/chat-cli/internal/responses"
	"github.com/petasbytes/chat-cli/internal/telemetry"
	"github.com/petasbytes/chat-cli/tools"
)

// maxIterations is the hard cap on model calls per Run. The model,
// local tools, and this loop form a closed feedback cycle with no
// external rate limit; the cap is a liveness bound, not a tunable.
const maxIterations = 5

// includeSearchSources asks the service to attach citation provenance
// to web search invocations.
const includeSearchSources = "web_search_call.action.sources"

// ModelClient issues one model call. Failures are not retried here;
// they propagate to the caller unchanged.
type ModelClient interface {
	Create(ctx context.Context, req responses.Request) (*responses.Response, error)
}

// Observer is notified synchronously at well-defined points so the
// surrounding CLI can narrate tool execution without the loop knowing
// about presentation.
type Observer interface {
	// ToolDispatch fires before a tool handler runs.
	ToolDispatch(name string, args map[string]any)
	// ToolResult fires after exactly one result has been produced for a
	// tool-call request, whether it succeeded or carries an error payload.
	ToolResult(name, output string, isErr bool)
	// LoopCapExceeded fires once when Run stops without a tool-free
	// response.
	LoopCapExceeded(iterations int)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) ToolDispatch(string, map[string]any) {}
func (NopObserver) ToolResult(string, string, bool)     {}
func (NopObserver) LoopCapExceeded(int)                 {}

// Runner drives the model/tool feedback loop for one turn.
type Runner struct {
	client ModelClient
	defs   []tools.ToolDefinition
	byName map[string]tools.ToolDefinition
	obs    Observer
	logger *slog.Logger
}

// New builds a Runner over the given model client and tool set. obs and
// logger may be nil.
func New(client ModelClient, defs []tools.ToolDefinition, obs Observer, logger *slog.Logger) *Runner {
	if obs == nil {
		obs = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		client: client,
		defs:   defs,
		byName: tools.ByName(defs),
		obs:    obs,
		logger: logger.With("component", "runner"),
	}
}

// toolPayload builds the advertised tool list: the static definitions
// plus the hosted web_search capability when enabled.
func (r *Runner) toolPayload(searchEnabled bool) []responses.Tool {
	out := make([]responses.Tool, 0, len(r.defs)+1)
	for _, d := range r.defs {
		out = append(out, responses.Tool{
			Type:        "function",
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		})
	}
	if searchEnabled {
		out = append(out, responses.Tool{Type: "web_search"})
	}
	return out
}

// Run repeatedly calls the model, dispatching tool-call requests and
// feeding results back, until the model returns a response without tool
// calls or the iteration cap is hit. On cap exhaustion the last
// response is returned as-is; that is a degraded but non-fatal outcome.
func (r *Runner) Run(ctx context.Context, model string, input []responses.Item, conversationID string, searchEnabled bool) (*responses.Response, error) {
	toolList := r.toolPayload(searchEnabled)
	var include []string
	if searchEnabled {
		include = []string{includeSearchSources}
	}

	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = telemetry.NewTurnID()
		ctx = telemetry.WithTurnID(ctx, turnID)
	}

	var last *responses.Response
	for i := 0; i < maxIterations; i++ {
		resp, err := r.client.Create(ctx, responses.Request{
			Model:        model,
			Input:        input,
			Tools:        toolList,
			Include:      include,
			Conversation: conversationID,
		})
		if err != nil {
			return nil, err
		}
		last = resp

		calls := resp.FunctionCalls()
		telemetry.Emit("model_call", map[string]any{
			"turn_id":      turnID,
			"iteration":    i + 1,
			"output_items": len(resp.Output),
			"tool_calls":   len(calls),
		})
		if len(calls) == 0 {
			return resp, nil
		}

		// The remote side expects to see its own prior output echoed
		// back before the results follow.
		input = append(input, resp.Output...)
		for _, call := range calls {
			input = append(input, r.execTool(ctx, call))
		}
	}

	r.logger.Warn("stopping tool loop to avoid infinite cycle", "iterations", maxIterations)
	telemetry.Emit("loop_cap", map[string]any{"turn_id": turnID, "iterations": maxIterations})
	r.obs.LoopCapExceeded(maxIterations)
	return last, nil
}

// execTool dispatches one tool-call request and always returns exactly
// one result item for it. Every failure mode becomes an error payload
// in the result; nothing escapes as an error, so a failing tool cannot
// abort the turn or starve other pending calls.
func (r *Runner) execTool(ctx context.Context, call responses.Item) responses.Item {
	turnID, _ := telemetry.TurnIDFromContext(ctx)

	emit := func(durationMs int64, inputSize, outputSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   call.Name,
			"duration_ms": durationMs,
			"input_size":  inputSize,
			"output_size": outputSize,
			"turn_id":     turnID,
		}
		if errStr != "" {
			fields["error"] = errStr
		} else {
			fields["error"] = nil
		}
		telemetry.Emit("tool_exec", fields)
	}

	start := time.Now()
	inSize := len(call.Arguments)

	def, ok := r.byName[call.Name]
	if !ok {
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool not found")
		msg := fmt.Sprintf("Tool '%s' is not available in this CLI.", call.Name)
		r.obs.ToolResult(call.Name, msg, true)
		return errorResult(call.CallID, msg)
	}

	raw := call.Arguments
	if raw == "" {
		raw = "{}"
	}
	// Arguments must decode to a flat key/value object before the
	// handler sees them.
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		emit(time.Since(start).Milliseconds(), inSize, 0, "bad arguments")
		msg := fmt.Sprintf("Failed to parse arguments for %s: %v", call.Name, err)
		r.obs.ToolResult(call.Name, msg, true)
		return errorResult(call.CallID, msg)
	}

	r.obs.ToolDispatch(call.Name, args)

	out, err := def.Function(json.RawMessage(raw))
	if err != nil {
		// Generic error string in telemetry to avoid leaking payloads;
		// the detailed message still reaches the model in the result.
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool error")
		msg := fmt.Sprintf("Tool %s raised an error: %v", call.Name, err)
		r.obs.ToolResult(call.Name, msg, true)
		return errorResult(call.CallID, msg)
	}

	emit(time.Since(start).Milliseconds(), inSize, len(out), "")
	r.obs.ToolResult(call.Name, out, false)
	b, _ := json.Marshal(map[string]string{"result": out})
	return responses.FunctionCallOutput(call.CallID, string(b))
}

func errorResult(callID, msg string) responses.Item {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return responses.FunctionCallOutput(callID, string(b))
}
