package runner_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/petasbytes/chat-cli/internal/responses"
	"github.com/petasbytes/chat-cli/internal/runner"
	"github.com/petasbytes/chat-cli/tools"
)

// scriptedClient returns canned responses in order, recording every
// request it sees. When the script runs out, the last entry repeats.
type scriptedClient struct {
	script []*responses.Response
	reqs   []responses.Request
	err    error
}

func (c *scriptedClient) Create(_ context.Context, req responses.Request) (*responses.Response, error) {
	c.reqs = append(c.reqs, req)
	if c.err != nil {
		return nil, c.err
	}
	i := len(c.reqs) - 1
	if i >= len(c.script) {
		i = len(c.script) - 1
	}
	return c.script[i], nil
}

type recordingObserver struct {
	dispatches []string
	results    []string
	resultErrs []bool
	capEvents  int
}

func (r *recordingObserver) ToolDispatch(name string, _ map[string]any) {
	r.dispatches = append(r.dispatches, name)
}

func (r *recordingObserver) ToolResult(name, output string, isErr bool) {
	r.results = append(r.results, name)
	r.resultErrs = append(r.resultErrs, isErr)
}

func (r *recordingObserver) LoopCapExceeded(int) { r.capEvents++ }

func msgResponse(text string) *responses.Response {
	return &responses.Response{
		ID: "resp_msg",
		Output: []responses.Item{{
			Type:    responses.ItemTypeMessage,
			Role:    "assistant",
			Content: responses.ContentParts{{Type: "output_text", Text: text}},
		}},
	}
}

func callResponse(id string, calls ...responses.Item) *responses.Response {
	return &responses.Response{ID: id, Output: calls}
}

func fnCall(name, callID, args string) responses.Item {
	return responses.Item{Type: responses.ItemTypeFunctionCall, Name: name, CallID: callID, Arguments: args}
}

func echoTool(t *testing.T) tools.ToolDefinition {
	t.Helper()
	type echoInput struct {
		Value string `json:"value"`
	}
	return tools.ToolDefinition{
		Name:        "echo",
		Description: "Echo the value back.",
		Parameters:  tools.GenerateSchema[echoInput](),
		Function: func(input json.RawMessage) (string, error) {
			var in echoInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			return "echo:" + in.Value, nil
		},
	}
}

func failTool() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "always_fails",
		Description: "Fails every time.",
		Function: func(json.RawMessage) (string, error) {
			return "", fmt.Errorf("boom")
		},
	}
}

func TestRun_NoToolCalls_SingleModelCall(t *testing.T) {
	client := &scriptedClient{script: []*responses.Response{msgResponse("hi there")}}
	r := runner.New(client, []tools.ToolDefinition{echoTool(t)}, nil, nil)

	resp, err := r.Run(context.Background(), "gpt-5", []responses.Item{responses.UserMessage("hello")}, "", false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := resp.Text(); got != "hi there" {
		t.Fatalf("unexpected text: %q", got)
	}
	if len(client.reqs) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(client.reqs))
	}
}

func TestRun_DispatchesToolAndFeedsResultBack(t *testing.T) {
	client := &scriptedClient{script: []*responses.Response{
		callResponse("r1", fnCall("echo", "call_1", `{"value":"x"}`)),
		msgResponse("done"),
	}}
	obs := &recordingObserver{}
	r := runner.New(client, []tools.ToolDefinition{echoTool(t)}, obs, nil)

	resp, err := r.Run(context.Background(), "gpt-5", []responses.Item{responses.UserMessage("go")}, "conv_1", false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.Text() != "done" {
		t.Fatalf("unexpected final text: %q", resp.Text())
	}
	if len(client.reqs) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(client.reqs))
	}

	// Second request must carry: user msg, echoed function_call, result.
	second := client.reqs[1].Input
	if len(second) != 3 {
		t.Fatalf("expected 3 input items on second call, got %d", len(second))
	}
	if second[1].Type != responses.ItemTypeFunctionCall || second[1].CallID != "call_1" {
		t.Fatalf("model output not echoed before results: %+v", second[1])
	}
	out := second[2]
	if out.Type != responses.ItemTypeFunctionCallOutput || out.CallID != "call_1" {
		t.Fatalf("unexpected result item: %+v", out)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(out.Output), &payload); err != nil {
		t.Fatalf("result payload not JSON: %v", err)
	}
	if payload["result"] != "echo:x" {
		t.Fatalf("unexpected result payload: %v", payload)
	}

	if len(obs.dispatches) != 1 || obs.dispatches[0] != "echo" {
		t.Fatalf("unexpected dispatch narration: %v", obs.dispatches)
	}
	if len(obs.results) != 1 || obs.resultErrs[0] {
		t.Fatalf("unexpected result narration: %v errs=%v", obs.results, obs.resultErrs)
	}

	// Conversation id rides along on every call.
	for i, req := range client.reqs {
		if req.Conversation != "conv_1" {
			t.Fatalf("call %d lost conversation id: %q", i, req.Conversation)
		}
	}
}

func TestRun_UnknownTool_ErrorPayloadNamesTool(t *testing.T) {
	client := &scriptedClient{script: []*responses.Response{
		callResponse("r1", fnCall("delete_universe", "call_9", `{}`)),
		msgResponse("ok"),
	}}
	r := runner.New(client, []tools.ToolDefinition{echoTool(t)}, nil, nil)

	_, err := r.Run(context.Background(), "gpt-5", []responses.Item{responses.UserMessage("do it")}, "", false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(client.reqs) != 2 {
		t.Fatalf("expected a second model call with the result appended, got %d calls", len(client.reqs))
	}

	second := client.reqs[1].Input
	out := second[len(second)-1]
	if out.Type != responses.ItemTypeFunctionCallOutput || out.CallID != "call_9" {
		t.Fatalf("unexpected result item: %+v", out)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(out.Output), &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if !strings.Contains(payload["error"], "delete_universe") {
		t.Fatalf("error payload should name the tool: %v", payload)
	}
}

func TestRun_BadArguments_HandlerNotInvoked(t *testing.T) {
	invoked := false
	def := tools.ToolDefinition{
		Name: "tracked",
		Function: func(json.RawMessage) (string, error) {
			invoked = true
			return "nope", nil
		},
	}
	client := &scriptedClient{script: []*responses.Response{
		callResponse("r1", fnCall("tracked", "call_2", `not json at all`)),
		msgResponse("ok"),
	}}
	r := runner.New(client, []tools.ToolDefinition{def}, nil, nil)

	if _, err := r.Run(context.Background(), "gpt-5", nil, "", false); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if invoked {
		t.Fatal("handler must not run on undecodable arguments")
	}
	second := client.reqs[1].Input
	out := second[len(second)-1]
	var payload map[string]string
	if err := json.Unmarshal([]byte(out.Output), &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if !strings.Contains(payload["error"], "tracked") {
		t.Fatalf("expected decode failure naming the tool, got %v", payload)
	}
}

func TestRun_HandlerError_TurnContinues(t *testing.T) {
	client := &scriptedClient{script: []*responses.Response{
		callResponse("r1",
			fnCall("always_fails", "call_a", `{}`),
			fnCall("echo", "call_b", `{"value":"y"}`),
		),
		msgResponse("recovered"),
	}}
	obs := &recordingObserver{}
	r := runner.New(client, []tools.ToolDefinition{echoTool(t), failTool()}, obs, nil)

	resp, err := r.Run(context.Background(), "gpt-5", nil, "", false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.Text() != "recovered" {
		t.Fatalf("unexpected final text: %q", resp.Text())
	}

	// Both calls answered, in response order, same call_id set.
	second := client.reqs[1].Input
	var gotIDs []string
	for _, it := range second {
		if it.Type == responses.ItemTypeFunctionCallOutput {
			gotIDs = append(gotIDs, it.CallID)
		}
	}
	if len(gotIDs) != 2 || gotIDs[0] != "call_a" || gotIDs[1] != "call_b" {
		t.Fatalf("unexpected result call_ids: %v", gotIDs)
	}
	if len(obs.results) != 2 || !obs.resultErrs[0] || obs.resultErrs[1] {
		t.Fatalf("unexpected result narration: %v errs=%v", obs.results, obs.resultErrs)
	}
}

func TestRun_IterationCap(t *testing.T) {
	// Model requests tools forever; Run must stop at 5 calls and return
	// the last response unchanged, with exactly one cap notification.
	loop := callResponse("r_loop", fnCall("echo", "call_x", `{"value":"again"}`))
	client := &scriptedClient{script: []*responses.Response{loop}}
	obs := &recordingObserver{}
	r := runner.New(client, []tools.ToolDefinition{echoTool(t)}, obs, nil)

	resp, err := r.Run(context.Background(), "gpt-5", []responses.Item{responses.UserMessage("loop")}, "", false)
	if err != nil {
		t.Fatalf("cap exhaustion must not be an error: %v", err)
	}
	if len(client.reqs) != 5 {
		t.Fatalf("expected exactly 5 model calls, got %d", len(client.reqs))
	}
	if resp.ID != "r_loop" {
		t.Fatalf("expected last response returned, got %q", resp.ID)
	}
	if len(resp.FunctionCalls()) == 0 {
		t.Fatal("capped-out response should still contain unresolved tool calls")
	}
	if obs.capEvents != 1 {
		t.Fatalf("expected exactly one cap notification, got %d", obs.capEvents)
	}
}

func TestRun_SearchCapabilityAdvertised(t *testing.T) {
	client := &scriptedClient{script: []*responses.Response{msgResponse("ok")}}
	r := runner.New(client, []tools.ToolDefinition{echoTool(t)}, nil, nil)

	if _, err := r.Run(context.Background(), "gpt-5", nil, "", true); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	req := client.reqs[0]
	var hasSearch bool
	for _, tool := range req.Tools {
		if tool.Type == "web_search" {
			hasSearch = true
		}
	}
	if !hasSearch {
		t.Fatalf("web_search missing from tool payload: %+v", req.Tools)
	}
	if len(req.Include) != 1 || !strings.Contains(req.Include[0], "sources") {
		t.Fatalf("expected sources include directive, got %v", req.Include)
	}

	// And absent when disabled.
	client2 := &scriptedClient{script: []*responses.Response{msgResponse("ok")}}
	r2 := runner.New(client2, []tools.ToolDefinition{echoTool(t)}, nil, nil)
	if _, err := r2.Run(context.Background(), "gpt-5", nil, "", false); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, tool := range client2.reqs[0].Tools {
		if tool.Type == "web_search" {
			t.Fatal("web_search advertised while disabled")
		}
	}
	if len(client2.reqs[0].Include) != 0 {
		t.Fatalf("unexpected include directives: %v", client2.reqs[0].Include)
	}
}

func TestRun_ModelError_Propagates(t *testing.T) {
	client := &scriptedClient{err: fmt.Errorf("connection refused")}
	r := runner.New(client, nil, nil, nil)

	_, err := r.Run(context.Background(), "gpt-5", nil, "", false)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected propagated model error, got %v", err)
	}
}
