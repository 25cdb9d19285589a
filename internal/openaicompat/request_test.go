package openaicompat

import (
	"context"
	"encoding/json"
	"testing"

	"chatbridge/internal/lm"
	"chatbridge/internal/transport"
)

func lastRequest(t *testing.T, replay *transport.Replay) map[string]any {
	t.Helper()
	requests := replay.Requests()
	if len(requests) == 0 {
		t.Fatalf("no request recorded")
	}
	var payload map[string]any
	if err := json.Unmarshal(requests[len(requests)-1], &payload); err != nil {
		t.Fatalf("invalid request payload: %v", err)
	}
	return payload
}

var weatherTool = lm.Tool{
	Name:        "weather",
	Description: "Look up the weather",
	Parameters: map[string]any{
		"type":       "object",
		"properties": map[string]any{"city": map[string]any{"type": "string"}},
		"required":   []string{"city"},
	},
}

var timeTool = lm.Tool{Name: "time", Parameters: map[string]any{"type": "object"}}

func TestRequestPlainGenerate(t *testing.T) {
	replay := transport.NewReplay(helloResponse, "")
	model := NewChatModel("gpt-4o", replay, Settings{})

	_, err := model.DoGenerate(context.Background(), lm.CallOptions{
		Prompt: lm.Prompt{lm.System("Be brief."), lm.User("Hello")},
		Mode:   lm.Mode{Type: lm.ModePlain, Tools: []lm.Tool{weatherTool}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := lastRequest(t, replay)
	if payload["model"] != "gpt-4o" {
		t.Fatalf("model = %v", payload["model"])
	}
	if v, ok := payload["logprobs"]; !ok || v != false {
		t.Fatalf("logprobs = %v (present=%v)", v, ok)
	}
	for _, key := range []string{"tools", "tool_choice", "stream", "stream_options", "top_logprobs"} {
		if _, ok := payload[key]; ok {
			t.Fatalf("unexpected key %q in %v", key, payload)
		}
	}

	messages, _ := payload["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %v", payload["messages"])
	}
	system := messages[0].(map[string]any)
	if system["role"] != "system" || system["content"] != "Be brief." {
		t.Fatalf("system message = %v", system)
	}
	user := messages[1].(map[string]any)
	if user["role"] != "user" || user["content"] != "Hello" {
		t.Fatalf("user message = %v", user)
	}
}

func TestRequestStreamWithTools(t *testing.T) {
	replay := transport.NewReplay("", sseBody())
	model := NewChatModel("gpt-4o", replay, Settings{LogProbs: true, TopLogProbs: 2})

	stream, err := model.DoStream(context.Background(), lm.CallOptions{
		Prompt: lm.Prompt{lm.User("Weather in Paris?")},
		Mode:   lm.ToolMode(lm.ToolChoice{Type: lm.ToolChoiceAuto}, weatherTool, timeTool),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := lm.Collect(stream.Events()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := lastRequest(t, replay)
	if payload["stream"] != true {
		t.Fatalf("stream = %v", payload["stream"])
	}
	opts, _ := payload["stream_options"].(map[string]any)
	if opts["include_usage"] != true {
		t.Fatalf("stream_options = %v", payload["stream_options"])
	}
	if payload["logprobs"] != true || payload["top_logprobs"] != float64(2) {
		t.Fatalf("logprobs = %v top_logprobs = %v", payload["logprobs"], payload["top_logprobs"])
	}
	if payload["tool_choice"] != "auto" {
		t.Fatalf("tool_choice = %v", payload["tool_choice"])
	}
	tools, _ := payload["tools"].([]any)
	if len(tools) != 2 {
		t.Fatalf("tools = %v", payload["tools"])
	}
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	if fn["name"] != "weather" || fn["description"] != "Look up the weather" {
		t.Fatalf("function = %v", fn)
	}
	if _, ok := fn["parameters"].(map[string]any); !ok {
		t.Fatalf("parameters = %v", fn["parameters"])
	}
}

func TestRequestNamedToolChoice(t *testing.T) {
	replay := transport.NewReplay(helloResponse, "")
	model := NewChatModel("gpt-4o", replay, Settings{})

	_, err := model.DoGenerate(context.Background(), lm.CallOptions{
		Prompt: lm.Prompt{lm.User("What time is it?")},
		Mode:   lm.ToolMode(lm.ToolChoice{Type: lm.ToolChoiceTool, ToolName: "time"}, weatherTool, timeTool),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload := lastRequest(t, replay)
	tools, _ := payload["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("tools = %v", payload["tools"])
	}
	if name := tools[0].(map[string]any)["function"].(map[string]any)["name"]; name != "time" {
		t.Fatalf("tool = %v", name)
	}
	if payload["tool_choice"] != "required" {
		t.Fatalf("tool_choice = %v", payload["tool_choice"])
	}
}

func TestRequestUnknownNamedTool(t *testing.T) {
	model := NewChatModel("gpt-4o", transport.NewReplay(helloResponse, ""), Settings{})
	_, err := model.DoGenerate(context.Background(), lm.CallOptions{
		Prompt: lm.Prompt{lm.User("hi")},
		Mode:   lm.ToolMode(lm.ToolChoice{Type: lm.ToolChoiceTool, ToolName: "missing"}, weatherTool),
	})
	if err == nil {
		t.Fatalf("expected error for undeclared tool")
	}
}

func TestRequestSettingsAndWarnings(t *testing.T) {
	replay := transport.NewReplay(helloResponse, "")
	model := NewChatModel("gpt-4o", replay, Settings{})

	maxTokens, temperature, topK := 64, 0.2, 5
	result, err := model.DoGenerate(context.Background(), lm.CallOptions{
		Prompt:      lm.Prompt{lm.User("hi")},
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopK:        &topK,
		Stop:        []string{"\n\n"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Setting != "topK" || result.Warnings[0].Type != lm.WarningUnsupportedSetting {
		t.Fatalf("warnings = %+v", result.Warnings)
	}

	payload := lastRequest(t, replay)
	if payload["max_tokens"] != float64(64) || payload["temperature"] != 0.2 {
		t.Fatalf("payload = %v", payload)
	}
	if _, ok := payload["top_k"]; ok {
		t.Fatalf("top_k must not be sent")
	}
	stop, _ := payload["stop"].([]any)
	if len(stop) != 1 || stop[0] != "\n\n" {
		t.Fatalf("stop = %v", payload["stop"])
	}
}

func TestRequestConversationMessages(t *testing.T) {
	replay := transport.NewReplay(helloResponse, "")
	model := NewChatModel("gpt-4o", replay, Settings{})

	prompt := lm.Prompt{
		{Role: lm.RoleUser, Content: []lm.Part{lm.TextPart("What is this?"), lm.ImagePart("https://example.com/cat.png")}},
		{Role: lm.RoleAssistant, Content: []lm.Part{lm.TextPart("Checking."), lm.ToolCallPart("call_1", "vision", `{"url":"https://example.com/cat.png"}`)}},
		{Role: lm.RoleTool, Content: []lm.Part{lm.ToolResultPart("call_1", "vision", json.RawMessage(`{"label":"cat"}`))}},
		lm.Assistant("It is a cat."),
	}
	if _, err := model.DoGenerate(context.Background(), lm.CallOptions{Prompt: prompt}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	messages, _ := lastRequest(t, replay)["messages"].([]any)
	if len(messages) != 4 {
		t.Fatalf("messages = %v", messages)
	}

	user := messages[0].(map[string]any)
	parts, _ := user["content"].([]any)
	if len(parts) != 2 {
		t.Fatalf("user content = %v", user["content"])
	}
	if parts[0].(map[string]any)["type"] != "text" || parts[1].(map[string]any)["type"] != "image_url" {
		t.Fatalf("user parts = %v", parts)
	}

	assistant := messages[1].(map[string]any)
	if assistant["role"] != "assistant" || assistant["content"] != "Checking." {
		t.Fatalf("assistant = %v", assistant)
	}
	calls, _ := assistant["tool_calls"].([]any)
	if len(calls) != 1 {
		t.Fatalf("tool_calls = %v", assistant["tool_calls"])
	}
	call := calls[0].(map[string]any)
	if call["id"] != "call_1" || call["function"].(map[string]any)["arguments"] != `{"url":"https://example.com/cat.png"}` {
		t.Fatalf("tool call = %v", call)
	}

	tool := messages[2].(map[string]any)
	if tool["role"] != "tool" || tool["tool_call_id"] != "call_1" || tool["content"] != `{"label":"cat"}` {
		t.Fatalf("tool message = %v", tool)
	}
	if final := messages[3].(map[string]any); final["content"] != "It is a cat." {
		t.Fatalf("assistant message = %v", final)
	}
}

func TestRequestRejectsUnsupportedParts(t *testing.T) {
	model := NewChatModel("gpt-4o", transport.NewReplay(helloResponse, ""), Settings{})
	_, err := model.DoGenerate(context.Background(), lm.CallOptions{
		Prompt: lm.Prompt{{Role: lm.RoleTool, Content: []lm.Part{lm.TextPart("oops")}}},
	})
	if err == nil {
		t.Fatalf("expected error for text part in tool message")
	}
}
