// Package model defines the provider-neutral generation interface plus the
// request/response types flows use to drive it. Provider adapters live in
// the openai and anthropic subpackages.
package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/reagent-ai/reagent/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by flows.
type Request struct {
	Instructions string           `json:"instructions"`
	Contents     []core.Content   `json:"contents"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"`
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "azure", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by flows and agents to drive
// generation. Generate returns a response channel and an error channel; both
// are closed when the call completes.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model for tests and examples. It
// serves scripted turns enqueued via EnqueueTurn first, then falls back to
// canned prompt/response pairs, then to an echo response.
type MockModel struct {
	info      Info
	responses map[string]string

	mu    sync.Mutex
	turns []core.Content
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// EnqueueTurn scripts the next assistant turn verbatim. Turns are served in
// FIFO order before any canned responses; use tool call parts to script a
// tool round trip.
func (m *MockModel) EnqueueTurn(content core.Content) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, content)
}

// EnqueueToolCall scripts a turn consisting of a single tool call.
func (m *MockModel) EnqueueToolCall(id, name, arguments string) {
	m.EnqueueTurn(core.Content{
		Role:  "assistant",
		Parts: []core.Part{core.ToolCallPart{ToolCall: core.ToolCall{ID: id, Name: name, Arguments: arguments}}},
	})
}

// EnqueueText scripts a plain text turn.
func (m *MockModel) EnqueueText(text string) {
	m.EnqueueTurn(core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: text}}})
}

func (m *MockModel) nextTurn() (core.Content, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.turns) == 0 {
		return core.Content{}, false
	}
	turn := m.turns[0]
	m.turns = m.turns[1:]
	return turn, true
}

// Generate implements Model; emits optional streaming char chunks for text
// turns, then the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if turn, ok := m.nextTurn(); ok {
			finish := "stop"
			if len(turn.ToolCalls()) > 0 {
				finish = "tool_calls"
			}
			respCh <- Response{Partial: false, Content: turn, FinishReason: finish}
			return
		}

		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("no contents provided")
			return
		}
		last := req.Contents[len(req.Contents)-1]
		inputText := last.Text()

		full := m.responses[inputText]
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", inputText)
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Content: core.Content{
						Role:  "assistant",
						Parts: []core.Part{core.TextPart{Text: string(r)}},
					},
				}:
				}
			}
		}
		respCh <- Response{
			Partial: false,
			Content: core.Content{
				Role:  "assistant",
				Parts: []core.Part{core.TextPart{Text: full}},
			},
			FinishReason: "stop",
		}
	}()
	return respCh, errCh
}

// Info implements the Model interface.
func (m *MockModel) Info() Info { return m.info }
