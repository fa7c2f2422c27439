package core

import (
	"time"

	"github.com/google/uuid"
)

// EventActions encodes side effects attached to an Event. Fields are optional
// so absence is distinguishable from zero values. The runner interprets these
// after persistence (see runner.applyEventActions).
type EventActions struct {
	StateDelta    map[string]any `json:"state_delta,omitempty"`
	ArtifactDelta map[string]int `json:"artifact_delta,omitempty"`
}

// Event is the unit of communication between the agent loop, the runner and
// external clients: a user message, an assistant reply (possibly a streaming
// fragment), a tool call request embedded in assistant content, or a tool
// result. After emission an event is treated as immutable.
type Event struct {
	ID           string       `json:"id"`
	RunID        string       `json:"run_id,omitempty"`
	Author       string       `json:"author"`
	Actions      EventActions `json:"actions"`
	Timestamp    time.Time    `json:"timestamp"`
	Content      *Content     `json:"content,omitempty"`
	Partial      *bool        `json:"partial,omitempty"`
	TurnComplete *bool        `json:"turn_complete,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}

// NewEvent creates a bare event authored by author, bound to a run. Prefer
// the semantic constructors below for common cases.
func NewEvent(runID, author string) Event {
	return Event{
		ID:        NewID(),
		RunID:     runID,
		Author:    author,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessageEvent creates a user-authored text message event.
func NewUserMessageEvent(runID, message string) Event {
	e := NewEvent(runID, "user")
	c := NewUserText(message)
	e.Content = &c
	return e
}

// NewUserContentEvent creates a user-authored event with arbitrary content.
func NewUserContentEvent(runID string, content *Content) Event {
	e := NewEvent(runID, "user")
	e.Content = content
	return e
}

// NewAssistantMessageEvent creates an assistant text message authored by the
// named agent.
func NewAssistantMessageEvent(author, message string) Event {
	e := NewEvent("", author)
	e.Content = &Content{Role: "assistant", Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewToolResultEvent records the completion (or failure) of a tool call. A
// non-nil err is copied into the result's Error field; the output is kept
// either way so partial results remain visible to the model.
func NewToolResultEvent(author, callID, toolName string, output any, err error) Event {
	e := NewEvent("", author)
	tr := ToolResult{ID: callID, Name: toolName, Output: output}
	if err != nil {
		tr.Error = err.Error()
	}
	e.Content = &Content{Role: "tool", Parts: []Part{ToolResultPart{ToolResult: tr}}}
	return e
}

// NewErrorEvent wraps an orchestration failure as a system-authored event so
// clients see loop-internal errors on the same stream as everything else.
func NewErrorEvent(runID string, err error) Event {
	e := NewEvent(runID, "system")
	msg := err.Error()
	e.ErrorMessage = &msg
	return e
}

// NewID returns a fresh UUID string used for event and run correlation.
func NewID() string { return uuid.NewString() }

// IsPartial reports whether the event is a streaming fragment that will be
// followed by more events composing the full assistant turn.
func (e Event) IsPartial() bool { return e.Partial != nil && *e.Partial }

// ToolCalls returns the tool call parts of the event content in order.
func (e Event) ToolCalls() []ToolCall {
	if e.Content == nil {
		return nil
	}
	return e.Content.ToolCalls()
}

// ToolResults returns the tool result parts of the event content in order.
func (e Event) ToolResults() []ToolResult {
	if e.Content == nil {
		return nil
	}
	var results []ToolResult
	for _, p := range e.Content.Parts {
		if tr, ok := p.(ToolResultPart); ok {
			results = append(results, tr.ToolResult)
		}
	}
	return results
}

// IsFinalAnswer reports whether this event ends the agent turn: a complete,
// non-partial assistant response with no pending tool calls or results. This
// is the terminating branch of the reason/act/observe loop.
func (e Event) IsFinalAnswer() bool {
	return len(e.ToolCalls()) == 0 &&
		len(e.ToolResults()) == 0 &&
		!e.IsPartial()
}
