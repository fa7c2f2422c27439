// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing core model objects (sessions, events, tool
// parts). Not intended for production usage.
package testutil

import (
	"time"

	"github.com/reagent-ai/reagent/core"
)

// EventBuilder provides a fluent helper for constructing events in tests.
// Chain only the parts you need; sensible defaults are applied.
//
//	ev := NewEventBuilder().Author("agent").AssistantText("hello").Build()
type EventBuilder struct {
	author      string
	runID       string
	id          string
	role        string
	textParts   []string
	toolCalls   []core.ToolCall
	toolResults []core.ToolResult
	partial     *bool
	actions     core.EventActions
}

// NewEventBuilder creates a builder with default author "agent".
func NewEventBuilder() *EventBuilder { return &EventBuilder{author: "agent"} }

// Author sets the author name (chainable).
func (b *EventBuilder) Author(a string) *EventBuilder { b.author = a; return b }

// Run sets the run ID (chainable).
func (b *EventBuilder) Run(id string) *EventBuilder { b.runID = id; return b }

// ID overrides the auto-generated event ID (chainable).
func (b *EventBuilder) ID(id string) *EventBuilder { b.id = id; return b }

// Partial marks the event as a streaming chunk (chainable).
func (b *EventBuilder) Partial(p bool) *EventBuilder { b.partial = &p; return b }

// UserText appends a user role text part (chainable).
func (b *EventBuilder) UserText(t string) *EventBuilder {
	b.role = "user"
	b.textParts = append(b.textParts, t)
	return b
}

// AssistantText appends an assistant role text part (chainable).
func (b *EventBuilder) AssistantText(t string) *EventBuilder {
	b.role = "assistant"
	b.textParts = append(b.textParts, t)
	return b
}

// ToolCall adds a tool call part (chainable).
func (b *EventBuilder) ToolCall(id, name, args string) *EventBuilder {
	b.role = "assistant"
	b.toolCalls = append(b.toolCalls, core.ToolCall{ID: id, Name: name, Arguments: args})
	return b
}

// ToolResult adds a tool result part (chainable).
func (b *EventBuilder) ToolResult(id, name string, output any, err error) *EventBuilder {
	b.role = "tool"
	tr := core.ToolResult{ID: id, Name: name, Output: output}
	if err != nil {
		tr.Error = err.Error()
	}
	b.toolResults = append(b.toolResults, tr)
	return b
}

// StateDelta stages a state delta on the event actions (chainable).
func (b *EventBuilder) StateDelta(k string, v any) *EventBuilder {
	if b.actions.StateDelta == nil {
		b.actions.StateDelta = map[string]any{}
	}
	b.actions.StateDelta[k] = v
	return b
}

// Build constructs the core.Event value.
func (b *EventBuilder) Build() core.Event {
	ev := core.NewEvent(b.runID, b.author)
	if b.id != "" {
		ev.ID = b.id
	}
	ev.Timestamp = time.Now().UTC()
	ev.Partial = b.partial
	ev.Actions = b.actions

	var parts []core.Part
	for _, t := range b.textParts {
		parts = append(parts, core.TextPart{Text: t})
	}
	for _, tc := range b.toolCalls {
		parts = append(parts, core.ToolCallPart{ToolCall: tc})
	}
	for _, tr := range b.toolResults {
		parts = append(parts, core.ToolResultPart{ToolResult: tr})
	}
	if len(parts) > 0 {
		ev.Content = &core.Content{Role: b.role, Parts: parts}
	}
	return ev
}

// NewSessionWithHistory creates a session preloaded with alternating
// user/assistant text events, convenient for history window tests.
func NewSessionWithHistory(id string, messages ...string) *core.Session {
	sess := core.NewSession(id)
	for i, msg := range messages {
		if i%2 == 0 {
			sess.AddEvent(NewEventBuilder().Author("user").UserText(msg).Build())
		} else {
			sess.AddEvent(NewEventBuilder().AssistantText(msg).Build())
		}
	}
	return sess
}
