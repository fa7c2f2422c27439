package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	ev := NewEvent("run-1", "agent")
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "run-1", ev.RunID)
	assert.Equal(t, "agent", ev.Author)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestNewUserMessageEvent(t *testing.T) {
	ev := NewUserMessageEvent("run-1", "hello")
	assert.Equal(t, "user", ev.Author)
	assert.Equal(t, "user", ev.Content.Role)
	assert.Equal(t, "hello", ev.Content.Text())
}

func TestNewToolResultEvent(t *testing.T) {
	ev := NewToolResultEvent("agent", "call-1", "calculator", "4", nil)
	assert.Equal(t, "tool", ev.Content.Role)
	results := ev.ToolResults()
	assert.Len(t, results, 1)
	assert.Equal(t, "call-1", results[0].ID)
	assert.Equal(t, "calculator", results[0].Name)
	assert.Equal(t, "4", results[0].Output)
	assert.Empty(t, results[0].Error)
}

func TestNewToolResultEvent_Error(t *testing.T) {
	ev := NewToolResultEvent("agent", "call-1", "calculator", nil, errors.New("division by zero"))
	results := ev.ToolResults()
	assert.Len(t, results, 1)
	assert.Equal(t, "division by zero", results[0].Error)
}

func TestNewErrorEvent(t *testing.T) {
	ev := NewErrorEvent("run-1", errors.New("boom"))
	assert.Equal(t, "system", ev.Author)
	assert.NotNil(t, ev.ErrorMessage)
	assert.Equal(t, "boom", *ev.ErrorMessage)
}

func TestEvent_IsPartial(t *testing.T) {
	ev := NewEvent("", "agent")
	assert.False(t, ev.IsPartial())

	partial := true
	ev.Partial = &partial
	assert.True(t, ev.IsPartial())

	partial = false
	assert.False(t, ev.IsPartial())
}

func TestEvent_ToolCalls(t *testing.T) {
	ev := NewEvent("", "agent")
	assert.Empty(t, ev.ToolCalls())

	ev.Content = &Content{Role: "assistant", Parts: []Part{
		ToolCallPart{ToolCall: ToolCall{ID: "1", Name: "web_search", Arguments: "{}"}},
	}}
	calls := ev.ToolCalls()
	assert.Len(t, calls, 1)
	assert.Equal(t, "web_search", calls[0].Name)
}

func TestEvent_IsFinalAnswer(t *testing.T) {
	final := NewAssistantMessageEvent("agent", "the answer is 4")
	assert.True(t, final.IsFinalAnswer())

	withCall := NewEvent("", "agent")
	withCall.Content = &Content{Role: "assistant", Parts: []Part{
		ToolCallPart{ToolCall: ToolCall{ID: "1", Name: "calculator"}},
	}}
	assert.False(t, withCall.IsFinalAnswer())

	toolResult := NewToolResultEvent("agent", "1", "calculator", "4", nil)
	assert.False(t, toolResult.IsFinalAnswer())

	partial := true
	chunk := NewAssistantMessageEvent("agent", "the answ")
	chunk.Partial = &partial
	assert.False(t, chunk.IsFinalAnswer())
}
