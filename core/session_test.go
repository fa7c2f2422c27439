package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_State(t *testing.T) {
	sess := NewSession("s1")

	_, ok := sess.GetState("missing")
	assert.False(t, ok)

	sess.SetState("k", "v")
	v, ok := sess.GetState("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	sess.MergeState(map[string]any{"a": 1, "b": 2})
	a, _ := sess.GetState("a")
	assert.Equal(t, 1, a)

	snapshot := sess.StateSnapshot()
	assert.Len(t, snapshot, 3)
	snapshot["k"] = "mutated"
	v, _ = sess.GetState("k")
	assert.Equal(t, "v", v, "snapshot mutation must not leak into the session")
}

func TestSession_History_FiltersRolesAndPartials(t *testing.T) {
	sess := NewSession("s1")

	sess.AddEvent(NewUserMessageEvent("r1", "question"))

	partial := true
	chunk := NewAssistantMessageEvent("agent", "ans")
	chunk.Partial = &partial
	sess.AddEvent(chunk)

	sess.AddEvent(NewAssistantMessageEvent("agent", "answer"))
	sess.AddEvent(NewToolResultEvent("agent", "c1", "calculator", "4", nil))
	sess.AddEvent(NewErrorEvent("r1", assert.AnError)) // no content, dropped

	history := sess.History()
	assert.Len(t, history, 3)
	assert.Equal(t, "user", history[0].Content.Role)
	assert.Equal(t, "assistant", history[1].Content.Role)
	assert.Equal(t, "answer", history[1].Content.Text())
	assert.Equal(t, "tool", history[2].Content.Role)
}

func TestSession_GetEvents_Copy(t *testing.T) {
	sess := NewSession("s1")
	sess.AddEvent(NewUserMessageEvent("r1", "a"))

	events := sess.GetEvents()
	assert.Len(t, events, 1)
	events[0].Author = "mutated"
	assert.Equal(t, "user", sess.GetEvents()[0].Author)
}

func TestSession_Clone(t *testing.T) {
	sess := NewSession("s1")
	sess.SetState("k", "v")
	sess.Metadata["env"] = "test"
	sess.AddEvent(NewUserMessageEvent("r1", "hi"))

	clone := sess.Clone()
	assert.Equal(t, sess.ID, clone.ID)
	assert.Len(t, clone.Events, 1)

	clone.SetState("k", "changed")
	clone.Metadata["env"] = "prod"

	v, _ := sess.GetState("k")
	assert.Equal(t, "v", v)
	assert.Equal(t, "test", sess.Metadata["env"])
}
