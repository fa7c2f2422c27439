package core

import (
	"context"
	"maps"
)

// ToolContext is the scoped view a tool receives during execution. State and
// artifact writes are staged into a private EventActions so the tool result
// event carries exactly the mutations this call produced.
type ToolContext struct {
	runCtx  *RunContext
	callID  string
	actions EventActions

	*loggerAdapter
}

// NewToolContext derives a tool execution scope from a run context.
func NewToolContext(runCtx *RunContext, callID string) *ToolContext {
	return &ToolContext{
		runCtx:        runCtx,
		callID:        callID,
		actions:       EventActions{StateDelta: map[string]any{}, ArtifactDelta: map[string]int{}},
		loggerAdapter: runCtx.loggerAdapter,
	}
}

// Context returns the ambient cancellation context.
func (tc *ToolContext) Context() context.Context { return tc.runCtx.Context }

// SessionID returns the owning session's ID.
func (tc *ToolContext) SessionID() string { return tc.runCtx.SessionID }

// RunID returns the current run's ID.
func (tc *ToolContext) RunID() string { return tc.runCtx.RunID }

// CallID returns the tool call ID this context belongs to.
func (tc *ToolContext) CallID() string { return tc.callID }

// AgentName returns the name of the agent executing the tool.
func (tc *ToolContext) AgentName() string { return tc.runCtx.Agent.Name }

// GetState reads session state, including mutations staged this run.
func (tc *ToolContext) GetState(k string) (any, bool) { return tc.runCtx.GetState(k) }

// SetState stages a state mutation attributed to this tool call.
func (tc *ToolContext) SetState(k string, v any) {
	tc.actions.StateDelta[k] = v
	tc.runCtx.SetState(k, v)
}

// SaveArtifact stores bytes and records the artifact delta for this call.
func (tc *ToolContext) SaveArtifact(id string, data []byte) error {
	if err := tc.runCtx.SaveArtifact(id, data); err != nil {
		return err
	}
	tc.actions.ArtifactDelta[id] = len(data)
	return nil
}

// LoadArtifact retrieves previously saved artifact bytes.
func (tc *ToolContext) LoadArtifact(id string) ([]byte, error) {
	return tc.runCtx.GetArtifact(id)
}

// ListArtifacts lists artifact IDs stored for the session.
func (tc *ToolContext) ListArtifacts() ([]string, error) {
	if tc.runCtx.ArtifactStore == nil {
		return []string{}, nil
	}
	return tc.runCtx.ArtifactStore.List(tc.runCtx.SessionID)
}

// SearchMemory queries session memory.
func (tc *ToolContext) SearchMemory(q string, limit int) ([]SearchResult, error) {
	return tc.runCtx.SearchMemory(q, limit)
}

// StoreMemory persists content to session memory.
func (tc *ToolContext) StoreMemory(content string, md map[string]any) error {
	return tc.runCtx.StoreMemory(content, md)
}

// GetSessionHistory returns the committed conversation history.
func (tc *ToolContext) GetSessionHistory() []Content {
	return tc.runCtx.GetSessionHistory()
}

// ApplyActions merges the mutations staged by this call into ev's actions.
func (tc *ToolContext) ApplyActions(ev *Event) {
	if len(tc.actions.StateDelta) > 0 {
		if ev.Actions.StateDelta == nil {
			ev.Actions.StateDelta = map[string]any{}
		}
		maps.Copy(ev.Actions.StateDelta, tc.actions.StateDelta)
	}
	if len(tc.actions.ArtifactDelta) > 0 {
		if ev.Actions.ArtifactDelta == nil {
			ev.Actions.ArtifactDelta = map[string]int{}
		}
		maps.Copy(ev.Actions.ArtifactDelta, tc.actions.ArtifactDelta)
	}
}
