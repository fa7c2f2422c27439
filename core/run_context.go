package core

import (
	"context"
	"fmt"
	"maps"

	"github.com/reagent-ai/reagent/logging"
)

// RunContext is the mutable, per-invocation execution scope handed to an
// Agent's Run method. It aggregates:
//   - the ambient cancellation Context
//   - identifiers (SessionID doubles as the checkpoint thread ID, RunID)
//   - the triggering user Content
//   - emission / resumption coordination channels
//   - backing stores (session, artifact, memory)
//   - the call Budget enforcing loop termination
//   - a working Session snapshot plus pending StateDelta / Artifacts
//
// Mutations staged via SetState accumulate in StateDelta until EmitEvent
// merges them into an event's actions or CommitStateDelta persists them.
type RunContext struct {
	Context          context.Context
	SessionID, RunID string
	Agent            AgentInfo
	UserContent      Content
	Emit             chan<- Event
	Resume           <-chan struct{}
	SessionStore     SessionStore
	ArtifactStore    ArtifactStore
	MemoryStore      MemoryStore
	Budget           *Budget
	Session          *Session
	StateDelta       map[string]any
	Artifacts        []string

	*loggerAdapter
}

// NewRunContext constructs a RunContext with empty delta buffers.
func NewRunContext(
	ctx context.Context,
	sessionID, runID string,
	agent AgentInfo,
	userContent Content,
	maxModelCalls int,
	emit chan<- Event,
	resume <-chan struct{},
	sess *Session,
	sessionStore SessionStore,
	artifactStore ArtifactStore,
	memoryStore MemoryStore,
	logger logging.Logger,
) *RunContext {
	return &RunContext{
		Context:       ctx,
		SessionID:     sessionID,
		RunID:         runID,
		Agent:         agent,
		UserContent:   userContent,
		Emit:          emit,
		Resume:        resume,
		Session:       sess,
		SessionStore:  sessionStore,
		ArtifactStore: artifactStore,
		MemoryStore:   memoryStore,
		Budget:        NewBudget(maxModelCalls),
		StateDelta:    map[string]any{},
		Artifacts:     []string{},
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error, if any.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// GetState returns a staged delta value if present, else the session value.
func (rc *RunContext) GetState(k string) (any, bool) {
	if v, ok := rc.StateDelta[k]; ok {
		return v, true
	}
	if rc.Session != nil {
		return rc.Session.GetState(k)
	}
	return nil, false
}

// SetState stages a state mutation in the delta buffer.
func (rc *RunContext) SetState(k string, v any) { rc.StateDelta[k] = v }

// ApplyStateDelta merges all pairs from d into the staged delta.
func (rc *RunContext) ApplyStateDelta(d map[string]any) {
	maps.Copy(rc.StateDelta, d)
}

// SaveArtifact stores bytes in the ArtifactStore and stages the id for the
// next emitted event.
func (rc *RunContext) SaveArtifact(id string, data []byte) error {
	if rc.ArtifactStore == nil {
		return fmt.Errorf("artifact store not configured")
	}
	if err := rc.ArtifactStore.Save(rc.SessionID, id, data); err != nil {
		return err
	}
	rc.Artifacts = append(rc.Artifacts, id)
	return nil
}

// GetArtifact retrieves previously saved artifact bytes.
func (rc *RunContext) GetArtifact(id string) ([]byte, error) {
	if rc.ArtifactStore == nil {
		return nil, fmt.Errorf("artifact store not configured")
	}
	return rc.ArtifactStore.Get(rc.SessionID, id)
}

// SearchMemory queries the MemoryStore for relevant content.
func (rc *RunContext) SearchMemory(q string, limit int) ([]SearchResult, error) {
	if rc.MemoryStore == nil {
		return []SearchResult{}, nil
	}
	return rc.MemoryStore.Search(rc.SessionID, q, limit)
}

// StoreMemory appends content plus metadata to the MemoryStore.
func (rc *RunContext) StoreMemory(content string, md map[string]any) error {
	if rc.MemoryStore == nil {
		return fmt.Errorf("memory store not configured")
	}
	return rc.MemoryStore.Store(rc.SessionID, content, md)
}

// RefreshSession reloads the session snapshot from the SessionStore.
func (rc *RunContext) RefreshSession() error {
	if rc.SessionStore == nil {
		return fmt.Errorf("session store not configured")
	}
	s, err := rc.SessionStore.Get(rc.SessionID)
	if err != nil {
		return err
	}
	rc.Session = s
	return nil
}

// CommitStateDelta persists the accumulated delta then clears the buffer.
func (rc *RunContext) CommitStateDelta() error {
	if len(rc.StateDelta) == 0 {
		return nil
	}
	if rc.SessionStore == nil {
		return fmt.Errorf("session store not configured")
	}
	if err := rc.SessionStore.ApplyDelta(rc.SessionID, rc.StateDelta); err != nil {
		return err
	}
	rc.StateDelta = map[string]any{}
	return nil
}

// EmitEvent merges pending StateDelta / Artifacts into the event's actions
// and sends it, resetting the buffers on success.
func (rc *RunContext) EmitEvent(ev Event) error {
	if len(rc.StateDelta) > 0 {
		if ev.Actions.StateDelta == nil {
			ev.Actions.StateDelta = map[string]any{}
		}
		maps.Copy(ev.Actions.StateDelta, rc.StateDelta)
	}
	if len(rc.Artifacts) > 0 {
		if ev.Actions.ArtifactDelta == nil {
			ev.Actions.ArtifactDelta = map[string]int{}
		}
		for _, id := range rc.Artifacts {
			ev.Actions.ArtifactDelta[id] = 1
		}
	}

	select {
	case <-rc.Context.Done():
		return rc.Context.Err()
	case rc.Emit <- ev:
	}

	rc.StateDelta = map[string]any{}
	rc.Artifacts = []string{}
	return nil
}

// GetSessionHistory returns the committed conversation history as contents.
func (rc *RunContext) GetSessionHistory() []Content {
	if rc.Session == nil {
		return nil
	}
	events := rc.Session.History()
	contents := make([]Content, 0, len(events))
	for _, ev := range events {
		if ev.Content != nil {
			contents = append(contents, *ev.Content)
		}
	}
	return contents
}

// WaitForResume blocks until the runner signals that the previous event has
// been persisted, or the context is cancelled. A nil Resume channel returns
// immediately.
func (rc *RunContext) WaitForResume() error {
	if rc.Resume == nil {
		return nil
	}
	select {
	case <-rc.Resume:
		return nil
	case <-rc.Context.Done():
		return rc.Context.Err()
	}
}
