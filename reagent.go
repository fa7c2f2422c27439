// Package reagent provides a high-level façade over the runner and store
// abstractions (sessions, artifacts, memory, logging) for building
// tool-calling agents that reason, act and observe in a loop. Most
// applications interact with this package by:
//  1. Building an agent (agent.NewModelAgent with a model and tools)
//  2. Creating a Reagent via New() (optionally overriding the in-memory
//     stores, e.g. with a SQLite checkpoint store)
//  3. Sending messages asynchronously (Run) or synchronously (RunSync)
//
// All defaults are safe for local development and testing; production
// deployments typically supply a durable session store and a structured
// logger.
package reagent

import (
	"context"

	"github.com/reagent-ai/reagent/core"
	"github.com/reagent-ai/reagent/logging"
	"github.com/reagent-ai/reagent/runner"
)

// Options configures the Reagent façade. Unset stores default to in-memory
// implementations.
type Options struct {
	// EventBufferSize sets the channel buffer size for event processing.
	EventBufferSize int

	// MaxModelCalls caps model calls per run, bounding the agent loop.
	MaxModelCalls int

	// SessionStore persists session state and events (the checkpoint layer).
	SessionStore core.SessionStore

	// ArtifactStore persists binary artifacts.
	ArtifactStore core.ArtifactStore

	// MemoryStore persists recallable memory snippets.
	MemoryStore core.MemoryStore

	// Logger receives structured diagnostics (defaults to NoOp).
	Logger logging.Logger
}

// Reagent is the high-level façade around a single agent and its runner.
type Reagent struct {
	runner *runner.Runner
}

// New creates a Reagent driving the given agent, with optional overrides.
func New(a core.Agent, optFns ...func(o *Options)) *Reagent {
	opts := Options{
		EventBufferSize: 100,
		MaxModelCalls:   10,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := runner.New(a, func(o *runner.Options) {
		o.EventBufferSize = opts.EventBufferSize
		o.MaxModelCalls = opts.MaxModelCalls
		if opts.SessionStore != nil {
			o.SessionStore = opts.SessionStore
		}
		if opts.ArtifactStore != nil {
			o.ArtifactStore = opts.ArtifactStore
		}
		if opts.MemoryStore != nil {
			o.MemoryStore = opts.MemoryStore
		}
		if opts.Logger != nil {
			o.Logger = opts.Logger
		}
	})

	return &Reagent{runner: r}
}

// Run starts an asynchronous run returning the run ID plus event and error
// channels. The sessionID doubles as the checkpoint thread ID, so repeated
// calls with the same ID continue the same conversation.
func (r *Reagent) Run(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	return r.runner.Run(ctx, sessionID, userContent)
}

// RunSync sends a message and blocks until the run completes, returning all
// emitted events.
func (r *Reagent) RunSync(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) ([]core.Event, error) {
	return r.runner.RunSync(ctx, sessionID, userContent)
}

// RunSyncText is a convenience wrapper around RunSync for plain text input;
// it returns the final assistant answer as text.
func (r *Reagent) RunSyncText(ctx context.Context, sessionID, message string) (string, error) {
	events, err := r.runner.RunSync(ctx, sessionID, core.NewUserText(message))
	if err != nil {
		return "", err
	}
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Content != nil && ev.Content.Role == "assistant" && ev.IsFinalAnswer() {
			return ev.Content.Text(), nil
		}
	}
	return "", nil
}

// Cancel cancels a running run by ID.
func (r *Reagent) Cancel(runID string) error { return r.runner.Cancel(runID) }
