// Package flow orchestrates the reason/act/observe execution pipeline of an
// agent: build a model request through pluggable processors, run the model,
// execute any requested tool calls, feed the observations back and repeat
// until the model produces a final answer or the call budget runs out.
package flow

import (
	"github.com/reagent-ai/reagent/core"
	"github.com/reagent-ai/reagent/model"
	"github.com/reagent-ai/reagent/tool"
)

// Flow defines the interface for agent execution flows.
//
// A flow drives the complete execution pipeline of an agent, from building
// the initial model request to emitting the final response event.
type Flow interface {
	// Execute runs the flow with the given run context. It returns a channel
	// of events representing execution progress; the channel is closed when
	// the flow terminates.
	Execute(runCtx *core.RunContext) (<-chan core.Event, error)
}

// FlowAgent is the capability surface flows need from an agent without
// seeing the full agent implementation.
type FlowAgent interface {
	// GetName returns the agent's display name.
	GetName() string

	// GetModel returns the language model instance.
	GetModel() model.Model

	// ResolveInstructions produces the system instructions for this run.
	ResolveInstructions(runCtx *core.RunContext) (string, error)

	// GetTools returns the registered tools keyed by name.
	GetTools() map[string]tool.Tool

	// ToolCaps returns per-tool invocation limits, zero or absent meaning
	// unlimited. Exhausted tools are withheld from the model.
	ToolCaps() map[string]int

	// IsStreamingEnabled reports whether streaming responses are enabled.
	IsStreamingEnabled() bool

	// MaxHistoryMessages returns the conversation history window size.
	MaxHistoryMessages() int

	// OutputKey returns the session state key for saving the final response,
	// or "" to skip.
	OutputKey() string

	// ExecuteTool executes a named tool with serialized JSON arguments.
	ExecuteTool(toolCtx *core.ToolContext, toolName string, args string) (any, error)
}

// RequestProcessor mutates the model request before generation.
type RequestProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessRequest modifies the request before model execution.
	ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error
}

// ResponseProcessor inspects each model response chunk after generation.
type ResponseProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessResponse handles a model response and may adjust it.
	ProcessResponse(runCtx *core.RunContext, resp *model.Response, agent FlowAgent) error
}
