// Package agent provides the agent implementations that drive models through
// the flow pipeline, most notably ModelAgent which pairs a language model
// with a tool registry and instructions.
package agent

import (
	"encoding/json"
	"fmt"

	"github.com/reagent-ai/reagent/core"
	"github.com/reagent-ai/reagent/flow"
	"github.com/reagent-ai/reagent/model"
	"github.com/reagent-ai/reagent/tool"
)

// Options configures a ModelAgent instance. Use functional options with
// NewModelAgent to override defaults.
type Options struct {
	Description        string
	Instruction        Instruction
	EnableStreaming    bool
	OutputKey          string
	MaxHistoryMessages int
	Tools              map[string]tool.Tool
	ToolCaps           map[string]int
}

// ModelAgent integrates a language model with registered tools through the
// reason/act/observe loop.
//
// It supports:
//   - Natural language conversation through system instructions
//   - Tool calling with schema validated arguments
//   - Streaming responses (model adapter permitting)
//   - Per-tool call caps that force a synthesized final answer
//   - Saving the final response into session state via an output key
//   - Template-based instruction customization against session state
type ModelAgent struct {
	name        string
	description string
	llm         model.Model
	instruction Instruction
	tools       map[string]tool.Tool
	toolCaps    map[string]int
	streaming   bool
	outputKey   string
	maxHistory  int
}

// NewModelAgent creates a model-backed agent with sensible defaults: a
// generic assistant instruction, streaming disabled, a 20-message history
// window, and an empty tool registry.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *Options)) *ModelAgent {
	opts := Options{
		Instruction:        NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		MaxHistoryMessages: 20,
		Tools:              make(map[string]tool.Tool),
		ToolCaps:           make(map[string]int),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelAgent{
		name:        name,
		description: opts.Description,
		llm:         llm,
		instruction: opts.Instruction,
		tools:       opts.Tools,
		toolCaps:    opts.ToolCaps,
		streaming:   opts.EnableStreaming,
		outputKey:   opts.OutputKey,
		maxHistory:  opts.MaxHistoryMessages,
	}
}

// Name returns the agent's display name.
func (a *ModelAgent) Name() string { return a.name }

// Description returns the agent's description.
func (a *ModelAgent) Description() string { return a.description }

// RegisterTool adds a tool to the agent's capability set. Registered tools
// become callable by the model during conversations.
func (a *ModelAgent) RegisterTool(t tool.Tool) {
	a.tools[t.Name()] = t
}

// RegisterTools adds multiple tools to the agent's capability set.
func (a *ModelAgent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// UnregisterTool removes a tool, reporting whether it was registered.
func (a *ModelAgent) UnregisterTool(name string) bool {
	if _, exists := a.tools[name]; exists {
		delete(a.tools, name)
		return true
	}
	return false
}

// HasTool checks if a tool is registered with the agent.
func (a *ModelAgent) HasTool(name string) bool {
	_, exists := a.tools[name]
	return exists
}

// ListTools returns the names of all registered tools.
func (a *ModelAgent) ListTools() []string {
	names := make([]string, 0, len(a.tools))
	for name := range a.tools {
		names = append(names, name)
	}
	return names
}

// GetTool retrieves a specific tool by name.
func (a *ModelAgent) GetTool(name string) (tool.Tool, bool) {
	t, exists := a.tools[name]
	return t, exists
}

// SetToolCap limits how many times the model may call the named tool per
// run. When the cap is spent the tool is withheld and the model is steered
// toward a final answer.
func (a *ModelAgent) SetToolCap(name string, max int) {
	a.toolCaps[name] = max
}

// FlowAgent interface implementation.

// GetName returns the agent's display name.
func (a *ModelAgent) GetName() string { return a.name }

// GetModel returns the language model instance.
func (a *ModelAgent) GetModel() model.Model { return a.llm }

// GetTools returns a copy of the registered tools.
func (a *ModelAgent) GetTools() map[string]tool.Tool {
	tools := make(map[string]tool.Tool, len(a.tools))
	for name, t := range a.tools {
		tools[name] = t
	}
	return tools
}

// ToolCaps returns a copy of the per-tool call limits.
func (a *ModelAgent) ToolCaps() map[string]int {
	caps := make(map[string]int, len(a.toolCaps))
	for name, limit := range a.toolCaps {
		caps[name] = limit
	}
	return caps
}

// IsStreamingEnabled reports whether streaming responses are enabled.
func (a *ModelAgent) IsStreamingEnabled() bool { return a.streaming }

// OutputKey returns the session state key for saving the final response.
func (a *ModelAgent) OutputKey() string { return a.outputKey }

// MaxHistoryMessages returns the conversation history window size.
func (a *ModelAgent) MaxHistoryMessages() int { return a.maxHistory }

// ResolveInstructions produces the final system instruction text by
// resolving the static or dynamic instruction source.
func (a *ModelAgent) ResolveInstructions(runCtx *core.RunContext) (string, error) {
	return a.instruction.Resolve(runCtx)
}

// ExecuteTool deserializes JSON arguments and invokes the named tool,
// returning its result or an error if the tool is unknown or validation
// fails.
func (a *ModelAgent) ExecuteTool(toolCtx *core.ToolContext, toolName string, args string) (any, error) {
	t, exists := a.tools[toolName]
	if !exists {
		return nil, fmt.Errorf("tool %s not found", toolName)
	}

	argsMap := make(map[string]any)
	if args != "" {
		if err := json.Unmarshal([]byte(args), &argsMap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal args: %w", err)
		}
	}

	return t.Call(toolCtx, argsMap)
}

// Run implements core.Agent: it executes the tool loop flow and streams flow
// events to the run context's emit channel.
func (a *ModelAgent) Run(runCtx *core.RunContext) error {
	runCtx.LogDebug("agent.run.start", "agent", a.name, "run", runCtx.RunID)

	fl := flow.NewToolLoopFlow(a)

	eventChan, err := fl.Execute(runCtx)
	if err != nil {
		runCtx.LogError("agent.flow.execute.error", "agent", a.name, "error", err.Error())
		return fmt.Errorf("flow execution failed: %w", err)
	}

	for event := range eventChan {
		select {
		case runCtx.Emit <- event:
			role := ""
			if event.Content != nil {
				role = event.Content.Role
			}
			runCtx.LogDebug(
				"agent.event.forward",
				"agent", a.name,
				"event_id", event.ID,
				"role", role,
				"tool_calls", len(event.ToolCalls()),
			)
		case <-runCtx.Done():
			runCtx.LogWarn("agent.run.context_done", "agent", a.name, "error", runCtx.Err())
			return runCtx.Err()
		}
	}

	runCtx.LogDebug("agent.run.complete", "agent", a.name)
	return nil
}
