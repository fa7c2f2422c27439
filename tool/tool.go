// Package tool implements the function calling subsystem that lets agents
// invoke structured capabilities with schema validated arguments and uniform
// error handling. Besides the generic FunctionTool adapter it ships a set of
// built-in tools: a calculator, word length, mock web search, content
// analysis and session memory helpers.
package tool

import (
	"fmt"

	"github.com/reagent-ai/reagent/core"
	"github.com/reagent-ai/reagent/internal/util"
)

// Tool defines the interface for extending agent capabilities with external
// functions.
//
// Tools registered with an agent are exposed to the model as callable
// functions. All tools receive a *core.ToolContext granting access to session
// state, memory and artifact management, so side effects flow through the
// event pipeline rather than happening out of band.
//
// Implementations should provide descriptive snake_case names, a JSON schema
// for parameters, graceful error handling, and be safe for concurrent use.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool
	// does. It is provided to the model to guide tool selection.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool with parsed, schema validated arguments.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
