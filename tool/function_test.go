package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reagent-ai/reagent/artifact"
	"github.com/reagent-ai/reagent/core"
	"github.com/reagent-ai/reagent/memory"
)

// newTestToolContext builds a tool context with in-memory stores and a
// preloaded session, enough for every built-in tool to execute.
func newTestToolContext(t *testing.T) *core.ToolContext {
	t.Helper()
	tc, _ := newTestToolContextWithSession(t)
	return tc
}

func newTestToolContextWithSession(t *testing.T) (*core.ToolContext, *core.Session) {
	t.Helper()
	sess := core.NewSession("sess")
	emit := make(chan core.Event, 100)
	rc := core.NewRunContext(
		context.Background(),
		"sess", "run",
		core.AgentInfo{Name: "agent", Type: "model"},
		core.NewUserText("msg"),
		0,
		emit, nil,
		sess, nil,
		artifact.NewInMemoryStore(),
		memory.NewInMemoryStore(),
		nil,
	)
	return core.NewToolContext(rc, "call-1"), sess
}

func TestFunctionTool_Metadata(t *testing.T) {
	ft := NewFunctionTool("echo", "Echo the input.", map[string]any{
		"type":       "object",
		"properties": map[string]any{"text": map[string]any{"type": "string"}},
	}, func(tc *core.ToolContext, args map[string]any) (any, error) {
		return args["text"], nil
	})

	assert.Equal(t, "echo", ft.Name())
	assert.Equal(t, "Echo the input.", ft.Description())
	assert.Equal(t, "object", ft.Parameters()["type"])
}

func TestFunctionTool_Call(t *testing.T) {
	ft := NewFunctionTool("echo", "Echo the input.", map[string]any{
		"type":       "object",
		"properties": map[string]any{"text": map[string]any{"type": "string"}},
		"required":   []string{"text"},
	}, func(tc *core.ToolContext, args map[string]any) (any, error) {
		return args["text"], nil
	})

	result, err := ft.Call(newTestToolContext(t), map[string]any{"text": "hi"})
	assert.NoError(t, err)
	assert.Equal(t, "hi", result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	ft := NewFunctionTool("echo", "Echo.", map[string]any{
		"type":       "object",
		"properties": map[string]any{"text": map[string]any{"type": "string"}},
		"required":   []string{"text"},
	}, func(tc *core.ToolContext, args map[string]any) (any, error) {
		return args["text"], nil
	})

	_, err := ft.Call(newTestToolContext(t), map[string]any{})
	assert.Error(t, err)

	var toolErr *ToolError
	assert.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
	assert.Equal(t, "echo", toolErr.Tool)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	ft := NewFunctionTool("boom", "Fails.", map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}, func(tc *core.ToolContext, args map[string]any) (any, error) {
		return nil, errors.New("backend down")
	})

	_, err := ft.Call(newTestToolContext(t), map[string]any{})
	var toolErr *ToolError
	assert.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Equal(t, "backend down", toolErr.Message)
}

func TestFunctionTool_CustomToolErrorPassthrough(t *testing.T) {
	custom := NewToolError("limited", "quota exceeded", "RATE_LIMIT")
	ft := NewFunctionTool("limited", "Rate limited.", map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}, func(tc *core.ToolContext, args map[string]any) (any, error) {
		return nil, custom
	})

	_, err := ft.Call(newTestToolContext(t), map[string]any{})
	var toolErr *ToolError
	assert.ErrorAs(t, err, &toolErr)
	assert.Same(t, custom, toolErr)
	assert.Equal(t, "RATE_LIMIT", toolErr.Code)
}

type lengthArgs struct {
	Word string `json:"word" description:"Word to measure"`
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	ft := NewFunctionToolFromStruct("get_word_length", "Count characters.", lengthArgs{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			word, _ := args["word"].(string)
			return len([]rune(word)), nil
		})

	params := ft.Parameters()
	props := params["properties"].(map[string]any)
	word := props["word"].(map[string]any)
	assert.Equal(t, "string", word["type"])
	assert.Equal(t, "Word to measure", word["description"])

	result, err := ft.Call(newTestToolContext(t), map[string]any{"word": "gopher"})
	assert.NoError(t, err)
	assert.Equal(t, 6, result)

	// schema derived from the struct enforces the required field
	_, err = ft.Call(newTestToolContext(t), map[string]any{})
	var toolErr *ToolError
	assert.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestToolError_Error(t *testing.T) {
	withCode := NewToolError("calc", "bad input", "VALIDATION_ERROR")
	assert.Contains(t, withCode.Error(), "VALIDATION_ERROR")
	assert.Contains(t, withCode.Error(), "calc")

	noCode := &ToolError{Tool: "calc", Message: "bad input"}
	assert.Equal(t, "tool error in calc: bad input", noCode.Error())
}
