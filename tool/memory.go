package tool

import (
	"fmt"
	"strings"

	"github.com/reagent-ai/reagent/core"
)

// NewSavePreferenceTool returns a tool that stores a user preference in
// session state under a "pref:" prefixed key. Preferences persist across
// turns via the session store's state delta pipeline.
func NewSavePreferenceTool() *FunctionTool {
	return NewFunctionTool(
		"save_user_preference",
		"Save a user preference for future reference, e.g. their name, an interest or a goal.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"preference_type": map[string]any{
					"type":        "string",
					"description": "Type of preference (e.g., \"name\", \"interest\", \"goal\")",
				},
				"value": map[string]any{
					"type":        "string",
					"description": "The preference value",
				},
			},
			"required": []string{"preference_type", "value"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			prefType, _ := args["preference_type"].(string)
			value, _ := args["value"].(string)
			toolCtx.SetState("pref:"+prefType, value)
			return fmt.Sprintf("Saved %s: %s", prefType, value), nil
		},
	)
}

// NewSetReminderTool returns a tool that records a reminder in the session
// memory store so later turns can recall it.
func NewSetReminderTool() *FunctionTool {
	return NewFunctionTool(
		"set_reminder",
		"Set a reminder for the user about a task at a given time.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task": map[string]any{
					"type":        "string",
					"description": "What to be reminded about",
				},
				"time": map[string]any{
					"type":        "string",
					"description": "When to be reminded",
				},
			},
			"required": []string{"task", "time"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			task, _ := args["task"].(string)
			when, _ := args["time"].(string)
			err := toolCtx.StoreMemory(
				fmt.Sprintf("Reminder: '%s' at %s", task, when),
				map[string]any{"kind": "reminder", "task": task, "time": when},
			)
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("Reminder set: '%s' at %s", task, when), nil
		},
	)
}

// NewSummaryTool returns a tool that digests the committed conversation
// history into a compact summary the model can reason over.
func NewSummaryTool() *FunctionTool {
	return NewFunctionTool(
		"get_summary",
		"Get a summary of the conversation so far.",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			history := toolCtx.GetSessionHistory()
			if len(history) == 0 {
				return "No conversation history yet.", nil
			}
			var b strings.Builder
			b.WriteString(fmt.Sprintf("Conversation so far (%d messages):\n", len(history)))
			for _, c := range history {
				text := c.Text()
				if text == "" {
					continue
				}
				if len(text) > 120 {
					text = text[:120] + "..."
				}
				b.WriteString(fmt.Sprintf("- %s: %s\n", c.Role, text))
			}
			return b.String(), nil
		},
	)
}
