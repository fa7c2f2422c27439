package core

import (
	"encoding/json"
	"fmt"
)

// Part is a polymorphic segment of role-based content. Concrete part types
// implement the unexported isPart marker so the set stays closed.
type Part interface{ isPart() }

// TextPart is a plain UTF-8 text segment.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// DataPart carries a structured key/value payload, e.g. a decoded JSON object.
type DataPart struct {
	Data map[string]any
}

func (DataPart) isPart() {}

// ToolCall is a request by the model to invoke a named tool. Arguments hold
// the serialized (JSON) argument payload exactly as the provider produced it.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolCallPart wraps a ToolCall as a content part.
type ToolCallPart struct {
	ToolCall ToolCall
}

func (ToolCallPart) isPart() {}

// ToolResult records the outcome of a previously requested tool call. ID
// matches the originating ToolCall so providers can correlate the pair.
type ToolResult struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ToolResultPart wraps a ToolResult as a content part.
type ToolResultPart struct {
	ToolResult ToolResult
}

func (ToolResultPart) isPart() {}

// Content holds a conversation role plus ordered heterogeneous parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// partEnvelope is the serialized form of a Part. A type tag keeps the closed
// part set round-trippable through JSON, which durable session stores rely on.
type partEnvelope struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	Data       map[string]any  `json:"data,omitempty"`
	ToolCall   *ToolCall       `json:"tool_call,omitempty"`
	ToolResult *toolResultJSON `json:"tool_result,omitempty"`
}

// toolResultJSON mirrors ToolResult with a raw output payload so arbitrary
// tool outputs survive a decode without type loss beyond generic JSON shapes.
type toolResultJSON struct {
	ID     string          `json:"id,omitempty"`
	Name   string          `json:"name"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// MarshalJSON encodes the content with type-tagged part envelopes.
func (c Content) MarshalJSON() ([]byte, error) {
	envelopes := make([]partEnvelope, 0, len(c.Parts))
	for _, p := range c.Parts {
		switch v := p.(type) {
		case TextPart:
			envelopes = append(envelopes, partEnvelope{Type: "text", Text: v.Text})
		case DataPart:
			envelopes = append(envelopes, partEnvelope{Type: "data", Data: v.Data})
		case ToolCallPart:
			tc := v.ToolCall
			envelopes = append(envelopes, partEnvelope{Type: "tool_call", ToolCall: &tc})
		case ToolResultPart:
			raw, err := json.Marshal(v.ToolResult.Output)
			if err != nil {
				return nil, fmt.Errorf("marshal tool result output: %w", err)
			}
			envelopes = append(envelopes, partEnvelope{Type: "tool_result", ToolResult: &toolResultJSON{
				ID:     v.ToolResult.ID,
				Name:   v.ToolResult.Name,
				Output: raw,
				Error:  v.ToolResult.Error,
			}})
		default:
			return nil, fmt.Errorf("unknown part type %T", p)
		}
	}
	return json.Marshal(struct {
		Role  string         `json:"role,omitempty"`
		Parts []partEnvelope `json:"parts"`
	}{Role: c.Role, Parts: envelopes})
}

// UnmarshalJSON decodes type-tagged part envelopes back into concrete parts.
func (c *Content) UnmarshalJSON(data []byte) error {
	var wire struct {
		Role  string         `json:"role,omitempty"`
		Parts []partEnvelope `json:"parts"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.Role = wire.Role
	c.Parts = make([]Part, 0, len(wire.Parts))
	for _, env := range wire.Parts {
		switch env.Type {
		case "text":
			c.Parts = append(c.Parts, TextPart{Text: env.Text})
		case "data":
			c.Parts = append(c.Parts, DataPart{Data: env.Data})
		case "tool_call":
			if env.ToolCall == nil {
				return fmt.Errorf("tool_call part missing payload")
			}
			c.Parts = append(c.Parts, ToolCallPart{ToolCall: *env.ToolCall})
		case "tool_result":
			if env.ToolResult == nil {
				return fmt.Errorf("tool_result part missing payload")
			}
			var output any
			if len(env.ToolResult.Output) > 0 {
				if err := json.Unmarshal(env.ToolResult.Output, &output); err != nil {
					return fmt.Errorf("unmarshal tool result output: %w", err)
				}
			}
			c.Parts = append(c.Parts, ToolResultPart{ToolResult: ToolResult{
				ID:     env.ToolResult.ID,
				Name:   env.ToolResult.Name,
				Output: output,
				Error:  env.ToolResult.Error,
			}})
		default:
			return fmt.Errorf("unknown part type %q", env.Type)
		}
	}
	return nil
}

// Text concatenates all text parts in order. Non-text parts are skipped.
func (c Content) Text() string {
	var out string
	for _, p := range c.Parts {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}

// ToolCalls returns the tool call parts in order.
func (c Content) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range c.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc.ToolCall)
		}
	}
	return calls
}

// NewUserText builds user-role content with a single text part.
func NewUserText(text string) Content {
	return Content{Role: "user", Parts: []Part{TextPart{Text: text}}}
}
