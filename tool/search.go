package tool

import (
	"fmt"
	"strings"

	"github.com/reagent-ai/reagent/core"
)

// mockSearchCorpus keys are matched as substrings of the lowercased query.
// The "default" entry is a template applied when nothing matches.
var mockSearchCorpus = map[string]string{
	"langgraph": `LangGraph is a library for building stateful, multi-actor applications with LLMs.
Key features:
- Cycles and Branching: Complex agent workflows with loops
- Persistence: Built-in state management
- Human-in-the-Loop: Pause and resume execution
- Streaming: Real-time output
Released by LangChain in 2024.`,
	"azure openai": `Azure OpenAI Service provides REST API access to OpenAI's models including:
- GPT-4 and GPT-3.5-Turbo for text generation
- DALL-E for image generation
- Whisper for speech-to-text
Key benefits:
- Enterprise-grade security and compliance
- Regional availability
- Integration with Azure services
- Content filtering and responsible AI features`,
	"agentic ai": `Agentic AI refers to autonomous systems that can:
- Plan sequences of actions
- Use tools to interact with environments
- Adapt based on feedback
- Maintain state across interactions

Key patterns:
- ReAct (Reasoning + Acting)
- Plan-and-Execute
- Reflection and self-correction

Applications: research assistants, coding agents, task automation`,
}

const mockSearchDefault = `Search results for: %s

Multiple relevant sources found. Key points:
1. Recent developments in the field
2. Technical implementations and best practices
3. Real-world applications and case studies
4. Expert opinions and analysis

For specific information, please refine your search query.`

// NewWebSearchTool returns a mock web search backed by a small static
// corpus. Swap it for a real search API (Tavily, Serper, Google Custom
// Search) in production by registering a tool with the same name and schema.
func NewWebSearchTool() *FunctionTool {
	return NewFunctionTool(
		"web_search",
		"Search the web for information. Returns search results as text.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query",
				},
			},
			"required": []string{"query"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			lower := strings.ToLower(query)
			for key, result := range mockSearchCorpus {
				if strings.Contains(lower, key) {
					toolCtx.LogDebug("search.hit", "query", query, "topic", key)
					return result, nil
				}
			}
			toolCtx.LogDebug("search.miss", "query", query)
			return fmt.Sprintf(mockSearchDefault, query), nil
		},
	)
}

// NewAnalyzeContentTool returns a tool that produces a focused analysis of
// previously gathered content. The full analysis is also saved as a session
// artifact so later turns can reload it without re-sending the content.
func NewAnalyzeContentTool() *FunctionTool {
	return NewFunctionTool(
		"analyze_content",
		"Analyze content with a specific focus, e.g. 'technical details', 'benefits' or 'limitations'.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"content": map[string]any{
					"type":        "string",
					"description": "The content to analyze",
				},
				"focus": map[string]any{
					"type":        "string",
					"description": "What aspect to focus on",
				},
			},
			"required": []string{"content", "focus"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			content, _ := args["content"].(string)
			focus, _ := args["focus"].(string)

			analysis := fmt.Sprintf(`Analysis focusing on: %s

Based on the provided content:
- Key insights extracted based on the focus area
- Relevant patterns and themes identified
- Important details highlighted for the research question`, focus)

			artifactID := fmt.Sprintf("analysis-%s", toolCtx.CallID())
			payload := fmt.Sprintf("focus: %s\n\ncontent:\n%s\n\nanalysis:\n%s", focus, content, analysis)
			if err := toolCtx.SaveArtifact(artifactID, []byte(payload)); err != nil {
				toolCtx.LogWarn("analysis.artifact_save_failed", "error", err.Error())
			}
			return analysis, nil
		},
	)
}
