package flow

import (
	"fmt"

	"github.com/reagent-ai/reagent/core"
	internalutil "github.com/reagent-ai/reagent/internal/util"
	"github.com/reagent-ai/reagent/model"
)

// synthesisDirective is appended as a system message once a capped tool has
// been used up, steering the model toward a final answer instead of more
// tool calls.
const synthesisDirective = "You have completed your research. Now provide a comprehensive final answer based on all the information gathered."

// InstructionsProcessor resolves the agent's system instructions and renders
// any template placeholders against session state.
type InstructionsProcessor struct{}

// NewInstructionsProcessor creates a new instructions processor.
func NewInstructionsProcessor() *InstructionsProcessor { return &InstructionsProcessor{} }

// Name returns the processor's identifier.
func (p *InstructionsProcessor) Name() string { return "instructions" }

// ProcessRequest sets system instructions on the request.
func (p *InstructionsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	instructions, err := agent.ResolveInstructions(runCtx)
	if err != nil {
		return fmt.Errorf("failed to resolve instruction: %w", err)
	}

	runCtx.LogDebug("agent.instruction.resolved", "agent", agent.GetName(), "length", len(instructions))

	if runCtx.Session != nil && runCtx.Session.State != nil {
		rendered, tplErr := internalutil.RenderTemplate(instructions, runCtx.Session.StateSnapshot())
		if tplErr != nil {
			return fmt.Errorf("failed to render template: %w", tplErr)
		}
		req.Instructions = rendered
		return nil
	}

	req.Instructions = instructions
	return nil
}

// HistoryProcessor assembles the conversation history into the request,
// bounded by the agent's history window.
type HistoryProcessor struct{}

// NewHistoryProcessor creates a new history processor.
func NewHistoryProcessor() *HistoryProcessor { return &HistoryProcessor{} }

// Name returns the processor's identifier.
func (p *HistoryProcessor) Name() string { return "history" }

// ProcessRequest appends the windowed conversation history to the request.
func (p *HistoryProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	if runCtx.Session == nil {
		req.Contents = append(req.Contents, runCtx.UserContent)
		return nil
	}

	history := runCtx.Session.History()
	if max := agent.MaxHistoryMessages(); max > 0 && len(history) > max {
		history = history[len(history)-max:]
	}
	for _, ev := range history {
		if ev.Content != nil && len(ev.Content.Parts) > 0 {
			req.Contents = append(req.Contents, *ev.Content)
		}
	}
	return nil
}

// BudgetProcessor withholds tool definitions whose per-tool cap is spent.
// When at least one tool was withheld it appends the synthesis directive so
// the model wraps up with a final answer rather than requesting the tool
// again.
type BudgetProcessor struct{}

// NewBudgetProcessor creates a new budget processor.
func NewBudgetProcessor() *BudgetProcessor { return &BudgetProcessor{} }

// Name returns the processor's identifier.
func (p *BudgetProcessor) Name() string { return "budget" }

// ProcessRequest filters exhausted tools from the request.
func (p *BudgetProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	if runCtx.Budget == nil || len(req.Tools) == 0 {
		return nil
	}

	kept := req.Tools[:0]
	var exhausted []string
	for _, def := range req.Tools {
		if runCtx.Budget.ToolExhausted(def.Function.Name) {
			exhausted = append(exhausted, def.Function.Name)
			continue
		}
		kept = append(kept, def)
	}
	req.Tools = kept

	if len(exhausted) == 0 {
		return nil
	}

	runCtx.LogInfo("agent.budget.tools_exhausted", "agent", agent.GetName(), "tools", exhausted)
	req.Contents = append(req.Contents, core.Content{
		Role:  "system",
		Parts: []core.Part{core.TextPart{Text: synthesisDirective}},
	})
	return nil
}
