package core

import (
	"fmt"
	"sync"
)

// Budget enforces the loop's termination guarantees: a hard cap on model
// calls per run plus optional per-tool call caps (e.g. a search limit). A
// zero model-call cap means unlimited.
type Budget struct {
	maxModelCalls int
	toolCaps      map[string]int

	mu         sync.Mutex
	modelCalls int
	toolCalls  map[string]int
}

// NewBudget creates a budget with the given model-call cap and no tool caps.
func NewBudget(maxModelCalls int) *Budget {
	return &Budget{
		maxModelCalls: maxModelCalls,
		toolCaps:      map[string]int{},
		toolCalls:     map[string]int{},
	}
}

// SetToolCap caps the number of calls allowed for a named tool. A cap of 0
// removes any existing cap.
func (b *Budget) SetToolCap(tool string, max int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if max <= 0 {
		delete(b.toolCaps, tool)
		return
	}
	b.toolCaps[tool] = max
}

// ConsumeModelCall counts a model call and reports an error once the cap is
// exceeded.
func (b *Budget) ConsumeModelCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modelCalls++
	if b.maxModelCalls > 0 && b.modelCalls > b.maxModelCalls {
		return fmt.Errorf("exceeded max model calls: %d", b.maxModelCalls)
	}
	return nil
}

// CountToolCall records one invocation of the named tool.
func (b *Budget) CountToolCall(tool string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toolCalls[tool]++
}

// ToolExhausted reports whether the named tool has used up its cap. Tools
// without a cap are never exhausted.
func (b *Budget) ToolExhausted(tool string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	cap, ok := b.toolCaps[tool]
	if !ok {
		return false
	}
	return b.toolCalls[tool] >= cap
}

// ToolCalls returns the number of recorded calls for the named tool.
func (b *Budget) ToolCalls(tool string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.toolCalls[tool]
}

// ModelCalls returns the number of model calls made so far.
func (b *Budget) ModelCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.modelCalls
}

// RemainingModelCalls returns calls left before the cap, or -1 if unlimited.
func (b *Budget) RemainingModelCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.maxModelCalls == 0 {
		return -1
	}
	return b.maxModelCalls - b.modelCalls
}
