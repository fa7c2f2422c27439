package flow

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/reagent-ai/reagent/core"
)

// ToolExecutor executes a batch of tool calls, possibly in parallel, and
// emits tool result events through the provided emit callback.
// Implementations must:
//   - Respect runCtx.Context cancellation
//   - Never panic (recover internally and surface the failure as a result)
//   - Emit exactly one ToolResult event per incoming ToolCall
//   - Apply ToolContext accumulated actions to emitted events
//
// The emit callback is responsible for persistence synchronization.
type ToolExecutor interface {
	Execute(runCtx *core.RunContext, agent FlowAgent, calls []core.ToolCall, emit func(core.Event) error)
}

// ToolExecutorConfig configures the default parallel executor.
type ToolExecutorConfig struct {
	MaxParallel   int  // 0 or <1 => no explicit limit (len(calls))
	PreserveOrder bool // if true, buffer results and emit in original order
}

// parallelToolExecutor is the default implementation.
type parallelToolExecutor struct {
	cfg ToolExecutorConfig
}

// NewParallelToolExecutor constructs an executor with the given config.
func NewParallelToolExecutor(cfg ToolExecutorConfig) ToolExecutor {
	return &parallelToolExecutor{cfg: cfg}
}

func (e *parallelToolExecutor) Execute(
	runCtx *core.RunContext,
	agent FlowAgent,
	calls []core.ToolCall,
	emit func(core.Event) error,
) {
	n := len(calls)
	if n == 0 {
		return
	}

	// Fast path: single call, execute inline.
	if n == 1 {
		ev := e.runOne(runCtx, agent, calls[0])
		if err := emit(ev); err != nil {
			runCtx.LogError("agent.tool.emit.error", "tool", calls[0].Name, "error", err.Error())
		}
		return
	}

	maxPar := e.cfg.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	results := make([]core.Event, n) // used only if PreserveOrder
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPar)

	batchStart := time.Now()
	for i := range calls {
		if runCtx.Context.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, tc core.ToolCall) {
			defer wg.Done()
			defer func() { <-sem }()

			if runCtx.Context.Err() != nil {
				return
			}

			ev := e.runOne(runCtx, agent, tc)

			if e.cfg.PreserveOrder {
				mu.Lock()
				results[idx] = ev
				mu.Unlock()
				return
			}
			mu.Lock()
			err := emit(ev)
			mu.Unlock()
			if err != nil {
				runCtx.LogError("agent.tool.emit.error", "tool", tc.Name, "error", err.Error())
			}
		}(i, calls[i])
	}

	wg.Wait()

	if e.cfg.PreserveOrder {
		for i := 0; i < n; i++ {
			if results[i].ID == "" {
				continue
			}
			if err := emit(results[i]); err != nil {
				runCtx.LogError("agent.tool.emit.error", "tool", calls[i].Name, "error", err.Error())
			}
		}
	}

	runCtx.LogDebug(
		"agent.tools.batch.complete",
		"agent", agent.GetName(),
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)
}

// runOne executes a single tool call with panic recovery and returns the
// result event, actions applied.
func (e *parallelToolExecutor) runOne(runCtx *core.RunContext, agent FlowAgent, tc core.ToolCall) core.Event {
	toolCtx := core.NewToolContext(runCtx, tc.ID)

	start := time.Now()
	var (
		result any
		err    error
	)
	func() { // panic safety
		defer func() {
			if r := recover(); r != nil {
				err = panicError(r)
				runCtx.LogError("agent.tool.panic", "agent", agent.GetName(), "tool", tc.Name, "recover", r)
			}
		}()
		result, err = agent.ExecuteTool(toolCtx, tc.Name, tc.Arguments)
	}()

	runCtx.LogInfo(
		"agent.tool.executed",
		"agent", agent.GetName(),
		"tool", tc.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	if runCtx.Budget != nil {
		runCtx.Budget.CountToolCall(tc.Name)
	}

	ev := core.NewToolResultEvent(agent.GetName(), tc.ID, tc.Name, result, err)
	ev.RunID = runCtx.RunID
	toolCtx.ApplyActions(&ev)
	return ev
}

// panicError converts a recovered panic value to an error carrying the stack.
func panicError(r any) error { return &panicErr{val: r, stack: debug.Stack()} }

type panicErr struct {
	val   any
	stack []byte
}

func (p *panicErr) Error() string { return fmt.Sprintf("panic recovered: %v", p.val) }
