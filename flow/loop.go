package flow

import (
	"fmt"

	"github.com/reagent-ai/reagent/core"
	"github.com/reagent-ai/reagent/model"
)

// ToolLoopFlow drives a single agent through the reason/act/observe cycle:
// model turn, tool execution, observation feedback, next model turn, until
// the model answers without tool calls or the run budget is exhausted.
// Request and response processors are pluggable; registration order defines
// execution order.
type ToolLoopFlow struct {
	agent              FlowAgent
	requestProcessors  []RequestProcessor
	responseProcessors []ResponseProcessor
	executor           ToolExecutor
}

// NewToolLoopFlow creates a loop flow with the default processor pipeline:
// instructions, history window and tool budget filtering.
func NewToolLoopFlow(agent FlowAgent) *ToolLoopFlow {
	f := &ToolLoopFlow{
		agent:    agent,
		executor: NewParallelToolExecutor(ToolExecutorConfig{PreserveOrder: true}),
	}
	f.AddRequestProcessor(NewInstructionsProcessor())
	f.AddRequestProcessor(NewHistoryProcessor())
	f.AddRequestProcessor(NewBudgetProcessor())
	return f
}

// AddRequestProcessor appends a request processor.
func (f *ToolLoopFlow) AddRequestProcessor(p RequestProcessor) {
	f.requestProcessors = append(f.requestProcessors, p)
}

// AddResponseProcessor appends a response processor executed per model chunk.
func (f *ToolLoopFlow) AddResponseProcessor(p ResponseProcessor) {
	f.responseProcessors = append(f.responseProcessors, p)
}

// SetExecutor replaces the tool executor.
func (f *ToolLoopFlow) SetExecutor(e ToolExecutor) { f.executor = e }

// Execute launches the loop asynchronously and returns a channel of events.
// The channel is closed when a final answer is emitted, the budget runs out
// or an unrecoverable error occurs.
func (f *ToolLoopFlow) Execute(runCtx *core.RunContext) (<-chan core.Event, error) {
	if runCtx.Budget != nil {
		for name, limit := range f.agent.ToolCaps() {
			runCtx.Budget.SetToolCap(name, limit)
		}
	}

	eventChan := make(chan core.Event, 100)

	go func() {
		defer close(eventChan)

		for {
			last := f.runTurn(runCtx, eventChan)
			if last == nil {
				return
			}
			// A tool result means the model needs another turn to observe it.
			if len(last.ToolResults()) > 0 {
				continue
			}
			if last.IsPartial() {
				runCtx.LogWarn("flow.loop.unexpected_partial", "agent", f.agent.GetName())
				return
			}
			if last.IsFinalAnswer() {
				return
			}
		}
	}()

	return eventChan, nil
}

// emit forwards an event and, for non-partial events, waits until the runner
// signals persistence before continuing.
func (f *ToolLoopFlow) emit(runCtx *core.RunContext, eventChan chan<- core.Event, ev core.Event) error {
	select {
	case <-runCtx.Context.Done():
		return runCtx.Context.Err()
	case eventChan <- ev:
	}
	if !ev.IsPartial() && runCtx.Resume != nil {
		select {
		case <-runCtx.Context.Done():
			return runCtx.Context.Err()
		case <-runCtx.Resume:
		}
	}
	return nil
}

func (f *ToolLoopFlow) emitError(runCtx *core.RunContext, eventChan chan<- core.Event, err error) {
	_ = f.emit(runCtx, eventChan, core.NewErrorEvent(runCtx.RunID, err))
}

// runTurn performs one model turn including any tool executions and returns
// the last emitted event. A nil return terminates the loop.
func (f *ToolLoopFlow) runTurn(runCtx *core.RunContext, eventChan chan<- core.Event) *core.Event {
	// Refresh the session snapshot so request processors see the latest
	// conversation, including tool results from the previous turn.
	if runCtx.SessionStore != nil {
		if err := runCtx.RefreshSession(); err != nil {
			f.emitError(runCtx, eventChan, fmt.Errorf("session refresh failed: %w", err))
			return nil
		}
	}

	if runCtx.Budget != nil {
		if err := runCtx.Budget.ConsumeModelCall(); err != nil {
			runCtx.LogWarn("flow.loop.budget_exhausted", "agent", f.agent.GetName(), "model_calls", runCtx.Budget.ModelCalls())
			f.emitError(runCtx, eventChan, err)
			return nil
		}
	}

	req := &model.Request{Stream: f.agent.IsStreamingEnabled()}

	// Tool definitions are built before the processors run so the budget
	// processor can withhold exhausted tools.
	for _, t := range f.agent.GetTools() {
		req.Tools = append(req.Tools, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	for _, processor := range f.requestProcessors {
		if err := processor.ProcessRequest(runCtx, req, f.agent); err != nil {
			f.emitError(runCtx, eventChan, fmt.Errorf("request processor %s failed: %w", processor.Name(), err))
			return nil
		}
	}

	respCh, errCh := f.agent.GetModel().Generate(runCtx.Context, *req)

	var lastEvent *core.Event

	for {
		select {
		case resp, ok := <-respCh:
			if !ok {
				return lastEvent
			}

			for _, processor := range f.responseProcessors {
				if err := processor.ProcessResponse(runCtx, &resp, f.agent); err != nil {
					f.emitError(runCtx, eventChan, fmt.Errorf("response processor %s failed: %w", processor.Name(), err))
					return nil
				}
			}

			ev := core.NewEvent(runCtx.RunID, f.agent.GetName())
			ev.Content = &resp.Content
			ev.Partial = &resp.Partial

			calls := ev.ToolCalls()

			if !resp.Partial && len(calls) == 0 {
				complete := true
				ev.TurnComplete = &complete
				if key := f.agent.OutputKey(); key != "" {
					ev.Actions.StateDelta = map[string]any{key: resp.Content.Text()}
				}
			}

			lastEvent = &ev
			if err := f.emit(runCtx, eventChan, ev); err != nil {
				return lastEvent
			}

			if len(calls) > 0 {
				f.executor.Execute(runCtx, f.agent, calls, func(resEv core.Event) error {
					lastEvent = &resEv
					return f.emit(runCtx, eventChan, resEv)
				})
			}

		case err, ok := <-errCh:
			if !ok {
				errCh = nil // closed; keep draining respCh
				continue
			}
			if err != nil {
				f.emitError(runCtx, eventChan, fmt.Errorf("model generation failed: %w", err))
				return nil
			}

		case <-runCtx.Context.Done():
			return lastEvent
		}
	}
}
