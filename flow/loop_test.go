package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reagent-ai/reagent/core"
	"github.com/reagent-ai/reagent/model"
	"github.com/reagent-ai/reagent/tool"
)

func collectEvents(t *testing.T, ch <-chan core.Event) []core.Event {
	t.Helper()
	var events []core.Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestToolLoopFlow_DirectAnswer(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.EnqueueText("Paris is the capital of France.")

	a := &mockAgent{name: "A", llm: mock}
	rc := newFlowRunContext(t, 0)

	ch, err := NewToolLoopFlow(a).Execute(rc)
	assert.NoError(t, err)

	events := collectEvents(t, ch)
	assert.Len(t, events, 1)
	assert.True(t, events[0].IsFinalAnswer())
	assert.Equal(t, "Paris is the capital of France.", events[0].Content.Text())
	assert.NotNil(t, events[0].TurnComplete)
	assert.True(t, *events[0].TurnComplete)
	assert.Equal(t, 1, rc.Budget.ModelCalls())
}

func TestToolLoopFlow_ToolRoundTrip(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.EnqueueToolCall("c1", "adder", `{"a":40,"b":2}`)
	mock.EnqueueText("The result is 42.")

	a := &mockAgent{
		name: "A",
		llm:  mock,
		tools: map[string]tool.Tool{
			"adder": &mockTool{name: "adder", result: 42},
		},
	}
	rc := newFlowRunContext(t, 0)

	ch, err := NewToolLoopFlow(a).Execute(rc)
	assert.NoError(t, err)

	events := collectEvents(t, ch)
	assert.Len(t, events, 3)

	// reason: the model asks for a tool
	calls := events[0].ToolCalls()
	assert.Len(t, calls, 1)
	assert.Equal(t, "adder", calls[0].Name)

	// act: the tool result is observed
	results := events[1].ToolResults()
	assert.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ID)
	assert.Equal(t, 42, results[0].Output)

	// observe: the model produces the final answer
	assert.True(t, events[2].IsFinalAnswer())
	assert.Equal(t, "The result is 42.", events[2].Content.Text())
	assert.Equal(t, 2, rc.Budget.ModelCalls())
}

func TestToolLoopFlow_ParallelToolCalls(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.EnqueueTurn(core.Content{Role: "assistant", Parts: []core.Part{
		core.ToolCallPart{ToolCall: core.ToolCall{ID: "c1", Name: "first", Arguments: "{}"}},
		core.ToolCallPart{ToolCall: core.ToolCall{ID: "c2", Name: "second", Arguments: "{}"}},
	}})
	mock.EnqueueText("both done")

	a := &mockAgent{
		name: "A",
		llm:  mock,
		tools: map[string]tool.Tool{
			"first":  &mockTool{name: "first", result: "1"},
			"second": &mockTool{name: "second", result: "2"},
		},
	}
	rc := newFlowRunContext(t, 0)

	ch, err := NewToolLoopFlow(a).Execute(rc)
	assert.NoError(t, err)

	events := collectEvents(t, ch)
	assert.Len(t, events, 4)

	// the default executor preserves call order
	assert.Equal(t, "first", events[1].ToolResults()[0].Name)
	assert.Equal(t, "second", events[2].ToolResults()[0].Name)
	assert.True(t, events[3].IsFinalAnswer())
}

func TestToolLoopFlow_BudgetExceeded(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.EnqueueToolCall("c1", "noop", "{}")
	mock.EnqueueText("never reached")

	a := &mockAgent{
		name: "A",
		llm:  mock,
		tools: map[string]tool.Tool{
			"noop": &mockTool{name: "noop", result: "ok"},
		},
	}
	rc := newFlowRunContext(t, 1)

	ch, err := NewToolLoopFlow(a).Execute(rc)
	assert.NoError(t, err)

	events := collectEvents(t, ch)
	assert.Len(t, events, 3)

	last := events[len(events)-1]
	assert.NotNil(t, last.ErrorMessage)
	assert.Contains(t, *last.ErrorMessage, "exceeded max model calls")
}

func TestToolLoopFlow_OutputKey(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.EnqueueText("saved answer")

	a := &mockAgent{name: "A", llm: mock, outputKey: "answer"}
	rc := newFlowRunContext(t, 0)

	ch, err := NewToolLoopFlow(a).Execute(rc)
	assert.NoError(t, err)

	events := collectEvents(t, ch)
	assert.Len(t, events, 1)
	assert.Equal(t, "saved answer", events[0].Actions.StateDelta["answer"])
}

func TestToolLoopFlow_RegistersToolCaps(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.EnqueueToolCall("c1", "web_search", `{"query":"go"}`)
	mock.EnqueueText("done researching")

	a := &mockAgent{
		name: "A",
		llm:  mock,
		tools: map[string]tool.Tool{
			"web_search": &mockTool{name: "web_search", result: "results"},
		},
		caps: map[string]int{"web_search": 1},
	}
	rc := newFlowRunContext(t, 0)

	ch, err := NewToolLoopFlow(a).Execute(rc)
	assert.NoError(t, err)

	events := collectEvents(t, ch)
	assert.Len(t, events, 3)
	assert.True(t, rc.Budget.ToolExhausted("web_search"))
}
