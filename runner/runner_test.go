package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reagent-ai/reagent/agent"
	"github.com/reagent-ai/reagent/checkpoint"
	"github.com/reagent-ai/reagent/core"
	"github.com/reagent-ai/reagent/model"
	"github.com/reagent-ai/reagent/tool"
)

func TestRunner_RunSync_DirectAnswer(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.EnqueueText("Hello there!")

	a := agent.NewModelAgent("assistant", mock)
	store := checkpoint.NewMemoryStore()
	r := New(a, func(o *Options) { o.SessionStore = store })

	events, err := r.RunSync(context.Background(), "sess-1", core.NewUserText("hi"))
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "Hello there!", events[0].Content.Text())

	// the user message and the answer are both checkpointed
	sess, err := store.Get("sess-1")
	assert.NoError(t, err)
	history := sess.History()
	assert.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Content.Role)
	assert.Equal(t, "hi", history[0].Content.Text())
	assert.Equal(t, "assistant", history[1].Content.Role)
}

func TestRunner_RunSync_ToolRoundTrip(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.EnqueueToolCall("c1", "calculator", `{"expression":"(10 * 5) / 2"}`)
	mock.EnqueueText("The answer is 25.")

	a := agent.NewModelAgent("assistant", mock)
	a.RegisterTool(tool.NewCalculatorTool())

	store := checkpoint.NewMemoryStore()
	r := New(a, func(o *Options) { o.SessionStore = store })

	events, err := r.RunSync(context.Background(), "sess-1", core.NewUserText("what is (10 * 5) / 2?"))
	assert.NoError(t, err)
	assert.Len(t, events, 3)

	assert.Equal(t, "calculator", events[0].ToolCalls()[0].Name)
	assert.Equal(t, "25", events[1].ToolResults()[0].Output)
	assert.Equal(t, "The answer is 25.", events[2].Content.Text())

	// all non-partial events are persisted in order
	sess, _ := store.Get("sess-1")
	assert.Len(t, sess.GetEvents(), 4)
}

func TestRunner_RunSync_StateDeltaPersisted(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.EnqueueToolCall("c1", "save_user_preference", `{"preference_type":"name","value":"Alice"}`)
	mock.EnqueueText("Nice to meet you, Alice!")

	a := agent.NewModelAgent("assistant", mock)
	a.RegisterTool(tool.NewSavePreferenceTool())

	store := checkpoint.NewMemoryStore()
	r := New(a, func(o *Options) { o.SessionStore = store })

	_, err := r.RunSync(context.Background(), "sess-1", core.NewUserText("my name is Alice"))
	assert.NoError(t, err)

	sess, _ := store.Get("sess-1")
	v, ok := sess.GetState("pref:name")
	assert.True(t, ok)
	assert.Equal(t, "Alice", v)
}

func TestRunner_RunSync_OutputKey(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.EnqueueText("final findings")

	a := agent.NewModelAgent("researcher", mock, func(o *agent.Options) {
		o.OutputKey = "findings"
	})

	store := checkpoint.NewMemoryStore()
	r := New(a, func(o *Options) { o.SessionStore = store })

	_, err := r.RunSync(context.Background(), "sess-1", core.NewUserText("research this"))
	assert.NoError(t, err)

	sess, _ := store.Get("sess-1")
	v, ok := sess.GetState("findings")
	assert.True(t, ok)
	assert.Equal(t, "final findings", v)
}

func TestRunner_RunSync_MultiTurnContinuity(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.EnqueueText("first reply")
	mock.EnqueueText("second reply")

	a := agent.NewModelAgent("assistant", mock)
	store := checkpoint.NewMemoryStore()
	r := New(a, func(o *Options) { o.SessionStore = store })

	_, err := r.RunSync(context.Background(), "thread-1", core.NewUserText("first"))
	assert.NoError(t, err)
	_, err = r.RunSync(context.Background(), "thread-1", core.NewUserText("second"))
	assert.NoError(t, err)

	sess, _ := store.Get("thread-1")
	history := sess.History()
	assert.Len(t, history, 4)
	assert.Equal(t, "first", history[0].Content.Text())
	assert.Equal(t, "first reply", history[1].Content.Text())
	assert.Equal(t, "second", history[2].Content.Text())
	assert.Equal(t, "second reply", history[3].Content.Text())
}

func TestRunner_RunSync_BudgetStopsRunawayLoop(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	// the model keeps asking for tools past the cap
	for i := 0; i < 10; i++ {
		mock.EnqueueToolCall("c", "noop", "{}")
	}

	a := agent.NewModelAgent("assistant", mock)
	a.RegisterTool(tool.NewFunctionTool("noop", "Does nothing.", map[string]any{
		"type": "object", "properties": map[string]any{},
	}, func(tc *core.ToolContext, args map[string]any) (any, error) {
		return "ok", nil
	}))

	r := New(a, func(o *Options) { o.MaxModelCalls = 3 })

	events, err := r.RunSync(context.Background(), "sess-1", core.NewUserText("go"))
	assert.NoError(t, err)

	last := events[len(events)-1]
	assert.NotNil(t, last.ErrorMessage)
	assert.Contains(t, *last.ErrorMessage, "exceeded max model calls")
	// 3 turns of call+result, then the budget error
	assert.Len(t, events, 7)
}

func TestRunner_Run_Async(t *testing.T) {
	mock := model.NewMockModel("mock", "mock")
	mock.EnqueueText("async answer")

	r := New(agent.NewModelAgent("assistant", mock))

	runID, eventsCh, errorsCh, err := r.Run(context.Background(), "sess-1", core.NewUserText("hi"))
	assert.NoError(t, err)
	assert.NotEmpty(t, runID)

	var events []core.Event
	for eventsCh != nil || errorsCh != nil {
		select {
		case ev, ok := <-eventsCh:
			if !ok {
				eventsCh = nil
				continue
			}
			events = append(events, ev)
		case runErr, ok := <-errorsCh:
			if !ok {
				errorsCh = nil
				continue
			}
			assert.NoError(t, runErr)
		}
	}
	assert.Len(t, events, 1)
	assert.Equal(t, "async answer", events[0].Content.Text())
}

func TestRunner_Cancel_UnknownRun(t *testing.T) {
	r := New(agent.NewModelAgent("assistant", model.NewMockModel("mock", "mock")))
	assert.Error(t, r.Cancel("no-such-run"))
}
