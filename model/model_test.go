package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reagent-ai/reagent/core"
)

func drain(t *testing.T, respCh <-chan Response, errCh <-chan error) ([]Response, error) {
	t.Helper()
	var responses []Response
	for respCh != nil || errCh != nil {
		select {
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			responses = append(responses, resp)
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return responses, err
			}
		}
	}
	return responses, nil
}

func TestMockModel_Info(t *testing.T) {
	m := NewMockModel("test-model", "mock")
	info := m.Info()
	assert.Equal(t, "test-model", info.Name)
	assert.Equal(t, "mock", info.Provider)
	assert.True(t, info.SupportsTools)
}

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("m", "mock")
	m.AddResponse("what is 2+2?", "4")

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewUserText("what is 2+2?")},
	})
	responses, err := drain(t, respCh, errCh)
	assert.NoError(t, err)
	assert.Len(t, responses, 1)
	assert.False(t, responses[0].Partial)
	assert.Equal(t, "4", responses[0].Content.Text())
	assert.Equal(t, "stop", responses[0].FinishReason)
}

func TestMockModel_EchoFallback(t *testing.T) {
	m := NewMockModel("m", "mock")

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewUserText("anything")},
	})
	responses, err := drain(t, respCh, errCh)
	assert.NoError(t, err)
	assert.Len(t, responses, 1)
	assert.Equal(t, "Mock response to: anything", responses[0].Content.Text())
}

func TestMockModel_NoContents(t *testing.T) {
	m := NewMockModel("m", "mock")
	respCh, errCh := m.Generate(context.Background(), Request{})
	_, err := drain(t, respCh, errCh)
	assert.Error(t, err)
}

func TestMockModel_ScriptedTurns(t *testing.T) {
	m := NewMockModel("m", "mock")
	m.EnqueueToolCall("c1", "web_search", `{"query":"go"}`)
	m.EnqueueText("done")

	// first call serves the tool call turn
	respCh, errCh := m.Generate(context.Background(), Request{})
	responses, err := drain(t, respCh, errCh)
	assert.NoError(t, err)
	assert.Len(t, responses, 1)
	assert.Equal(t, "tool_calls", responses[0].FinishReason)
	calls := responses[0].Content.ToolCalls()
	assert.Len(t, calls, 1)
	assert.Equal(t, "web_search", calls[0].Name)

	// second call serves the text turn
	respCh, errCh = m.Generate(context.Background(), Request{})
	responses, err = drain(t, respCh, errCh)
	assert.NoError(t, err)
	assert.Equal(t, "stop", responses[0].FinishReason)
	assert.Equal(t, "done", responses[0].Content.Text())
}

func TestMockModel_Streaming(t *testing.T) {
	m := NewMockModel("m", "mock")
	m.AddResponse("hi", "abc")

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewUserText("hi")},
		Stream:   true,
	})
	responses, err := drain(t, respCh, errCh)
	assert.NoError(t, err)
	// one partial per rune plus the final full response
	assert.Len(t, responses, 4)
	assert.True(t, responses[0].Partial)
	assert.Equal(t, "a", responses[0].Content.Text())
	assert.False(t, responses[3].Partial)
	assert.Equal(t, "abc", responses[3].Content.Text())
}
