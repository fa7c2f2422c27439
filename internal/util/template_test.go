package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate_Plain(t *testing.T) {
	out, err := RenderTemplate("no placeholders here", map[string]any{"k": "v"})
	assert.NoError(t, err)
	assert.Equal(t, "no placeholders here", out)
}

func TestRenderTemplate_StateLookup(t *testing.T) {
	out, err := RenderTemplate("Hello {{.name}}!", map[string]any{"name": "Ada"})
	assert.NoError(t, err)
	assert.Equal(t, "Hello Ada!", out)
}

func TestRenderTemplate_DefaultFunc(t *testing.T) {
	tpl := `The user's name is {{default "unknown" (index . "pref:name")}}.`

	out, err := RenderTemplate(tpl, map[string]any{})
	assert.NoError(t, err)
	assert.Equal(t, "The user's name is unknown.", out)

	out, err = RenderTemplate(tpl, map[string]any{"pref:name": "Sam"})
	assert.NoError(t, err)
	assert.Equal(t, "The user's name is Sam.", out)
}

func TestRenderTemplate_StringFuncs(t *testing.T) {
	out, err := RenderTemplate(`{{upper .a}} {{lower .b}} {{title .c}}`, map[string]any{
		"a": "go", "b": "GO", "c": "gopher",
	})
	assert.NoError(t, err)
	assert.Equal(t, "GO go Gopher", out)
}

func TestRenderTemplate_Join(t *testing.T) {
	out, err := RenderTemplate(`{{join ", " .items}}`, map[string]any{
		"items": []any{"a", "b", 3},
	})
	assert.NoError(t, err)
	assert.Equal(t, "a, b, 3", out)
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := RenderTemplate("{{.name", map[string]any{})
	assert.Error(t, err)
}
