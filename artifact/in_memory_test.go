package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryStore_SaveAndGet(t *testing.T) {
	store := NewInMemoryStore()

	assert.NoError(t, store.Save("s1", "doc", []byte("hello")))

	data, err := store.Get("s1", "doc")
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestInMemoryStore_NotFound(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get("s1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Save("s1", "doc", []byte("x")))
	_, err = store.Get("s1", "other")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get("other-session", "doc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_CopiesBytes(t *testing.T) {
	store := NewInMemoryStore()

	input := []byte("abc")
	assert.NoError(t, store.Save("s1", "doc", input))
	input[0] = 'z'

	data, _ := store.Get("s1", "doc")
	assert.Equal(t, []byte("abc"), data)

	data[0] = 'z'
	again, _ := store.Get("s1", "doc")
	assert.Equal(t, []byte("abc"), again)
}

func TestInMemoryStore_List(t *testing.T) {
	store := NewInMemoryStore()

	ids, err := store.List("empty")
	assert.NoError(t, err)
	assert.Empty(t, ids)

	assert.NoError(t, store.Save("s1", "a", nil))
	assert.NoError(t, store.Save("s1", "b", nil))

	ids, err = store.List("s1")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	assert.NoError(t, store.Save("s1", "doc", []byte("x")))

	assert.NoError(t, store.Delete("s1", "doc"))
	assert.ErrorIs(t, store.Delete("s1", "doc"), ErrNotFound)
	assert.ErrorIs(t, store.Delete("nope", "doc"), ErrNotFound)
}
