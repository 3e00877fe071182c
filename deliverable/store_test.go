package deliverable

import (
	"testing"

	"github.com/hupe1980/agentcrew/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]core.DeliverableStore {
	t.Helper()
	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return map[string]core.DeliverableStore{
		"in_memory": NewInMemoryStore(),
		"file":      fileStore,
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("s1", "charter.md", []byte("# Charter")))

			data, err := store.Get("s1", "charter.md")
			require.NoError(t, err)
			assert.Equal(t, []byte("# Charter"), data)
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("s1", "missing.md")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSave_Overwrite(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("s1", "charter.md", []byte("v1")))
			require.NoError(t, store.Save("s1", "charter.md", []byte("v2")))

			data, err := store.Get("s1", "charter.md")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), data)
		})
	}
}

func TestList(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			names, err := store.List("empty-session")
			require.NoError(t, err)
			assert.Empty(t, names)

			require.NoError(t, store.Save("s1", "charter.md", []byte("a")))
			require.NoError(t, store.Save("s1", "risks.json", []byte("b")))

			names, err = store.List("s1")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"charter.md", "risks.json"}, names)
		})
	}
}

func TestDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("s1", "charter.md", []byte("a")))
			require.NoError(t, store.Delete("s1", "charter.md"))

			_, err := store.Get("s1", "charter.md")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, store.Delete("s1", "charter.md"), ErrNotFound)
		})
	}
}

func TestInMemoryStore_CopiesOnSaveAndGet(t *testing.T) {
	store := NewInMemoryStore()
	src := []byte("original")
	require.NoError(t, store.Save("s1", "doc.md", src))
	src[0] = 'X'

	data, err := store.Get("s1", "doc.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), data)

	data[0] = 'Y'
	again, err := store.Get("s1", "doc.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

func TestFileStore_SanitizesPathComponents(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("../../etc", "pass wd", []byte("data")))

	data, err := store.Get("../../etc", "pass wd")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)
}
