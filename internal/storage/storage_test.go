package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKey_ReplacesSlashes(t *testing.T) {
	got := SanitizeKey(`12/34\56`)
	assert.NotContains(t, got, "/")
	assert.NotContains(t, got, `\`)
	assert.Equal(t, "12__34__56", got)
}

func TestSanitizeKey_KeepsAllowedCharacters(t *testing.T) {
	assert.Equal(t, "pdfs__117394_2024.pdf", SanitizeKey("pdfs/117394_2024.pdf"))
	assert.Equal(t, "a-b.c_D9", SanitizeKey("a-b.c_D9"))
}

func TestSanitizeKey_ReplacesInvalidCharacters(t *testing.T) {
	assert.Equal(t, "entry_117394_2024", SanitizeKey("entry 117394:2024"))
}

func TestSanitizeKey_EmptyYieldsFallback(t *testing.T) {
	assert.Equal(t, "unknown", SanitizeKey(""))
	assert.Equal(t, "unknown", SanitizeKey("///"))
}

func TestDirStore_PutThenGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Put(ctx, "pdfs/117394:2024.pdf", []byte("%PDF-1.4 stub"), "application/pdf")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(ref))
	assert.Equal(t, "pdfs__117394_2024.pdf", filepath.Base(ref))

	data, err := store.Get(ctx, "pdfs/117394:2024.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 stub"), data)
}

func TestDirStore_GetMissingReturnsNil(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	data, err := store.Get(context.Background(), "never-written")
	require.NoError(t, err)
	assert.Nil(t, data)
}
