package history_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/portcore/internal/adapters/outbound/history"
	"github.com/openkraft/portcore/internal/domain"
)

func TestHistory_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	entry := domain.RunEntry{
		Timestamp:  "2026-02-25T10:00:00Z",
		RunID:      "7d1c6a2e",
		CommitHash: "abc1234",
		Projects:   2,
		Downloaded: 5,
		Actions:    11,
	}
	require.NoError(t, h.Save(dir, entry))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestHistory_AppendAndLast(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	for i := 1; i <= 3; i++ {
		require.NoError(t, h.Save(dir, domain.RunEntry{RunID: fmt.Sprint(i), Projects: i}))
	}

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "1", entries[0].RunID)

	last, ok, err := h.Last(dir)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, last.Projects)
}

func TestHistory_LoadEmpty(t *testing.T) {
	h := history.New()
	entries, err := h.Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, ok, err := h.Last(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistory_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, ".portcore", "history", "runs.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(fp), 0755))
	require.NoError(t, os.WriteFile(fp, []byte("not json"), 0644))

	_, err := history.New().Load(dir)
	assert.Error(t, err)
}
