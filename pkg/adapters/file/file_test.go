package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/digest/pkg/adapters/file"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.RecordStore = (*file.Store)(nil)
	_ ports.MemoryLog   = (*file.Log)(nil)
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunRecordStoreContract(t, file.NewStore(t.TempDir()))
}

func TestFileLog_Contract(t *testing.T) {
	ports.RunMemoryLogContract(t, file.NewLog(filepath.Join(t.TempDir(), "memory", "history.jsonl")))
}

func TestFileStore_AtomicWriteLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(dir)
	ctx := context.Background()

	rec := domain.NewRecord("run-1", "q", domain.StyleAcademic, time.Now())
	require.NoError(t, store.Save(ctx, rec))
	rec.Summary = "second write"
	require.NoError(t, store.Save(ctx, rec))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "run-1.json", entries[0].Name())

	loaded, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "second write", loaded.Summary)
}

func TestFileStore_RejectsPathTraversal(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	_, err := store.Load(ctx, "../etc/passwd")
	assert.ErrorContains(t, err, "invalid run ID")

	err = store.Save(ctx, &domain.Record{})
	assert.ErrorContains(t, err, "cannot be empty")
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "nope"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileLog_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "research_memory.jsonl")
	log := file.NewLog(path)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, domain.MemoryEntry{Query: "a", Style: domain.StyleAcademic}))
	require.NoError(t, log.Append(ctx, domain.MemoryEntry{Query: "b", Style: domain.StyleTechnical}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	assert.Equal(t, 2, lines, "one line per entry")
	assert.Equal(t, path, log.Path())
}

func TestFileLog_CorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"query\":\"ok\"}\n\n{broken\n"), 0o644))

	_, err := file.NewLog(path).ReadAll(context.Background())
	assert.ErrorContains(t, err, "line 3")
}
