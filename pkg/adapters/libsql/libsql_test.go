package libsql_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/digest/pkg/adapters/libsql"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, path string) *libsql.DB {
	t.Helper()
	db, err := libsql.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLibSQLLog_Contract(t *testing.T) {
	db := open(t, filepath.Join(t.TempDir(), "digest.db"))
	ports.RunMemoryLogContract(t, db.Log())
}

func TestLibSQLStore_Contract(t *testing.T) {
	db := open(t, filepath.Join(t.TempDir(), "digest.db"))
	ports.RunRecordStoreContract(t, db.Store())
}

func TestLibSQL_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest.db")
	ctx := context.Background()

	first, err := libsql.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Log().Append(ctx, domain.MemoryEntry{
		Query:              "persisted",
		Style:              domain.StylePopularized,
		ValidationApproved: true,
		Feedback:           "great",
	}))
	require.NoError(t, first.Close())

	// Migrations are idempotent across opens.
	second := open(t, path)
	entries, err := second.Log().ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "persisted", entries[0].Query)
	assert.Equal(t, domain.StylePopularized, entries[0].Style)
	assert.True(t, entries[0].ValidationApproved)
	assert.Equal(t, "great", entries[0].Feedback)
}
