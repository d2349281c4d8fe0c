package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
)

func testDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository(testDatabase(t))

	_, ok, err := repo.LocalAddress()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SaveLocalAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))

	addr, ok, err := repo.LocalAddress()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", addr)

	// Saving again replaces the previous selection
	require.NoError(t, repo.SaveLocalAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"))
	addr, ok, err = repo.LocalAddress()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", addr)

	require.NoError(t, repo.ClearLocalAddress())
	_, ok, err = repo.LocalAddress()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActivityRepository(t *testing.T) {
	repo := NewActivityRepository(testDatabase(t))

	first := models.WorkflowResult{
		ID:        "a1",
		Op:        models.OpMint,
		Status:    models.StatusSuccess,
		TokenID:   "1",
		TxHash:    "0x01",
		SettledAt: time.Now().UTC().Add(-time.Minute),
	}
	second := models.WorkflowResult{
		ID:        "a2",
		Op:        models.OpBuy,
		Status:    models.StatusReverted,
		TokenID:   "1",
		Message:   "execution reverted",
		SettledAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Record(first))
	require.NoError(t, repo.Record(second))

	results, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Newest first
	assert.Equal(t, "a2", results[0].ID)
	assert.Equal(t, models.StatusReverted, results[0].Status)
	assert.Equal(t, "a1", results[1].ID)
	assert.Equal(t, models.OpMint, results[1].Op)
}

func TestActivityListEmpty(t *testing.T) {
	repo := NewActivityRepository(testDatabase(t))

	results, err := repo.List(0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
