package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testRun(id string, started time.Time) domain.Run {
	return domain.Run{
		ID:        id,
		Status:    domain.RunStatusRunning,
		Planned:   4,
		StartedAt: started,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "ledger.db"), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(ctx, testRun("r1", time.Now())))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	run, err := reopened.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", run.ID)
}

func TestStore_SaveAndGetRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 123000000, time.UTC)

	run := testRun("r1", started)
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusRunning, got.Status)
	assert.Equal(t, 4, got.Planned)
	assert.True(t, started.Equal(got.StartedAt))
	assert.True(t, got.FinishedAt.IsZero())
	assert.Empty(t, got.Error)

	run.Status = domain.RunStatusCompleted
	run.Saved = 3
	run.Failed = 1
	run.CorpusLocation = "data/corpus"
	run.MetadataPath = "data/metadata.csv"
	run.FinishedAt = started.Add(time.Minute)
	require.NoError(t, store.SaveRun(ctx, run))

	got, err = store.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, got.Status)
	assert.Equal(t, 3, got.Saved)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, "data/corpus", got.CorpusLocation)
	assert.Equal(t, "data/metadata.csv", got.MetadataPath)
	assert.True(t, run.FinishedAt.Equal(got.FinishedAt))
}

func TestStore_GetRun_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetRun(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, testRun("first", base)))
	require.NoError(t, store.SaveRun(ctx, testRun("second", base.Add(500*time.Millisecond))))
	require.NoError(t, store.SaveRun(ctx, testRun("third", base.Add(time.Second))))

	all, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{all[0].ID, all[1].ID, all[2].ID})

	limited, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "third", limited[0].ID)
}

func TestStore_Records(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRun(ctx, testRun("r1", time.Now())))

	records := []domain.DocumentRecord{
		{RunID: "r1", Index: 1, Provider: domain.ProviderMistral, Model: "m", Genre: "news", OK: false, Error: "rate limited", Attempts: 3},
		{RunID: "r1", Index: 0, DocID: "m_news_000.txt", Provider: domain.ProviderMistral, Model: "m", Genre: "news", OK: true, Attempts: 1, Duration: 1500 * time.Millisecond, Chars: 42},
	}
	for _, r := range records {
		require.NoError(t, store.SaveRecord(ctx, r))
	}

	got, err := store.ListRecords(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[1], got[0])
	assert.Equal(t, records[0], got[1])

	records[0].OK = true
	records[0].Error = ""
	require.NoError(t, store.SaveRecord(ctx, records[0]))

	got, err = store.ListRecords(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[1].OK)
	assert.Empty(t, got[1].Error)
}

func TestStore_RecordRequiresRun(t *testing.T) {
	store := setupTestStore(t)

	err := store.SaveRecord(context.Background(), domain.DocumentRecord{RunID: "ghost", Provider: domain.ProviderOpenAI})

	assert.Error(t, err)
}
