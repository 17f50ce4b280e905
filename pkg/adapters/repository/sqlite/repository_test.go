package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
)

func newMemoryRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbURL := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	repo, err := NewSQLiteRepository(dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLoadEmpty(t *testing.T) {
	repo := newMemoryRepo(t)

	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Users)
	assert.Empty(t, state.Shorts)
	assert.NotNil(t, state.Shorts)
}

func TestSaveLoadKeepsOrder(t *testing.T) {
	repo := newMemoryRepo(t)
	ctx := context.Background()

	state := &domain.State{
		Users: []domain.User{
			{ID: "u2", Username: "zed", Hash: "h2"},
			{ID: "u1", Username: "amy"},
		},
		Shorts: []domain.LinkRecord{
			{ID: "l9", OwnerID: "u2", TargetURL: "https://z.example", Code: "zzzzzzz", CreatedAt: 10, ExpiresAt: 20, Clicks: 1},
			{ID: "l1", OwnerID: "u1", TargetURL: "https://a.example", Code: "aaaaaaa", CreatedAt: 11, ExpiresAt: 21},
		},
	}
	require.NoError(t, repo.Save(ctx, state))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, got)

	// rewrite with a click and a new record appended
	state.Shorts[0].Clicks = 2
	state.Shorts = append(state.Shorts, domain.LinkRecord{ID: "l5", OwnerID: "u1", TargetURL: "https://m.example", Code: "mmmmmmm", CreatedAt: 12, ExpiresAt: 22})
	require.NoError(t, repo.Save(ctx, state))

	got, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Shorts, 3)
	assert.Equal(t, []string{"zzzzzzz", "aaaaaaa", "mmmmmmm"},
		[]string{got.Shorts[0].Code, got.Shorts[1].Code, got.Shorts[2].Code})
	assert.Equal(t, int64(2), got.Shorts[0].Clicks)
}

func TestSaveRejectsDuplicateCode(t *testing.T) {
	repo := newMemoryRepo(t)
	ctx := context.Background()

	good := &domain.State{Shorts: []domain.LinkRecord{{ID: "l1", OwnerID: "u1", TargetURL: "https://a.example", Code: "dup", CreatedAt: 1, ExpiresAt: 2}}}
	require.NoError(t, repo.Save(ctx, good))

	bad := &domain.State{Shorts: []domain.LinkRecord{
		{ID: "l1", OwnerID: "u1", TargetURL: "https://a.example", Code: "dup", CreatedAt: 1, ExpiresAt: 2},
		{ID: "l2", OwnerID: "u1", TargetURL: "https://b.example", Code: "dup", CreatedAt: 1, ExpiresAt: 2},
	}}
	assert.Error(t, repo.Save(ctx, bad))

	// the failed transaction leaves the previous document intact
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Shorts, 1)
}

func TestFileDatabasePersists(t *testing.T) {
	dbURL := "file:" + filepath.Join(t.TempDir(), "db.sqlite")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(dbURL)
	require.NoError(t, err)
	state := &domain.State{Users: []domain.User{{ID: "u1", Username: "alice", Hash: "h"}}}
	require.NoError(t, repo.Save(ctx, state))
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(dbURL)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Users, 1)
	assert.Equal(t, "alice", got.Users[0].Username)
}
