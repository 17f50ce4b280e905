package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
)

func TestLoadMissingFile(t *testing.T) {
	repo, err := NewJSONFileRepository(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)

	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, state.Users)
	assert.NotNil(t, state.Shorts)
	assert.Empty(t, state.Shorts)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.json")
	repo, err := NewJSONFileRepository(path)
	require.NoError(t, err)
	ctx := context.Background()

	in := &domain.State{
		Users: []domain.User{{ID: "u1", Username: "alice", Hash: "$2a$10$x"}},
		Shorts: []domain.LinkRecord{
			{ID: "l1", OwnerID: "u1", TargetURL: "https://a.example", Code: "aaaaaaa", CreatedAt: 1, ExpiresAt: 2, Clicks: 3},
			{ID: "l2", OwnerID: "u1", TargetURL: "https://b.example", Code: "bbbbbbb", CreatedAt: 4, ExpiresAt: 5},
		},
	}
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLoadLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	doc := `{
  "users": [{"id": "u1", "username": "alice", "hash": "h"}],
  "shorts": [{"id": "l1", "owner": "u1", "url": "https://example.com", "code": "abc", "createdAt": 1700000000000, "expiresAt": 1700604800000, "clicks": 7}]
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	repo, err := NewJSONFileRepository(path)
	require.NoError(t, err)
	state, err := repo.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, state.Shorts, 1)
	assert.Equal(t, "u1", state.Shorts[0].OwnerID)
	assert.Equal(t, "https://example.com", state.Shorts[0].TargetURL)
	assert.Equal(t, int64(7), state.Shorts[0].Clicks)
	assert.Equal(t, int64(1700604800000), state.Shorts[0].ExpiresAt)
}

func TestLoadMissingCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	repo, err := NewJSONFileRepository(path)
	require.NoError(t, err)
	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, state.Users)
	assert.NotNil(t, state.Shorts)
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"shorts": [`), 0o644))

	repo, err := NewJSONFileRepository(path)
	require.NoError(t, err)
	_, err = repo.Load(context.Background())
	assert.Error(t, err)
}
