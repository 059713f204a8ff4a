package bundb_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()
	db, err := bundb.Open(ctx, "file:"+t.Name()+"?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Apply(ctx, db))
	return db
}

func TestStateRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := bundb.NewStateRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, nil, bundb.StoreEvent)
	assert.True(t, errors.Is(err, bundb.ErrNotFound))

	require.NoError(t, repo.Put(ctx, nil, bundb.StoreEvent, []byte(`{"events":[]}`)))
	require.NoError(t, repo.Put(ctx, nil, bundb.StoreEvent, []byte(`{"events":[{"id":"e1"}]}`)))

	rec, err := repo.Get(ctx, nil, bundb.StoreEvent)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[{"id":"e1"}]}`, rec.Value)
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestLoadAndSaveJSON(t *testing.T) {
	db := openTestDB(t)
	repo := bundb.NewStateRepository(db)
	ctx := context.Background()

	type snapshot struct {
		Names []string `json:"names"`
	}

	var empty snapshot
	found, err := bundb.LoadJSON(ctx, repo, nil, bundb.StoreMember, &empty)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, bundb.SaveJSON(ctx, repo, nil, bundb.StoreMember, snapshot{Names: []string{"a", "b"}}))

	var got snapshot
	found, err = bundb.LoadJSON(ctx, repo, nil, bundb.StoreMember, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got.Names)
}

func TestPutInsideTransactionRollsBack(t *testing.T) {
	db := openTestDB(t)
	repo := bundb.NewStateRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := repo.Put(ctx, tx, bundb.StoreFile, []byte(`{}`)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.Get(ctx, nil, bundb.StoreFile)
	assert.ErrorIs(t, err, bundb.ErrNotFound)
}

func TestPutFailureWrapsErrPersistence(t *testing.T) {
	db := openTestDB(t)
	repo := bundb.NewStateRepository(db)
	require.NoError(t, db.Close())

	err := repo.Put(context.Background(), nil, bundb.StoreFile, []byte(`{}`))
	assert.ErrorIs(t, err, bundb.ErrPersistence)
}
