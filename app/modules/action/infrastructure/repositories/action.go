package actiondb

import (
	"context"

	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/uptrace/bun"
)

// Impl stores the snapshot in the FILE_STORE record.
type Impl struct {
	state bundb.StateRepository
}

func NewRepository(state bundb.StateRepository) Repository {
	return &Impl{state: state}
}

func (r *Impl) Load(ctx context.Context, db bun.IDB) (Snapshot, error) {
	var snap Snapshot
	if _, err := bundb.LoadJSON(ctx, r.state, db, bundb.StoreFile, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (r *Impl) Save(ctx context.Context, db bun.IDB, snap Snapshot) error {
	return bundb.SaveJSON(ctx, r.state, db, bundb.StoreFile, snap)
}
