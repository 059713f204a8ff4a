package actiondb

import (
	"context"

	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	"github.com/uptrace/bun"
)

// Snapshot is everything kept in the FILE_STORE record.
type Snapshot struct {
	Buttons     []actiondomain.ActionButton     `json:"tags"`
	Files       []actiondomain.ExportFile       `json:"files"`
	Activations []actiondomain.ActivationRecord `json:"activations"`
}

// Repository defines the contract for action button persistence.
type Repository interface {
	// Load returns an empty snapshot when nothing was saved yet.
	Load(ctx context.Context, db bun.IDB) (Snapshot, error)
	Save(ctx context.Context, db bun.IDB, snap Snapshot) error
}
