package scheduledb

import (
	"context"

	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for schedule persistence.
type Repository interface {
	// LoadEvents returns every event with its runs; empty when never saved.
	LoadEvents(ctx context.Context, db bun.IDB) ([]scheduledomain.Event, error)

	// SaveEvents replaces the event snapshot.
	SaveEvents(ctx context.Context, db bun.IDB, events []scheduledomain.Event) error

	// LoadMembers returns every member; empty when never saved.
	LoadMembers(ctx context.Context, db bun.IDB) ([]scheduledomain.Member, error)

	// SaveMembers replaces the member snapshot.
	SaveMembers(ctx context.Context, db bun.IDB, members []scheduledomain.Member) error
}
