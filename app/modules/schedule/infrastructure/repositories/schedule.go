package scheduledb

import (
	"context"

	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/uptrace/bun"
)

type eventSnapshot struct {
	Events []scheduledomain.Event `json:"events"`
}

type memberSnapshot struct {
	Members []scheduledomain.Member `json:"members"`
}

// Impl stores schedule snapshots in the EVENT_STORE and MEMBER_STORE records.
type Impl struct {
	state bundb.StateRepository
}

// NewRepository creates a schedule repository on top of the state store.
func NewRepository(state bundb.StateRepository) Repository {
	return &Impl{state: state}
}

func (r *Impl) LoadEvents(ctx context.Context, db bun.IDB) ([]scheduledomain.Event, error) {
	var snap eventSnapshot
	if _, err := bundb.LoadJSON(ctx, r.state, db, bundb.StoreEvent, &snap); err != nil {
		return nil, err
	}
	return snap.Events, nil
}

func (r *Impl) SaveEvents(ctx context.Context, db bun.IDB, events []scheduledomain.Event) error {
	return bundb.SaveJSON(ctx, r.state, db, bundb.StoreEvent, eventSnapshot{Events: events})
}

func (r *Impl) LoadMembers(ctx context.Context, db bun.IDB) ([]scheduledomain.Member, error) {
	var snap memberSnapshot
	if _, err := bundb.LoadJSON(ctx, r.state, db, bundb.StoreMember, &snap); err != nil {
		return nil, err
	}
	return snap.Members, nil
}

func (r *Impl) SaveMembers(ctx context.Context, db bun.IDB, members []scheduledomain.Member) error {
	return bundb.SaveJSON(ctx, r.state, db, bundb.StoreMember, memberSnapshot{Members: members})
}
