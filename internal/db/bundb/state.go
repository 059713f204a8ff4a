package bundb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Store names. Each is one row holding a full JSON snapshot.
const (
	StoreConfiguration = "CONFIGURATION_STORE"
	StoreEvent         = "EVENT_STORE"
	StoreMember        = "MEMBER_STORE"
	StoreFile          = "FILE_STORE"
	StoreOBS           = "OBS_STORE"
	StoreNightbot      = "NIGHTBOT_STORE"
	StoreTwitch        = "TWITCH_STORE"
)

var (
	// ErrNotFound is returned when a store has never been written.
	ErrNotFound = errors.New("state record not found")
	// ErrPersistence wraps every failed write. Callers must not treat the
	// mutation as applied.
	ErrPersistence = errors.New("failed to persist state")
)

// StateRecord is one named store snapshot.
type StateRecord struct {
	bun.BaseModel `bun:"table:state_records,alias:sr"`

	Name      string    `bun:"name,pk"`
	Value     string    `bun:"value,type:text,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// StateRepository reads and writes store snapshots.
type StateRepository interface {
	Get(ctx context.Context, db bun.IDB, name string) (*StateRecord, error)
	Put(ctx context.Context, db bun.IDB, name string, value []byte) error
}

// Impl implements StateRepository using Bun.
type Impl struct {
	db bun.IDB
}

// NewStateRepository creates a repository bound to db.
func NewStateRepository(db bun.IDB) *Impl {
	return &Impl{db: db}
}

// resolveDB returns the provided handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Get returns the snapshot for name.
func (r *Impl) Get(ctx context.Context, db bun.IDB, name string) (*StateRecord, error) {
	db = r.resolveDB(db)
	rec := new(StateRecord)
	err := db.NewSelect().
		Model(rec).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get state record %s: %w", name, err)
	}
	return rec, nil
}

// Put replaces the snapshot for name.
func (r *Impl) Put(ctx context.Context, db bun.IDB, name string, value []byte) error {
	db = r.resolveDB(db)
	rec := &StateRecord{
		Name:      name,
		Value:     string(value),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := db.NewInsert().
		Model(rec).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersistence, name, err)
	}
	return nil
}

// LoadJSON decodes store name into v. found is false when the store is empty.
func LoadJSON(ctx context.Context, repo StateRepository, db bun.IDB, name string, v any) (found bool, err error) {
	rec, err := repo.Get(ctx, db, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(rec.Value), v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it as store name.
func SaveJSON(ctx context.Context, repo StateRepository, db bun.IDB, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrPersistence, name, err)
	}
	return repo.Put(ctx, db, name, payload)
}
