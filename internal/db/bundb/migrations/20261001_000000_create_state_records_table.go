package migrations

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating state_records table...")
		_, err := db.NewCreateTable().Model((*bundb.StateRecord)(nil)).IfNotExists().Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create state_records table: %w", err)
		}
		fmt.Println("state_records table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping state_records table...")
		_, err := db.NewDropTable().Model((*bundb.StateRecord)(nil)).IfExists().Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop state_records table: %w", err)
		}
		return nil
	})
}
