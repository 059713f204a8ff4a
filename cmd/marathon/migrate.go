package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb/migrations"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func newMigrateCommand() *cli.Command {
	withMigrator := func(fn func(c *cli.Context, m *migrate.Migrator) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := bundb.Open(c.Context, cfg.Database.DSN, slog.Default())
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(c, migrate.NewMigrator(db, migrations.Migrations))
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrator) error {
					return m.Init(c.Context)
				}),
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrator) error {
					if err := m.Lock(c.Context); err != nil {
						return err
					}
					defer m.Unlock(c.Context) //nolint:errcheck

					group, err := m.Migrate(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Fprintln(c.App.Writer, "No new migrations to run")
						return nil
					}
					fmt.Fprintf(c.App.Writer, "Migrated to %s\n", group)
					return nil
				}),
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrator) error {
					if err := m.Lock(c.Context); err != nil {
						return err
					}
					defer m.Unlock(c.Context) //nolint:errcheck

					group, err := m.Rollback(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Fprintln(c.App.Writer, "No groups to roll back")
						return nil
					}
					fmt.Fprintf(c.App.Writer, "Rolled back %s\n", group)
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrator) error {
					ms, err := m.MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Migrations: %s\n", ms)
					fmt.Fprintf(c.App.Writer, "Applied: %s\n", strings.TrimSpace(ms.Applied().String()))
					fmt.Fprintf(c.App.Writer, "Unapplied: %s\n", strings.TrimSpace(ms.Unapplied().String()))
					return nil
				}),
			},
		},
	}
}
