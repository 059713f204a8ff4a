package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Black-And-White-Club/marathon-manager/app"
	actionservice "github.com/Black-And-White-Club/marathon-manager/app/modules/action/application"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/observability"
	"github.com/Black-And-White-Club/marathon-manager/pkg/jwt"
	"github.com/urfave/cli/v2"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the control API",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			obs, err := observability.New(observability.Config{
				LogFormat: cfg.Observability.LogFormat,
				LogLevel:  cfg.Observability.LogLevel,
			})
			if err != nil {
				return err
			}

			application, err := app.New(c.Context, cfg, obs)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer application.Close()

			if err := application.Run(c.Context); err != nil {
				return err
			}
			return application.Serve(c.Context)
		},
	}
}

func newRenderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "render a template against a run",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Required: true},
			&cli.StringFlag{Name: "event", Required: true},
			&cli.StringFlag{Name: "run", Required: true},
			&cli.IntFlag{Name: "max", Usage: "wrap lines at this many characters"},
		},
		Action: func(c *cli.Context) error {
			application, err := openApp(c)
			if err != nil {
				return err
			}
			defer application.Close()

			text, err := application.ActionModule.ActionService.Render(c.Context, c.String("event"), c.String("run"), c.String("template"), c.Int("max"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, text)
			return nil
		},
	}
}

func newSendCommand() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "trigger an action button for a run",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "button", Required: true},
			&cli.StringFlag{Name: "event", Required: true},
			&cli.StringFlag{Name: "run", Required: true},
			&cli.BoolFlag{Name: "confirm", Usage: "confirm buttons that require it"},
		},
		Action: func(c *cli.Context) error {
			application, err := openApp(c)
			if err != nil {
				return err
			}
			defer application.Close()

			if application.SettingsModule.SettingsService.OBS().Address != "" {
				if err := application.BroadcastModule.Manager.Connect(c.Context); err != nil {
					fmt.Fprintf(c.App.ErrWriter, "OBS unavailable: %v\n", err)
				}
			}

			report, err := application.ActionModule.ActionService.Trigger(c.Context, actionservice.TriggerRequest{
				ButtonID:  c.String("button"),
				EventID:   c.String("event"),
				RunID:     c.String("run"),
				Confirmed: c.Bool("confirm"),
			})
			if err != nil {
				return err
			}
			for _, o := range report.Outcomes {
				fmt.Fprintln(c.App.Writer, o.Message())
			}
			if report.Failed() > 0 {
				return cli.Exit(report.Err(), 2)
			}
			return nil
		},
	}
}

func newImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "append runs from a CSV or XLSX schedule to an event",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "event", Required: true},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("schedule file is required")
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			application, err := openApp(c)
			if err != nil {
				return err
			}
			defer application.Close()

			runs, err := application.ScheduleModule.ScheduleService.ImportRuns(c.Context, c.String("event"), filepath.Base(path), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Imported %d runs\n", len(runs))
			return nil
		},
	}
}

func newTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue a control API operator token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Required: true},
			&cli.StringFlag{Name: "role", Value: string(jwt.RoleOperator), Usage: "operator or viewer"},
			&cli.DurationFlag{Name: "ttl", Usage: "token lifetime (default from config)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("jwt secret is not configured")
			}

			role := jwt.Role(c.String("role"))
			if role != jwt.RoleOperator && role != jwt.RoleViewer {
				return fmt.Errorf("unknown role %q", role)
			}

			token, err := jwt.NewService(cfg.JWT.Secret, cfg.JWT.DefaultTTL).GenerateToken(c.String("subject"), role, c.Duration("ttl"))
			if err != nil {
				return err
			}
			return json.NewEncoder(c.App.Writer).Encode(map[string]string{
				"token":     token,
				"expiresIn": ttlOr(c.Duration("ttl"), cfg.JWT.DefaultTTL).String(),
			})
		},
	}
}

func ttlOr(ttl, fallback time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return fallback
}
