package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"

	gamemigrations "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/crownkeeper/config"
	"github.com/Black-And-White-Club/crownkeeper/internal/db/bundb"
)

func main() {
	cliApp := &cli.App{
		Name:  "bun",
		Usage: "manage the crownkeeper Postgres schema",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			newDBCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withMigrator opens the database named by the config and hands the game
// module migrator to fn.
func withMigrator(fn func(c *cli.Context, migrator *migrate.Migrator) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.LoadConfig(c.String("config"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		db, err := bundb.Open(c.Context, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(c, migrate.NewMigrator(db, gamemigrations.Migrations))
	}
}

// migrateRiver applies River's own schema in the given direction.
func migrateRiver(ctx context.Context, dsn string, direction rivermigrate.Direction) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	opts := &rivermigrate.MigrateOpts{}
	if direction == rivermigrate.DirectionDown {
		// One step back, never the whole River schema.
		opts.MaxSteps = 1
	}
	res, err := migrator.Migrate(ctx, direction, opts)
	if err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	for _, v := range res.Versions {
		fmt.Printf("River migration %s: version %d\n", direction, v.Version)
	}
	if len(res.Versions) == 0 {
		fmt.Println("No River migrations to run")
	}
	return nil
}

func newDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withMigrator(func(c *cli.Context, migrator *migrate.Migrator) error {
					fmt.Println("Initializing migrations for module: game")
					return migrator.Init(c.Context)
				}),
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "skip-river", Usage: "leave River's schema alone"},
				},
				Action: withMigrator(func(c *cli.Context, migrator *migrate.Migrator) error {
					if err := migrator.Lock(c.Context); err != nil {
						return err
					}
					defer migrator.Unlock(c.Context) //nolint:errcheck

					group, err := migrator.Migrate(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Println("No new migrations to run for module: game")
					} else {
						fmt.Printf("Migrated module: game to %s\n", group)
					}

					if c.Bool("skip-river") {
						return nil
					}
					cfg, err := config.LoadConfig(c.String("config"))
					if err != nil {
						return err
					}
					return migrateRiver(c.Context, cfg.Postgres.DSN, rivermigrate.DirectionUp)
				}),
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "river", Usage: "roll back one River schema version instead"},
				},
				Action: withMigrator(func(c *cli.Context, migrator *migrate.Migrator) error {
					if c.Bool("river") {
						cfg, err := config.LoadConfig(c.String("config"))
						if err != nil {
							return err
						}
						return migrateRiver(c.Context, cfg.Postgres.DSN, rivermigrate.DirectionDown)
					}

					group, err := migrator.Rollback(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Println("No groups to roll back for module: game")
					} else {
						fmt.Printf("Rolled back module: game to %s\n", group)
					}
					return nil
				}),
			},
			{
				Name:  "create_go",
				Usage: "create Go migration",
				Action: withMigrator(func(c *cli.Context, migrator *migrate.Migrator) error {
					name := strings.Join(c.Args().Slice(), "_")
					mf, err := migrator.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration for module game: %s (%s)\n", mf.Name, mf.Path)
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: withMigrator(func(c *cli.Context, migrator *migrate.Migrator) error {
					ms, err := migrator.MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					fmt.Println("Migrations for module: game")
					fmt.Printf("  %s\n", ms)
					fmt.Printf("  Applied: %s\n", ms.Applied())
					fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					return nil
				}),
			},
		},
	}
}
