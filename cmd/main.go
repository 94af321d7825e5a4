package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/corray333/backend-labs/storefront/internal/app"
	"github.com/corray333/backend-labs/storefront/internal/config"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
)

func main() {
	cliApp := &cli.App{
		Name:  "storefront",
		Usage: "single-product checkout storefront",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the storefront API",
				Action: func(c *cli.Context) error {
					cfg := config.MustInit()

					return app.MustNewApp(c.Context, cfg).Run(c.Context)
				},
			},
			{
				Name:  "migrate",
				Usage: "apply or roll back database migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "down", Usage: "roll back the most recent migration"},
				},
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cliApp.Run(os.Args); err != nil {
		slog.Error("storefront exited with error", "error", err)
		os.Exit(1)
	}
}

func migrate(c *cli.Context) error {
	cfg := config.MustInit()
	if cfg.Storage.Driver != config.StoragePostgres {
		return fmt.Errorf("migrations need the postgres storage driver, got %q", cfg.Storage.Driver)
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := postgres.NewClient(ctx, cfg.Postgres.DSN())
	if err != nil {
		return err
	}
	defer client.Close()

	if c.Bool("down") {
		return client.MigrateDown(ctx)
	}

	return client.Migrate(ctx)
}
