// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/openride/openride/cmd/app/commands"
)

var version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "openride",
		Usage:   "Ride-hailing identity and session service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "down",
						Value: false,
						Usage: "Roll back the most recent migration instead of applying pending ones",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations(cmd.Bool("down"))
				},
			},
			{
				Name:  "clean-revoked-tokens",
				Usage: "Remove revocation list entries for session tokens past their natural expiry",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Value: false,
						Usage: "Report how many entries would be removed without removing them",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format (text or json)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCleanRevokedTokens(ctx, cmd.Bool("dry-run"), cmd.String("format"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
