package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/openride/openride/internal/app"
	"github.com/openride/openride/internal/config"
	sessionUsecase "github.com/openride/openride/internal/session/usecase"
)

// RunCleanRevokedTokens removes revocation list entries whose tokens are past
// their natural expiry. Supports dry-run mode to preview the count and both
// text/JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanRevokedTokens(ctx context.Context, dryRun bool, format string) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get session use case from container
	sessions, err := container.SessionUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize session use case: %w", err)
	}

	return cleanRevokedTokens(ctx, sessions, logger, os.Stdout, dryRun, format)
}

// cleanRevokedTokens executes the cleanup and writes the result to out.
func cleanRevokedTokens(
	ctx context.Context,
	sessions sessionUsecase.SessionUseCase,
	logger *slog.Logger,
	out io.Writer,
	dryRun bool,
	format string,
) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	logger.Info("cleaning revoked tokens", slog.Bool("dry_run", dryRun))

	count, err := sessions.CleanupExpired(ctx, dryRun)
	if err != nil {
		return fmt.Errorf("failed to cleanup revoked tokens: %w", err)
	}

	if format == "json" {
		outputCleanRevokedJSON(out, count, dryRun)
	} else {
		outputCleanRevokedText(out, count, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputCleanRevokedText outputs the result in human-readable text format.
func outputCleanRevokedText(out io.Writer, count int64, dryRun bool) {
	if dryRun {
		fmt.Fprintf(out, "Dry-run mode: Would remove %d expired revocation entrie(s)\n", count)
	} else {
		fmt.Fprintf(out, "Successfully removed %d expired revocation entrie(s)\n", count)
	}
}

// outputCleanRevokedJSON outputs the result in JSON format for machine consumption.
func outputCleanRevokedJSON(out io.Writer, count int64, dryRun bool) {
	result := map[string]interface{}{
		"count":   count,
		"dry_run": dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
