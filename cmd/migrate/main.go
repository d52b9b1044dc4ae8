package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/storage/postgres"
)

const (
	defaultTimeout = 30 * time.Second
	dsnEnv         = "COMMERCE_POSTGRES_DSN"
)

var errDSNRequired = errors.New(dsnEnv + " (or -dsn) is required")

// schemaMigrator — операции Store, которые нужны CLI.
type schemaMigrator interface {
	MigrateUp(ctx context.Context, steps int) error
	MigrateDown(ctx context.Context, steps int) error
	MigrationStatus(ctx context.Context) (postgres.MigrationState, error)
}

func main() {
	var (
		direction string
		steps     int
		dsn       string
	)

	flag.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: "+dsnEnv+")")
	flag.Parse()

	dsn, err := resolveDSN(dsn, os.LookupEnv)
	if err != nil {
		fail("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	if err := run(ctx, store, direction, steps, os.Stdout); err != nil {
		fail("%v", err)
	}
}

// resolveDSN берёт DSN из флага, а при его отсутствии из окружения.
func resolveDSN(flagValue string, lookup func(string) (string, bool)) (string, error) {
	if dsn := strings.TrimSpace(flagValue); dsn != "" {
		return dsn, nil
	}
	if raw, ok := lookup(dsnEnv); ok {
		if dsn := strings.TrimSpace(raw); dsn != "" {
			return dsn, nil
		}
	}
	return "", errDSNRequired
}

func run(ctx context.Context, store schemaMigrator, direction string, steps int, out io.Writer) error {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		return reportState(ctx, store, out, "migrate up ok", false)
	case "down":
		if err := store.MigrateDown(ctx, steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		return reportState(ctx, store, out, "migrate down ok", false)
	case "status":
		return reportState(ctx, store, out, "migration status", true)
	default:
		return fmt.Errorf("unsupported direction: %s (use up|down|status)", direction)
	}
}

func reportState(ctx context.Context, store schemaMigrator, out io.Writer, prefix string, listPending bool) error {
	state, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	printState(out, prefix, state, listPending)
	return nil
}

// printState печатает версию схемы, а для status ещё и имена непримененных миграций.
func printState(out io.Writer, prefix string, state postgres.MigrationState, listPending bool) {
	_, _ = fmt.Fprintf(out, "%s: version=%d applied=%d pending=%d\n", prefix, state.Version, state.Applied, len(state.Pending))
	if !listPending {
		return
	}
	for _, name := range state.Pending {
		_, _ = fmt.Fprintf(out, "  pending: %s\n", name)
	}
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
