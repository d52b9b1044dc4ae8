package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	migrationLockKey  = int64(20260318)
	migrationTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
)

// MigrationState описывает состояние схемы.
type MigrationState struct {
	// Version — последняя применённая версия, 0 для пустой схемы.
	Version int64
	// Applied — количество применённых миграций.
	Applied int
	// Pending — имена ещё не применённых миграций по возрастанию версии.
	Pending []string
}

// MigrateUp применяет up-миграции; steps=0 применяет все доступные.
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	return s.migrate(ctx, migrationUp, steps)
}

// MigrateDown откатывает миграции; steps<=0 откатывает одну.
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	return s.migrate(ctx, migrationDown, steps)
}

// MigrationStatus возвращает текущую версию схемы и список неприменённых миграций.
func (s *Store) MigrationStatus(ctx context.Context) (MigrationState, error) {
	if s == nil || s.db == nil {
		return MigrationState{}, errStoreNotInitialized
	}

	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		return MigrationState{}, err
	}

	queryCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(queryCtx, migrationTableDDL); err != nil {
		return MigrationState{}, fmt.Errorf("ensure migration table: %w", err)
	}

	applied, err := appliedVersions(queryCtx, s.db)
	if err != nil {
		return MigrationState{}, err
	}

	state := MigrationState{Applied: len(applied)}
	for version := range applied {
		if version > state.Version {
			state.Version = version
		}
	}
	for _, m := range migrations {
		if !applied[m.Version] {
			state.Pending = append(state.Pending, m.String())
		}
	}
	return state, nil
}

func (s *Store) migrate(ctx context.Context, direction migrationDirection, steps int) error {
	if s == nil || s.db == nil {
		return errStoreNotInitialized
	}

	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		return err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()

	lockCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if _, err := conn.ExecContext(lockCtx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockKey)
	}()

	if _, err := conn.ExecContext(ctx, migrationTableDDL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return err
	}

	plan, err := planMigrations(migrations, applied, direction, steps)
	if err != nil {
		return err
	}
	for _, m := range plan {
		if err := applyMigration(ctx, conn, m, direction); err != nil {
			return err
		}
	}
	return nil
}

// planMigrations выбирает миграции для применения: up по возрастанию версии, down по убыванию.
func planMigrations(migrations []migration, applied map[int64]bool, direction migrationDirection, steps int) ([]migration, error) {
	var plan []migration
	switch direction {
	case migrationUp:
		for _, m := range migrations {
			if applied[m.Version] {
				continue
			}
			plan = append(plan, m)
			if steps > 0 && len(plan) >= steps {
				break
			}
		}
	case migrationDown:
		known := make(map[int64]bool, len(migrations))
		for _, m := range migrations {
			known[m.Version] = true
		}
		for version := range applied {
			if !known[version] {
				return nil, fmt.Errorf("cannot rollback unknown migration version %d", version)
			}
		}
		for i := len(migrations) - 1; i >= 0; i-- {
			m := migrations[i]
			if !applied[m.Version] {
				continue
			}
			plan = append(plan, m)
			if len(plan) >= steps {
				break
			}
		}
	default:
		return nil, fmt.Errorf("unsupported migration direction: %s", direction)
	}
	return plan, nil
}

func applyMigration(ctx context.Context, conn *sql.Conn, m migration, direction migrationDirection) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx (%s %s): %w", direction, m, err)
	}

	body, record, args := m.UpSQL, `INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, NOW())`, []any{m.Version, m.Name}
	if direction == migrationDown {
		body, record, args = m.DownSQL, `DELETE FROM schema_migrations WHERE version = $1`, []any{m.Version}
	}

	if _, err := tx.ExecContext(ctx, body); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute %s migration %s: %w", direction, m, err)
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record %s migration %s: %w", direction, m, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s migration %s: %w", direction, m, err)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func appliedVersions(ctx context.Context, q queryer) (map[int64]bool, error) {
	rows, err := q.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]bool)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration version: %w", err)
		}
		result[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return result, nil
}
