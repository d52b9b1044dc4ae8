package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrationsFromFS_Success(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0002_more.up.sql":   {Data: []byte("CREATE TABLE test_b (id INT);")},
		"sql/migrations/0002_more.down.sql": {Data: []byte("DROP TABLE IF EXISTS test_b;")},
		"sql/migrations/0001_init.up.sql":   {Data: []byte("CREATE TABLE test_a (id INT);")},
		"sql/migrations/0001_init.down.sql": {Data: []byte("DROP TABLE IF EXISTS test_a;")},
	}

	migrations, err := loadMigrationsFromFS(fsys)
	if err != nil {
		t.Fatalf("loadMigrationsFromFS failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "init" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].String() != "0002_more" {
		t.Fatalf("unexpected second migration: %s", migrations[1])
	}
}

func TestLoadMigrationsFromFS_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fsys    fstest.MapFS
		wantErr string
	}{
		{
			name: "missing down",
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql": {Data: []byte("CREATE TABLE test_a (id INT);")},
			},
			wantErr: "both up and down",
		},
		{
			name: "invalid file name",
			fsys: fstest.MapFS{
				"sql/migrations/not_a_migration.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "invalid migration file name",
		},
		{
			name: "empty body",
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql":   {Data: []byte("   \n")},
				"sql/migrations/0001_init.down.sql": {Data: []byte("DROP TABLE IF EXISTS test;")},
			},
			wantErr: "empty",
		},
		{
			name: "name mismatch",
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql":    {Data: []byte("SELECT 1;")},
				"sql/migrations/0001_other.down.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "name mismatch",
		},
		{
			name:    "no files",
			fsys:    fstest.MapFS{},
			wantErr: "no migration files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadMigrationsFromFS(tt.fsys)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}
	if len(migrations) != 5 {
		t.Fatalf("expected 5 embedded migrations, got %d", len(migrations))
	}
	for i, m := range migrations {
		if m.Version != int64(i+1) {
			t.Fatalf("expected contiguous versions, got %s at %d", m, i)
		}
	}
}

func TestPlanMigrations(t *testing.T) {
	t.Parallel()

	migrations := []migration{
		{Version: 1, Name: "a"},
		{Version: 2, Name: "b"},
		{Version: 3, Name: "c"},
	}

	names := func(plan []migration) string {
		parts := make([]string, 0, len(plan))
		for _, m := range plan {
			parts = append(parts, m.Name)
		}
		return strings.Join(parts, ",")
	}

	plan, err := planMigrations(migrations, map[int64]bool{1: true}, migrationUp, 0)
	if err != nil || names(plan) != "b,c" {
		t.Fatalf("up all = %q, %v", names(plan), err)
	}

	plan, err = planMigrations(migrations, map[int64]bool{}, migrationUp, 1)
	if err != nil || names(plan) != "a" {
		t.Fatalf("up one = %q, %v", names(plan), err)
	}

	plan, err = planMigrations(migrations, map[int64]bool{1: true, 2: true}, migrationDown, 5)
	if err != nil || names(plan) != "b,a" {
		t.Fatalf("down = %q, %v", names(plan), err)
	}

	if _, err := planMigrations(migrations, map[int64]bool{9: true}, migrationDown, 1); err == nil {
		t.Fatal("expected error for unknown applied version")
	}
	if _, err := planMigrations(migrations, nil, migrationDirection("sideways"), 1); err == nil {
		t.Fatal("expected error for unsupported direction")
	}
}
