package postgres

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const migrationsGlob = "sql/migrations/*.sql"

var (
	//go:embed sql/migrations/*.sql
	migrationsFS embed.FS

	migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_]+)\.(up|down)\.sql$`)
)

type migrationDirection string

const (
	migrationUp   migrationDirection = "up"
	migrationDown migrationDirection = "down"
)

// migration — пара up/down скриптов одной версии схемы.
type migration struct {
	Version int64
	Name    string
	UpSQL   string
	DownSQL string
}

func (m migration) String() string {
	return fmt.Sprintf("%04d_%s", m.Version, m.Name)
}

type migrationFile struct {
	version   int64
	name      string
	direction migrationDirection
}

func parseMigrationFile(base string) (migrationFile, error) {
	matches := migrationFilePattern.FindStringSubmatch(base)
	if len(matches) != 4 {
		return migrationFile{}, fmt.Errorf("invalid migration file name: %s", base)
	}
	version, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return migrationFile{}, fmt.Errorf("parse migration version from %s: %w", base, err)
	}
	return migrationFile{
		version:   version,
		name:      matches[2],
		direction: migrationDirection(matches[3]),
	}, nil
}

// loadMigrationsFromFS читает миграции и проверяет, что у каждой версии есть оба направления.
func loadMigrationsFromFS(fsys fs.FS) ([]migration, error) {
	files, err := fs.Glob(fsys, migrationsGlob)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no migration files found")
	}

	byVersion := make(map[int64]*migration)
	for _, file := range files {
		base := path.Base(file)
		parsed, err := parseMigrationFile(base)
		if err != nil {
			return nil, err
		}

		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", file, err)
		}
		body := strings.TrimSpace(string(raw))
		if body == "" {
			return nil, fmt.Errorf("migration file is empty: %s", base)
		}

		m, ok := byVersion[parsed.version]
		if !ok {
			m = &migration{Version: parsed.version, Name: parsed.name}
			byVersion[parsed.version] = m
		} else if m.Name != parsed.name {
			return nil, fmt.Errorf("migration name mismatch for version %d: %s vs %s", parsed.version, m.Name, parsed.name)
		}

		target := &m.UpSQL
		if parsed.direction == migrationDown {
			target = &m.DownSQL
		}
		if *target != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %d", parsed.direction, parsed.version)
		}
		*target = body
	}

	result := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" || m.DownSQL == "" {
			return nil, fmt.Errorf("migration %s must have both up and down files", m)
		}
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })

	return result, nil
}
