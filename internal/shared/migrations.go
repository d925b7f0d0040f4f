package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Migration is one schema step, read from a pair of NNNN_name_up.sql / NNNN_name_down.sql files.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// parseMigrationName splits "0001_create_playlists_up.sql" into 1, "create_playlists" and "up".
func parseMigrationName(file string) (version int, name, direction string, ok bool) {
	base, found := strings.CutSuffix(file, ".sql")
	if !found {
		return 0, "", "", false
	}
	num, rest, found := strings.Cut(base, "_")
	if !found {
		return 0, "", "", false
	}
	version, err := strconv.Atoi(num)
	if err != nil || version <= 0 {
		return 0, "", "", false
	}

	i := strings.LastIndex(rest, "_")
	if i <= 0 {
		return 0, "", "", false
	}
	name, direction = rest[:i], rest[i+1:]
	if direction != "up" && direction != "down" {
		return 0, "", "", false
	}
	return version, name, direction, true
}

// loadMigrations returns the embedded migrations ordered by version.
//
// Versions must be contiguous from 1 and every version needs both directions.
func loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := map[int]*Migration{}
	for _, entry := range entries {
		version, name, direction, ok := parseMigrationName(entry.Name())
		if !ok {
			continue
		}
		content, err := migrationFiles.ReadFile("sql/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		m, exists := byVersion[version]
		if !exists {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if direction == "up" {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		migrations = append(migrations, *m)
	}
	slices.SortFunc(migrations, func(a, b Migration) int { return a.Version - b.Version })

	for i, m := range migrations {
		if m.Version != i+1 {
			return nil, fmt.Errorf("%w: migration %d is missing", ErrInvalidConfig, i+1)
		}
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("%w: migration %d (%s) needs up and down files", ErrInvalidConfig, m.Version, m.Name)
		}
	}
	return migrations, nil
}

// SchemaVersion returns the version of the last applied migration, stored in SQLite's user_version.
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// RunMigrations applies every migration newer than the schema version, each in its own transaction.
func RunMigrations(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("%w: database schema %d is newer than this build (%d)", ErrInvalidConfig, current, len(migrations))
	}

	for _, m := range migrations[current:] {
		if err := migrate(db, m.Up, m.Version); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// RollbackMigration reverts the most recently applied migration.
func RollbackMigration(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current == 0 {
		return fmt.Errorf("%w: no migrations to roll back", ErrInvalidArgument)
	}
	if current > len(migrations) {
		return fmt.Errorf("%w: migration %d is unknown", ErrInvalidConfig, current)
	}

	m := migrations[current-1]
	if err := migrate(db, m.Down, m.Version-1); err != nil {
		return fmt.Errorf("failed to roll back migration %d (%s): %w", m.Version, m.Name, err)
	}
	return nil
}

// migrate runs script and moves user_version to version atomically.
// The sqlite3 driver executes every statement of a multi-statement script.
func migrate(db *sql.DB, script string, version int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("PRAGMA user_version = " + strconv.Itoa(version)); err != nil {
		return err
	}
	return tx.Commit()
}
