package shared

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// ErrNoMigrations is returned when a rollback finds nothing applied.
var ErrNoMigrations = errors.New("no migrations applied")

// Migration is one versioned schema change, read from sql/<version>_<name>_{up,down}.sql.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Migrator applies and reverts the embedded ledger migrations, tracking them in schema_migrations.
type Migrator struct {
	db         *sql.DB
	logger     *log.Logger
	migrations []Migration
}

// NewMigrator loads the embedded migrations for db. A nil logger discards output.
func NewMigrator(db *sql.DB, logger *log.Logger) (*Migrator, error) {
	if logger == nil {
		logger = NewLogger(io.Discard)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	return &Migrator{db: db, logger: logger, migrations: migrations}, nil
}

// RunMigrations applies every pending migration to db without logging.
func RunMigrations(db *sql.DB) error {
	m, err := NewMigrator(db, nil)
	if err != nil {
		return err
	}
	_, err = m.Up()
	return err
}

// Up applies pending migrations in version order and returns the versions it applied.
func (m *Migrator) Up() ([]int, error) {
	applied, err := m.appliedVersions()
	if err != nil {
		return nil, err
	}

	var done []int
	for _, mig := range m.migrations {
		if applied[mig.Version] {
			continue
		}
		if err := m.exec(mig.Up, "INSERT INTO schema_migrations (version) VALUES (?)", mig.Version); err != nil {
			return done, fmt.Errorf("failed to apply migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		m.logger.Info("applied migration", "version", mig.Version, "name", mig.Name)
		done = append(done, mig.Version)
	}
	return done, nil
}

// Down reverts the most recently applied migration and returns it.
func (m *Migrator) Down() (Migration, error) {
	current, ok, err := m.Version()
	if err != nil {
		return Migration{}, err
	}
	if !ok {
		return Migration{}, ErrNoMigrations
	}

	for _, mig := range m.migrations {
		if mig.Version != current {
			continue
		}
		if err := m.exec(mig.Down, "DELETE FROM schema_migrations WHERE version = ?", mig.Version); err != nil {
			return Migration{}, fmt.Errorf("failed to roll back migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		m.logger.Info("rolled back migration", "version", mig.Version, "name", mig.Name)
		return mig, nil
	}
	return Migration{}, fmt.Errorf("applied migration %d has no embedded file", current)
}

// Version returns the highest applied version. ok is false when nothing is applied.
func (m *Migrator) Version() (version int, ok bool, err error) {
	var v sql.NullInt64
	if err := m.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), v.Valid, nil
}

func (m *Migrator) appliedVersions() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// exec runs script and the bookkeeping statement in one transaction.
func (m *Migrator) exec(script, record string, version int) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(script) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%w\nStatement: %s", err, stmt)
		}
	}
	if _, err := tx.Exec(record, version); err != nil {
		return err
	}
	return tx.Commit()
}

func loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := map[int]*Migration{}
	for _, entry := range entries {
		file := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(file, ".sql") {
			continue
		}

		stem := strings.TrimSuffix(file, ".sql")
		var direction string
		switch {
		case strings.HasSuffix(stem, "_up"):
			direction, stem = "up", strings.TrimSuffix(stem, "_up")
		case strings.HasSuffix(stem, "_down"):
			direction, stem = "down", strings.TrimSuffix(stem, "_down")
		default:
			continue
		}

		prefix, name, _ := strings.Cut(stem, "_")
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}

		content, err := migrationFiles.ReadFile(path.Join("sql", file))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		mig := byVersion[version]
		if mig == nil {
			mig = &Migration{Version: version, Name: name}
			byVersion[version] = mig
		}
		if direction == "up" {
			mig.Up = string(content)
		} else {
			mig.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if mig.Up == "" || mig.Down == "" {
			return nil, fmt.Errorf("incomplete migration for version %d", mig.Version)
		}
		migrations = append(migrations, *mig)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// splitStatements drops "--" comments and splits script on semicolons.
func splitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	var stmts []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
