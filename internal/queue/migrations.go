package queue

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"
)

// The job table schema ships as versioned SQL files so that an existing
// queue database upgrades in place the next time a store opens it.
//
//go:embed migrations/*.sql
var schemaFS embed.FS

type schemaMigration struct {
	version string
	stmts   string
}

// orderedMigrations returns every embedded migration sorted by version.
// File names carry a zero-padded numeric prefix, so a lexical sort yields
// application order.
func orderedMigrations() ([]schemaMigration, error) {
	entries, err := schemaFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded schema dir: %w", err)
	}

	migrations := make([]schemaMigration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := schemaFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, schemaMigration{
			version: strings.TrimSuffix(entry.Name(), ".sql"),
			stmts:   string(data),
		})
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}

// migrate brings the job schema up to date, applying only versions the
// database has not yet recorded. All pending migrations commit as one
// transaction so a failure leaves the schema at its previous version.
func (s *Store) migrate(ctx context.Context) error {
	migrations, err := orderedMigrations()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var applied int
		row := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", m.version)
		if err := row.Scan(&applied); err != nil {
			return fmt.Errorf("check schema version %s: %w", m.version, err)
		}
		if applied > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.stmts); err != nil {
			return fmt.Errorf("apply schema version %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("record schema version %s: %w", m.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema migrations: %w", err)
	}
	return nil
}
