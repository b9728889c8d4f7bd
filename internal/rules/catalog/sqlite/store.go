// Package sqlite provides the SQLite-backed monster catalog store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/moderncanvas/dmsecretweapon-backend/internal/platform/storage/sqlitemigrate"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/rules/catalog"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/rules/catalog/sqlite/migrations"
)

// Store provides SQLite-backed read access to monster reference data.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (and seeds, on first run) a catalog store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetMonster retrieves a monster by its index.
func (s *Store) GetMonster(ctx context.Context, index string) (catalog.Monster, error) {
	index = strings.TrimSpace(index)
	if index == "" {
		return catalog.Monster{}, catalog.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT monster_index, name, hit_points, armor_class, challenge_rating
FROM monsters
WHERE monster_index = ?`, index)

	var monster catalog.Monster
	err := row.Scan(
		&monster.Index,
		&monster.Name,
		&monster.HitPoints,
		&monster.ArmorClass,
		&monster.ChallengeRating,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Monster{}, catalog.ErrNotFound
		}
		return catalog.Monster{}, fmt.Errorf("scan monster %s: %w", index, err)
	}
	return monster, nil
}

// ListMonsters returns all catalog entries ordered by index.
func (s *Store) ListMonsters(ctx context.Context) ([]catalog.Monster, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT monster_index, name, hit_points, armor_class, challenge_rating
FROM monsters
ORDER BY monster_index`)
	if err != nil {
		return nil, fmt.Errorf("query monsters: %w", err)
	}
	defer rows.Close()

	var monsters []catalog.Monster
	for rows.Next() {
		var monster catalog.Monster
		if err := rows.Scan(
			&monster.Index,
			&monster.Name,
			&monster.HitPoints,
			&monster.ArmorClass,
			&monster.ChallengeRating,
		); err != nil {
			return nil, fmt.Errorf("scan monster row: %w", err)
		}
		monsters = append(monsters, monster)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monster rows: %w", err)
	}
	return monsters, nil
}
