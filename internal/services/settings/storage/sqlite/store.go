package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/scarglamour/ShadowSprite/internal/platform/storage/sqlitemigrate"
	"github.com/scarglamour/ShadowSprite/internal/services/settings/storage"
	"github.com/scarglamour/ShadowSprite/internal/services/settings/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for edition preferences.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a settings SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
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

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

var getEditionSQL = map[storage.Scope]string{
	storage.ScopeUser: `SELECT edition, created_at, updated_at FROM user_settings WHERE user_id = ?`,
	storage.ScopeChat: `SELECT edition, created_at, updated_at FROM chat_settings WHERE chat_id = ?`,
}

var putEditionSQL = map[storage.Scope]string{
	storage.ScopeUser: `
INSERT INTO user_settings (user_id, edition, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	edition = excluded.edition,
	updated_at = excluded.updated_at
`,
	storage.ScopeChat: `
INSERT INTO chat_settings (chat_id, edition, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(chat_id) DO UPDATE SET
	edition = excluded.edition,
	updated_at = excluded.updated_at
`,
}

// GetEdition loads one owner's edition preference.
func (s *Store) GetEdition(ctx context.Context, scope storage.Scope, ownerID string) (storage.EditionRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.EditionRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.EditionRecord{}, fmt.Errorf("storage is not configured")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return storage.EditionRecord{}, fmt.Errorf("owner id is required")
	}
	query, ok := getEditionSQL[scope]
	if !ok {
		return storage.EditionRecord{}, fmt.Errorf("unknown settings scope %q", scope)
	}

	record := storage.EditionRecord{Scope: scope, OwnerID: ownerID}
	var createdAt int64
	var updatedAt int64
	row := s.sqlDB.QueryRowContext(ctx, query, ownerID)
	if err := row.Scan(&record.Edition, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.EditionRecord{}, storage.ErrNotFound
		}
		return storage.EditionRecord{}, fmt.Errorf("get edition: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// PutEdition upserts one owner's edition preference. The stored created_at
// survives upserts of an existing row.
func (s *Store) PutEdition(ctx context.Context, record storage.EditionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeEditionRecord(record)
	if err != nil {
		return err
	}
	query, ok := putEditionSQL[normalized.Scope]
	if !ok {
		return fmt.Errorf("unknown settings scope %q", normalized.Scope)
	}

	if _, err := s.sqlDB.ExecContext(ctx, query,
		normalized.OwnerID,
		normalized.Edition,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	); err != nil {
		return fmt.Errorf("put edition: %w", err)
	}
	return nil
}

func normalizeEditionRecord(record storage.EditionRecord) (storage.EditionRecord, error) {
	record.OwnerID = strings.TrimSpace(record.OwnerID)
	record.Edition = strings.TrimSpace(record.Edition)
	if record.OwnerID == "" {
		return storage.EditionRecord{}, fmt.Errorf("owner id is required")
	}
	if record.Edition == "" {
		return storage.EditionRecord{}, fmt.Errorf("edition is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.EditionRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.EditionRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}
