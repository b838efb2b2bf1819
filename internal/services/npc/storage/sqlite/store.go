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
	"github.com/scarglamour/ShadowSprite/internal/services/npc/storage"
	"github.com/scarglamour/ShadowSprite/internal/services/npc/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for the NPC registry.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens an NPC SQLite store at the provided path.
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

const npcColumns = `id, owner_user_id, owner_chat_id, name, alias, template, is_unique, shared,
edition, body, agility, reaction, strength, willpower, logic, intuition, charisma, essence,
initiative, initiative_dice, physical_monitor, stun_monitor, physical_limit, mental_limit,
social_limit, armor, augmentations, gear, abilities, other, created_at, updated_at`

// PutNPC upserts one registry row.
func (s *Store) PutNPC(ctx context.Context, record storage.NPCRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeNPCRecord(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO npcs (`+npcColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		owner_user_id = excluded.owner_user_id,
		owner_chat_id = excluded.owner_chat_id,
		name = excluded.name,
		alias = excluded.alias,
		template = excluded.template,
		is_unique = excluded.is_unique,
		shared = excluded.shared,
		edition = excluded.edition,
		body = excluded.body,
		agility = excluded.agility,
		reaction = excluded.reaction,
		strength = excluded.strength,
		willpower = excluded.willpower,
		logic = excluded.logic,
		intuition = excluded.intuition,
		charisma = excluded.charisma,
		essence = excluded.essence,
		initiative = excluded.initiative,
		initiative_dice = excluded.initiative_dice,
		physical_monitor = excluded.physical_monitor,
		stun_monitor = excluded.stun_monitor,
		physical_limit = excluded.physical_limit,
		mental_limit = excluded.mental_limit,
		social_limit = excluded.social_limit,
		armor = excluded.armor,
		augmentations = excluded.augmentations,
		gear = excluded.gear,
		abilities = excluded.abilities,
		other = excluded.other,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`,
		normalized.ID,
		normalized.OwnerUserID,
		normalized.OwnerChatID,
		normalized.Name,
		normalized.Alias,
		boolToInt(normalized.Template),
		boolToInt(normalized.Unique),
		boolToInt(normalized.Shared),
		normalized.Edition,
		normalized.Body,
		normalized.Agility,
		normalized.Reaction,
		normalized.Strength,
		normalized.Willpower,
		normalized.Logic,
		normalized.Intuition,
		normalized.Charisma,
		normalized.Essence,
		normalized.Initiative,
		normalized.InitiativeDice,
		normalized.PhysicalMonitor,
		normalized.StunMonitor,
		normalized.PhysicalLimit,
		normalized.MentalLimit,
		normalized.SocialLimit,
		normalized.Armor,
		normalized.Augmentations,
		normalized.Gear,
		normalized.Abilities,
		normalized.Other,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put npc: %w", err)
	}
	return nil
}

// GetNPCByID loads one registry row by identifier.
func (s *Store) GetNPCByID(ctx context.Context, id string) (storage.NPCRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.NPCRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.NPCRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.NPCRecord{}, fmt.Errorf("npc id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+npcColumns+` FROM npcs WHERE id = ?`, id)
	record, err := scanNPC(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NPCRecord{}, storage.ErrNotFound
		}
		return storage.NPCRecord{}, fmt.Errorf("get npc by id: %w", err)
	}
	return record, nil
}

// GetTemplateByAlias loads one template row by its alias.
func (s *Store) GetTemplateByAlias(ctx context.Context, alias string) (storage.NPCRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.NPCRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.NPCRecord{}, fmt.Errorf("storage is not configured")
	}
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return storage.NPCRecord{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+npcColumns+`
FROM npcs
WHERE alias = ? AND template = 1
`, alias)
	record, err := scanNPC(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NPCRecord{}, storage.ErrNotFound
		}
		return storage.NPCRecord{}, fmt.Errorf("get template by alias: %w", err)
	}
	return record, nil
}

// ListTemplates lists every template row ordered by name.
func (s *Store) ListTemplates(ctx context.Context) ([]storage.NPCRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+npcColumns+`
FROM npcs
WHERE template = 1
ORDER BY name ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var results []storage.NPCRecord
	for rows.Next() {
		record, scanErr := scanNPC(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan template row: %w", scanErr)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate template rows: %w", err)
	}
	return results, nil
}

type scanner func(dest ...any) error

func normalizeNPCRecord(record storage.NPCRecord) (storage.NPCRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.OwnerUserID = strings.TrimSpace(record.OwnerUserID)
	record.OwnerChatID = strings.TrimSpace(record.OwnerChatID)
	record.Name = strings.TrimSpace(record.Name)
	record.Alias = strings.TrimSpace(record.Alias)
	record.Edition = strings.TrimSpace(record.Edition)
	if record.ID == "" {
		return storage.NPCRecord{}, fmt.Errorf("npc id is required")
	}
	if record.OwnerUserID == "" {
		return storage.NPCRecord{}, fmt.Errorf("owner user id is required")
	}
	if record.Name == "" {
		return storage.NPCRecord{}, fmt.Errorf("npc name is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.NPCRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.NPCRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

func scanNPC(scan scanner) (storage.NPCRecord, error) {
	var record storage.NPCRecord
	var template int
	var unique int
	var shared int
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.OwnerUserID,
		&record.OwnerChatID,
		&record.Name,
		&record.Alias,
		&template,
		&unique,
		&shared,
		&record.Edition,
		&record.Body,
		&record.Agility,
		&record.Reaction,
		&record.Strength,
		&record.Willpower,
		&record.Logic,
		&record.Intuition,
		&record.Charisma,
		&record.Essence,
		&record.Initiative,
		&record.InitiativeDice,
		&record.PhysicalMonitor,
		&record.StunMonitor,
		&record.PhysicalLimit,
		&record.MentalLimit,
		&record.SocialLimit,
		&record.Armor,
		&record.Augmentations,
		&record.Gear,
		&record.Abilities,
		&record.Other,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.NPCRecord{}, err
	}
	record.Template = template != 0
	record.Unique = unique != 0
	record.Shared = shared != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}
