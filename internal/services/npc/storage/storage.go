package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested NPC or template row is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// StatBlock carries the Shadowrun attributes a template donates to its clones.
type StatBlock struct {
	Edition         string
	Body            int
	Agility         int
	Reaction        int
	Strength        int
	Willpower       int
	Logic           int
	Intuition       int
	Charisma        int
	Essence         float64
	Initiative      int
	InitiativeDice  int
	PhysicalMonitor int
	StunMonitor     int
	PhysicalLimit   int
	MentalLimit     int
	SocialLimit     int
	Armor           int
	Augmentations   string
	Gear            string
	Abilities       string
	Other           string
}

// NPCRecord stores one NPC registry row.
type NPCRecord struct {
	ID          string
	OwnerUserID string
	// OwnerChatID is empty for NPCs created in private chats.
	OwnerChatID string
	Name        string
	Alias       string
	Template    bool
	Unique      bool
	Shared      bool
	StatBlock
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NPCStore persists the NPC registry.
type NPCStore interface {
	PutNPC(ctx context.Context, record NPCRecord) error
	GetNPCByID(ctx context.Context, id string) (NPCRecord, error)
	GetTemplateByAlias(ctx context.Context, alias string) (NPCRecord, error)
	ListTemplates(ctx context.Context) ([]NPCRecord, error)
}
