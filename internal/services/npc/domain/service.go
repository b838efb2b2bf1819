// Package domain implements the templated NPC registry.
package domain

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/scarglamour/ShadowSprite/internal/platform/id"
	"github.com/scarglamour/ShadowSprite/internal/services/npc/storage"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("npc store is not configured")
	// ErrMissingName indicates an NPC creation request without a name.
	ErrMissingName = errors.New("npc name is required")
	// ErrTemplateNotFound indicates the requested template alias has no row.
	ErrTemplateNotFound = errors.New("npc template not found")
)

// NPC aliases the stored registry record for callers of this service.
type NPC = storage.NPCRecord

// StatBlock aliases the stored Shadowrun attribute block.
type StatBlock = storage.StatBlock

// CreateParams describes one NPC creation request.
type CreateParams struct {
	OwnerUserID string
	// OwnerChatID is empty for NPCs created in private chats.
	OwnerChatID string
	Name        string
	Alias       string
	// Template names the template alias whose stat block the new NPC clones.
	Template string
	Unique   bool
	Shared   bool
}

// Store is the persistence boundary for the NPC registry.
type Store interface {
	PutNPC(ctx context.Context, record storage.NPCRecord) error
	GetTemplateByAlias(ctx context.Context, alias string) (storage.NPCRecord, error)
	ListTemplates(ctx context.Context) ([]storage.NPCRecord, error)
}

// Service creates registry NPCs and lists the templates they clone from.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService wires the NPC service. A nil clock uses time.Now and a nil
// generator uses id.NewID.
func NewService(store Store, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{store: store, clock: clock, newID: newID}
}

// Create inserts one NPC, cloning the stat block of the named template
// when one is requested. The created NPC is never itself a template.
func (s *Service) Create(ctx context.Context, params CreateParams) (NPC, error) {
	if s == nil || s.store == nil {
		return NPC{}, ErrStoreNotConfigured
	}
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return NPC{}, ErrMissingName
	}

	var stats StatBlock
	if alias := strings.TrimSpace(params.Template); alias != "" {
		template, err := s.store.GetTemplateByAlias(ctx, alias)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return NPC{}, ErrTemplateNotFound
			}
			return NPC{}, err
		}
		stats = template.StatBlock
	}

	npcID, err := s.newID()
	if err != nil {
		return NPC{}, err
	}
	now := s.clock().UTC()
	record := NPC{
		ID:          npcID,
		OwnerUserID: strings.TrimSpace(params.OwnerUserID),
		OwnerChatID: strings.TrimSpace(params.OwnerChatID),
		Name:        params.Name,
		Alias:       strings.TrimSpace(params.Alias),
		Template:    false,
		Unique:      params.Unique,
		Shared:      params.Shared,
		StatBlock:   stats,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutNPC(ctx, record); err != nil {
		return NPC{}, err
	}
	return record, nil
}

// ListTemplates returns every template row.
func (s *Service) ListTemplates(ctx context.Context) ([]NPC, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.store.ListTemplates(ctx)
}

var (
	aliasArgPattern    = regexp.MustCompile(`-a\s+(\S+)`)
	templateArgPattern = regexp.MustCompile(`-t\s+(\S+)`)
	uniqueFlagPattern  = regexp.MustCompile(`(\s|^)-u(\s|$)`)
	sharedFlagPattern  = regexp.MustCompile(`(\s|^)-s(\s|$)`)
)

// ParseCreateArgs parses the free-text arguments of an NPC creation
// command: a multi-word name with optional "-a alias", "-t template",
// "-u" and "-s" anywhere in the text. Surrounding quotes on the name are
// trimmed. An empty name fails with ErrMissingName.
func ParseCreateArgs(text string) (CreateParams, error) {
	params := CreateParams{}

	if match := aliasArgPattern.FindStringSubmatchIndex(text); match != nil {
		params.Alias = text[match[2]:match[3]]
		text = text[:match[0]] + text[match[1]:]
	}
	if match := templateArgPattern.FindStringSubmatchIndex(text); match != nil {
		params.Template = text[match[2]:match[3]]
		text = text[:match[0]] + text[match[1]:]
	}
	if uniqueFlagPattern.MatchString(text) {
		params.Unique = true
		text = uniqueFlagPattern.ReplaceAllString(text, " ")
	}
	if sharedFlagPattern.MatchString(text) {
		params.Shared = true
		text = sharedFlagPattern.ReplaceAllString(text, " ")
	}

	name := strings.TrimSpace(text)
	name = strings.Trim(name, `"`)
	name = strings.Trim(name, "'")
	if name == "" {
		return CreateParams{}, ErrMissingName
	}
	params.Name = name
	return params, nil
}
