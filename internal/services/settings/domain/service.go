// Package domain implements per-user and per-chat edition preferences.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scarglamour/ShadowSprite/internal/core/dice"
	"github.com/scarglamour/ShadowSprite/internal/services/settings/storage"
)

// DefaultEdition seeds owners that have no stored preference yet.
const DefaultEdition = dice.EditionSR5

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("settings store is not configured")
	// ErrOwnerIDRequired indicates a missing user or chat identifier.
	ErrOwnerIDRequired = errors.New("owner id is required")
	// ErrUnknownEdition indicates an edition outside SR4, SR5 and SR6.
	ErrUnknownEdition = errors.New("unknown edition")
)

// Scope aliases the storage owner class for callers of this service.
type Scope = storage.Scope

const (
	// ScopeUser keys preferences by platform user ID.
	ScopeUser = storage.ScopeUser
	// ScopeChat keys preferences by chat or guild ID.
	ScopeChat = storage.ScopeChat
)

// Store is the persistence boundary for edition preferences.
type Store interface {
	GetEdition(ctx context.Context, scope storage.Scope, ownerID string) (storage.EditionRecord, error)
	PutEdition(ctx context.Context, record storage.EditionRecord) error
}

// Service reads and writes edition preferences for roll commands.
type Service struct {
	store Store
	clock func() time.Time
}

// NewService wires the settings service. A nil clock uses time.Now.
func NewService(store Store, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{store: store, clock: clock}
}

func (s *Service) nowUTC() time.Time {
	return s.clock().UTC()
}

// Edition returns the stored edition for one owner. Owners without a
// stored preference are initialized to DefaultEdition first.
func (s *Service) Edition(ctx context.Context, scope Scope, ownerID string) (dice.Edition, error) {
	if s == nil || s.store == nil {
		return "", ErrStoreNotConfigured
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return "", ErrOwnerIDRequired
	}

	record, err := s.store.GetEdition(ctx, scope, ownerID)
	if err == nil {
		return dice.Edition(record.Edition), nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	now := s.nowUTC()
	record = storage.EditionRecord{
		Scope:     scope,
		OwnerID:   ownerID,
		Edition:   string(DefaultEdition),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.PutEdition(ctx, record); err != nil {
		return "", err
	}
	return DefaultEdition, nil
}

// SetEdition stores one owner's edition preference.
func (s *Service) SetEdition(ctx context.Context, scope Scope, ownerID string, edition dice.Edition) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ErrOwnerIDRequired
	}
	if !knownEdition(edition) {
		return ErrUnknownEdition
	}

	now := s.nowUTC()
	return s.store.PutEdition(ctx, storage.EditionRecord{
		Scope:     scope,
		OwnerID:   ownerID,
		Edition:   string(edition),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// ResolveEdition picks the preference owner for an incoming message: the
// user in private chats, the chat everywhere else.
func (s *Service) ResolveEdition(ctx context.Context, userID string, chatID string, private bool) (dice.Edition, error) {
	if private {
		return s.Edition(ctx, ScopeUser, userID)
	}
	return s.Edition(ctx, ScopeChat, chatID)
}

// ParseEdition normalizes raw user input to an edition. Bare digits 4, 5
// and 6 and the SR-prefixed forms are accepted, case-insensitively.
func ParseEdition(raw string) (dice.Edition, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch value {
	case "4", "5", "6":
		value = "SR" + value
	}
	edition := dice.Edition(value)
	if !knownEdition(edition) {
		return "", ErrUnknownEdition
	}
	return edition, nil
}

func knownEdition(edition dice.Edition) bool {
	switch edition {
	case dice.EditionSR4, dice.EditionSR5, dice.EditionSR6:
		return true
	}
	return false
}
