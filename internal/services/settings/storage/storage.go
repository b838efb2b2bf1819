package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no stored preference exists for the requested owner.
var ErrNotFound = errors.New("record not found")

// Scope identifies which owner class a preference row belongs to.
type Scope string

const (
	// ScopeUser keys preferences by platform user ID, used in private chats.
	ScopeUser Scope = "user"
	// ScopeChat keys preferences by chat or guild ID, used in group chats.
	ScopeChat Scope = "chat"
)

// EditionRecord stores one owner's ruleset edition preference.
type EditionRecord struct {
	Scope     Scope
	OwnerID   string
	Edition   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EditionStore persists edition preferences per owner.
type EditionStore interface {
	GetEdition(ctx context.Context, scope Scope, ownerID string) (EditionRecord, error)
	PutEdition(ctx context.Context, record EditionRecord) error
}
