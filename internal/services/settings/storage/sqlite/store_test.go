package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/scarglamour/ShadowSprite/internal/services/settings/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestGetEditionMissingOwner(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	if _, err := store.GetEdition(context.Background(), storage.ScopeUser, "user-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get edition error = %v, want ErrNotFound", err)
	}
}

func TestPutAndGetEditionPerScope(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)

	records := []storage.EditionRecord{
		{Scope: storage.ScopeUser, OwnerID: "user-1", Edition: "SR4", CreatedAt: now, UpdatedAt: now},
		{Scope: storage.ScopeChat, OwnerID: "chat-1", Edition: "SR6", CreatedAt: now, UpdatedAt: now},
	}
	for _, record := range records {
		if err := store.PutEdition(context.Background(), record); err != nil {
			t.Fatalf("put edition %s/%s: %v", record.Scope, record.OwnerID, err)
		}
	}

	user, err := store.GetEdition(context.Background(), storage.ScopeUser, "user-1")
	if err != nil {
		t.Fatalf("get user edition: %v", err)
	}
	if user.Edition != "SR4" {
		t.Fatalf("user edition = %q, want SR4", user.Edition)
	}
	if !user.CreatedAt.Equal(now) || !user.UpdatedAt.Equal(now) {
		t.Fatalf("user timestamps = %v/%v, want %v", user.CreatedAt, user.UpdatedAt, now)
	}

	chat, err := store.GetEdition(context.Background(), storage.ScopeChat, "chat-1")
	if err != nil {
		t.Fatalf("get chat edition: %v", err)
	}
	if chat.Edition != "SR6" {
		t.Fatalf("chat edition = %q, want SR6", chat.Edition)
	}

	// Scopes must not leak into each other even when owner keys collide.
	if _, err := store.GetEdition(context.Background(), storage.ScopeChat, "user-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("cross-scope get error = %v, want ErrNotFound", err)
	}
}

func TestPutEditionUpsertKeepsCreatedAt(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	created := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	updated := created.Add(48 * time.Hour)

	first := storage.EditionRecord{
		Scope: storage.ScopeUser, OwnerID: "user-1", Edition: "SR5",
		CreatedAt: created, UpdatedAt: created,
	}
	if err := store.PutEdition(context.Background(), first); err != nil {
		t.Fatalf("put first edition: %v", err)
	}

	second := storage.EditionRecord{
		Scope: storage.ScopeUser, OwnerID: "user-1", Edition: "SR6",
		CreatedAt: updated, UpdatedAt: updated,
	}
	if err := store.PutEdition(context.Background(), second); err != nil {
		t.Fatalf("put second edition: %v", err)
	}

	got, err := store.GetEdition(context.Background(), storage.ScopeUser, "user-1")
	if err != nil {
		t.Fatalf("get edition: %v", err)
	}
	if got.Edition != "SR6" {
		t.Fatalf("edition = %q, want SR6", got.Edition)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at = %v, want original %v", got.CreatedAt, created)
	}
	if !got.UpdatedAt.Equal(updated) {
		t.Fatalf("updated_at = %v, want %v", got.UpdatedAt, updated)
	}
}

func TestPutEditionValidation(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record storage.EditionRecord
	}{
		{
			name:   "missing owner",
			record: storage.EditionRecord{Scope: storage.ScopeUser, Edition: "SR5", CreatedAt: now, UpdatedAt: now},
		},
		{
			name:   "missing edition",
			record: storage.EditionRecord{Scope: storage.ScopeUser, OwnerID: "user-1", CreatedAt: now, UpdatedAt: now},
		},
		{
			name:   "missing timestamps",
			record: storage.EditionRecord{Scope: storage.ScopeUser, OwnerID: "user-1", Edition: "SR5"},
		},
		{
			name:   "unknown scope",
			record: storage.EditionRecord{Scope: "guild", OwnerID: "g-1", Edition: "SR5", CreatedAt: now, UpdatedAt: now},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.PutEdition(context.Background(), tt.record); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "settings.db")
	store, err := Open(storePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Fatalf("close store: %v", closeErr)
		}
	})
	return store
}
