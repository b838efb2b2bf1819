package roller

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/scarglamour/ShadowSprite/internal/core/dice"
)

func TestRollCommand(t *testing.T) {
	t.Parallel()

	svc := NewService(fixedEdition(dice.EditionSR5), fixedSeed(42), 0)

	reply, err := svc.RollCommand(context.Background(), RollParams{
		UserID: "user-1",
		ChatID: "chat-1",
		Tokens: []string{"10", "5", "t2", "Sneaking", "in"},
	})
	if err != nil {
		t.Fatalf("roll command: %v", err)
	}
	if reply.Edition != dice.EditionSR5 {
		t.Fatalf("edition = %v, want SR5", reply.Edition)
	}
	if reply.Request.Pool != 10 || reply.Request.Limit == nil || *reply.Request.Limit != 5 {
		t.Fatalf("unexpected request: %+v", reply.Request)
	}
	if reply.Request.Comment != "Sneaking in" {
		t.Fatalf("comment = %q", reply.Request.Comment)
	}

	want, err := dice.RollSeeded(42, reply.Request, dice.EditionSR5)
	if err != nil {
		t.Fatalf("reference roll: %v", err)
	}
	if !reflect.DeepEqual(reply.Result, want) {
		t.Fatalf("result does not match seeded reference:\n%+v\n%+v", reply.Result, want)
	}
}

func TestRollCommandEditionFlowsIntoParsing(t *testing.T) {
	t.Parallel()

	svc := NewService(fixedEdition(dice.EditionSR4), fixedSeed(7), 0)

	reply, err := svc.RollCommand(context.Background(), RollParams{
		UserID: "user-1",
		Tokens: []string{"8", "average"},
	})
	if err != nil {
		t.Fatalf("roll command: %v", err)
	}
	if reply.Request.Threshold == nil || *reply.Request.Threshold != 2 {
		t.Fatalf("threshold = %v, want 2 via the SR4 keyword table", reply.Request.Threshold)
	}
}

func TestRollCommandUsageError(t *testing.T) {
	t.Parallel()

	svc := NewService(fixedEdition(dice.EditionSR5), fixedSeed(1), 0)

	for _, tokens := range [][]string{nil, {"e"}, {"ten"}} {
		_, err := svc.RollCommand(context.Background(), RollParams{UserID: "user-1", Tokens: tokens})
		if !errors.Is(err, ErrUsage) {
			t.Errorf("tokens %v error = %v, want ErrUsage", tokens, err)
		}
		if !errors.Is(err, dice.ErrMalformedArguments) {
			t.Errorf("tokens %v error should also match dice.ErrMalformedArguments, got %v", tokens, err)
		}
	}
}

func TestRollCommandDiceBounds(t *testing.T) {
	t.Parallel()

	svc := NewService(fixedEdition(dice.EditionSR5), fixedSeed(1), 0)

	for _, tokens := range [][]string{{"0"}, {"-5"}, {"100"}} {
		if _, err := svc.RollCommand(context.Background(), RollParams{UserID: "user-1", Tokens: tokens}); !errors.Is(err, ErrDiceCount) {
			t.Errorf("tokens %v error = %v, want ErrDiceCount", tokens, err)
		}
	}

	// The boundary pools themselves roll fine.
	for _, tokens := range [][]string{{"1"}, {"99"}} {
		if _, err := svc.RollCommand(context.Background(), RollParams{UserID: "user-1", Tokens: tokens}); err != nil {
			t.Errorf("tokens %v error = %v, want success", tokens, err)
		}
	}
}

func TestRollCommandTruncatesComment(t *testing.T) {
	t.Parallel()

	svc := NewService(fixedEdition(dice.EditionSR6), fixedSeed(1), 0)
	long := strings.Repeat("運", MaxCommentLength+10)

	reply, err := svc.RollCommand(context.Background(), RollParams{
		UserID: "user-1",
		Tokens: []string{"6", long},
	})
	if err != nil {
		t.Fatalf("roll command: %v", err)
	}
	if got := len([]rune(reply.Request.Comment)); got != MaxCommentLength {
		t.Fatalf("comment runes = %d, want %d", got, MaxCommentLength)
	}
}

func TestRollCommandResolverError(t *testing.T) {
	t.Parallel()

	resolverErr := errors.New("settings store down")
	svc := NewService(editionFunc(func(ctx context.Context, userID, chatID string, private bool) (dice.Edition, error) {
		return "", resolverErr
	}), fixedSeed(1), 0)

	if _, err := svc.RollCommand(context.Background(), RollParams{UserID: "user-1", Tokens: []string{"10"}}); !errors.Is(err, resolverErr) {
		t.Fatalf("roll command error = %v, want resolver error", err)
	}
}

func TestRollCommandRequiresResolver(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, fixedSeed(1), 0)
	if _, err := svc.RollCommand(context.Background(), RollParams{Tokens: []string{"10"}}); !errors.Is(err, ErrEditionsNotConfigured) {
		t.Fatalf("roll command error = %v, want ErrEditionsNotConfigured", err)
	}
}

type editionFunc func(ctx context.Context, userID string, chatID string, private bool) (dice.Edition, error)

func (f editionFunc) ResolveEdition(ctx context.Context, userID string, chatID string, private bool) (dice.Edition, error) {
	return f(ctx, userID, chatID, private)
}

func fixedEdition(edition dice.Edition) EditionResolver {
	return editionFunc(func(ctx context.Context, userID, chatID string, private bool) (dice.Edition, error) {
		return edition, nil
	})
}

func fixedSeed(seed int64) func() (int64, error) {
	return func() (int64, error) { return seed, nil }
}
