// Package roller orchestrates edition lookup, argument parsing, seeding
// and rolling on behalf of the chat transports.
package roller

import (
	"context"
	"errors"
	"fmt"

	"github.com/scarglamour/ShadowSprite/internal/core/dice"
	"github.com/scarglamour/ShadowSprite/internal/platform/random"
)

const (
	// DefaultMaxDice bounds the dice pool accepted from chat commands.
	DefaultMaxDice = 99
	// MaxCommentLength bounds a roll comment, in runes. Longer comments
	// are truncated rather than rejected.
	MaxCommentLength = 50
)

var (
	// ErrEditionsNotConfigured indicates the service is missing settings wiring.
	ErrEditionsNotConfigured = errors.New("edition resolver is not configured")
	// ErrUsage indicates arguments that should surface the usage prompt.
	ErrUsage = errors.New("malformed roll command")
	// ErrDiceCount indicates a dice pool outside the accepted range.
	ErrDiceCount = errors.New("number of dice out of range")
)

// EditionResolver resolves the ruleset edition for an incoming message.
type EditionResolver interface {
	ResolveEdition(ctx context.Context, userID string, chatID string, private bool) (dice.Edition, error)
}

// RollParams identifies the caller and carries the raw command tokens.
type RollParams struct {
	UserID  string
	ChatID  string
	Private bool
	Tokens  []string
}

// RollReply carries everything a transport needs to render one roll.
type RollReply struct {
	Edition dice.Edition
	Request dice.Request
	Result  dice.Result
}

// Service executes roll commands for the chat transports.
type Service struct {
	editions EditionResolver
	seed     func() (int64, error)
	maxDice  int
}

// NewService wires the roller. A nil seed source uses random.NewSeed and
// a non-positive maxDice uses DefaultMaxDice.
func NewService(editions EditionResolver, seed func() (int64, error), maxDice int) *Service {
	if seed == nil {
		seed = random.NewSeed
	}
	if maxDice <= 0 {
		maxDice = DefaultMaxDice
	}
	return &Service{editions: editions, seed: seed, maxDice: maxDice}
}

// MaxDice returns the upper dice-pool bound enforced by RollCommand.
func (s *Service) MaxDice() int {
	return s.maxDice
}

// RollCommand resolves the caller's edition, parses the command tokens
// and rolls the pool.
//
// Malformed tokens fail with an error matching both ErrUsage and
// dice.ErrMalformedArguments. Pools outside [1, MaxDice] fail with
// ErrDiceCount.
func (s *Service) RollCommand(ctx context.Context, params RollParams) (RollReply, error) {
	if s == nil || s.editions == nil {
		return RollReply{}, ErrEditionsNotConfigured
	}

	edition, err := s.editions.ResolveEdition(ctx, params.UserID, params.ChatID, params.Private)
	if err != nil {
		return RollReply{}, err
	}

	request, err := dice.ParseArgs(params.Tokens, edition)
	if err != nil {
		if errors.Is(err, dice.ErrMalformedArguments) {
			return RollReply{}, fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return RollReply{}, err
	}
	if request.Pool < 1 || request.Pool > s.maxDice {
		return RollReply{}, ErrDiceCount
	}
	request.Comment = truncateComment(request.Comment)

	seed, err := s.seed()
	if err != nil {
		return RollReply{}, fmt.Errorf("draw roll seed: %w", err)
	}
	result, err := dice.RollSeeded(seed, request, edition)
	if err != nil {
		return RollReply{}, err
	}

	return RollReply{Edition: edition, Request: request, Result: result}, nil
}

func truncateComment(comment string) string {
	runes := []rune(comment)
	if len(runes) <= MaxCommentLength {
		return comment
	}
	return string(runes[:MaxCommentLength])
}
