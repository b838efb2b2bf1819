package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/scarglamour/ShadowSprite/internal/core/dice"
	"github.com/scarglamour/ShadowSprite/internal/platform/random"
	"github.com/scarglamour/ShadowSprite/internal/services/roller"
	settingsdomain "github.com/scarglamour/ShadowSprite/internal/services/settings/domain"
)

// RollDiceInput represents the MCP tool input for rolling a dice pool.
type RollDiceInput struct {
	Pool      int    `json:"pool" jsonschema:"number of six-sided dice in the pool"`
	Edge      bool   `json:"edge,omitempty" jsonschema:"reroll sixes into extra waves (Rule of Six)"`
	Limit     *int   `json:"limit,omitempty" jsonschema:"hit cap, only applied under SR5"`
	Threshold *int   `json:"threshold,omitempty" jsonschema:"hits required for success"`
	Edition   string `json:"edition,omitempty" jsonschema:"ruleset edition (SR4, SR5, SR6); defaults to SR5"`
	Seed      *int64 `json:"seed,omitempty" jsonschema:"optional seed for deterministic rolls"`
	Comment   string `json:"comment,omitempty" jsonschema:"free-form note echoed back with the result"`
}

// RollDiceResult represents the MCP tool output for rolling a dice pool.
type RollDiceResult struct {
	Edition   string  `json:"edition" jsonschema:"ruleset edition applied to the roll"`
	Pool      int     `json:"pool" jsonschema:"number of dice in the first wave"`
	Edge      bool    `json:"edge" jsonschema:"whether sixes exploded into extra waves"`
	Limit     *int    `json:"limit,omitempty" jsonschema:"hit cap applied to the roll"`
	Threshold *int    `json:"threshold,omitempty" jsonschema:"hits required for success"`
	Waves     [][]int `json:"waves" jsonschema:"face values drawn per reroll round"`
	RawHits   int     `json:"raw_hits" jsonschema:"hits before the limit cap"`
	Hits      int     `json:"hits" jsonschema:"hits after the limit cap"`
	NetHits   *int    `json:"net_hits,omitempty" jsonschema:"hits minus the threshold"`
	Outcome   string  `json:"outcome,omitempty" jsonschema:"success classification when a threshold was set"`
	Glitch    string  `json:"glitch" jsonschema:"glitch classification"`
	Comment   string  `json:"comment,omitempty" jsonschema:"caller comment echoed back"`
	Seed      int64   `json:"seed" jsonschema:"seed the roll was drawn from"`
}

// ParseRollInput represents the MCP tool input for parsing roll arguments.
type ParseRollInput struct {
	Args    string `json:"args" jsonschema:"roll arguments exactly as typed after the chat roll command"`
	Edition string `json:"edition,omitempty" jsonschema:"ruleset edition (SR4, SR5, SR6); defaults to SR5"`
}

// ParseRollResult represents the MCP tool output for parsing roll arguments.
type ParseRollResult struct {
	Edition   string `json:"edition" jsonschema:"ruleset edition applied while parsing"`
	Pool      int    `json:"pool" jsonschema:"number of dice requested"`
	Edge      bool   `json:"edge" jsonschema:"whether the pool carried the edge suffix"`
	Limit     *int   `json:"limit,omitempty" jsonschema:"parsed hit cap, SR5 only"`
	Threshold *int   `json:"threshold,omitempty" jsonschema:"parsed success threshold"`
	Comment   string `json:"comment,omitempty" jsonschema:"trailing tokens not consumed by the parser"`
}

// ThresholdTableInput represents the MCP tool input for difficulty keywords.
type ThresholdTableInput struct {
	Edition string `json:"edition,omitempty" jsonschema:"ruleset edition (SR4, SR5, SR6); defaults to SR5"`
}

// ThresholdKeywordEntry represents one difficulty keyword and its threshold.
type ThresholdKeywordEntry struct {
	Keyword   string `json:"keyword" jsonschema:"keyword accepted in roll commands"`
	Threshold int    `json:"threshold" jsonschema:"hits required for success"`
}

// ThresholdTableResult represents the MCP tool output for difficulty keywords.
type ThresholdTableResult struct {
	Edition  string                  `json:"edition" jsonschema:"ruleset edition the table belongs to"`
	Keywords []ThresholdKeywordEntry `json:"keywords" jsonschema:"difficulty keywords ordered by threshold"`
}

// RollDiceTool defines the MCP tool schema for rolling a dice pool.
func RollDiceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_dice",
		Description: "Rolls a Shadowrun dice pool and scores hits, outcome and glitches",
	}
}

// ParseRollTool defines the MCP tool schema for parsing roll arguments.
func ParseRollTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "parse_roll",
		Description: "Parses chat roll arguments into a structured request without rolling",
	}
}

// ThresholdTableTool defines the MCP tool schema for difficulty keywords.
func ThresholdTableTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "threshold_table",
		Description: "Lists the difficulty keywords an edition accepts in roll commands",
	}
}

// RollDiceHandler rolls a dice pool from structured input. The seed source
// feeds rolls without an explicit seed; nil falls back to random.NewSeed.
func RollDiceHandler(seed func() (int64, error)) mcp.ToolHandlerFor[RollDiceInput, RollDiceResult] {
	if seed == nil {
		seed = random.NewSeed
	}
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollDiceInput) (*mcp.CallToolResult, RollDiceResult, error) {
		edition, err := editionFromInput(input.Edition)
		if err != nil {
			return nil, RollDiceResult{}, err
		}
		if input.Pool < 1 || input.Pool > roller.DefaultMaxDice {
			return nil, RollDiceResult{}, fmt.Errorf("pool must be between 1 and %d", roller.DefaultMaxDice)
		}

		rollSeed := int64(0)
		if input.Seed != nil {
			rollSeed = *input.Seed
		} else {
			drawn, err := seed()
			if err != nil {
				return nil, RollDiceResult{}, fmt.Errorf("draw roll seed: %w", err)
			}
			rollSeed = drawn
		}

		request := dice.Request{
			Pool:      input.Pool,
			Edge:      input.Edge,
			Limit:     input.Limit,
			Threshold: input.Threshold,
			Comment:   input.Comment,
		}
		result, err := dice.RollSeeded(rollSeed, request, edition)
		if err != nil {
			return nil, RollDiceResult{}, fmt.Errorf("roll dice: %w", err)
		}

		output := RollDiceResult{
			Edition:   string(edition),
			Pool:      request.Pool,
			Edge:      request.Edge,
			Limit:     request.Limit,
			Threshold: request.Threshold,
			Waves:     result.Waves,
			RawHits:   result.RawHits,
			Hits:      result.Hits,
			NetHits:   result.NetHits,
			Glitch:    result.Glitch.String(),
			Comment:   request.Comment,
			Seed:      rollSeed,
		}
		if request.Threshold != nil {
			output.Outcome = result.Outcome.String()
		}
		return nil, output, nil
	}
}

// ParseRollHandler parses chat roll arguments without rolling.
func ParseRollHandler() mcp.ToolHandlerFor[ParseRollInput, ParseRollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ParseRollInput) (*mcp.CallToolResult, ParseRollResult, error) {
		edition, err := editionFromInput(input.Edition)
		if err != nil {
			return nil, ParseRollResult{}, err
		}
		request, err := dice.ParseArgs(strings.Fields(input.Args), edition)
		if err != nil {
			return nil, ParseRollResult{}, fmt.Errorf("parse roll arguments: %w", err)
		}
		return nil, ParseRollResult{
			Edition:   string(edition),
			Pool:      request.Pool,
			Edge:      request.Edge,
			Limit:     request.Limit,
			Threshold: request.Threshold,
			Comment:   request.Comment,
		}, nil
	}
}

// ThresholdTableHandler lists the difficulty keywords for an edition.
// SR6 dropped keyword difficulties, so its table is empty.
func ThresholdTableHandler() mcp.ToolHandlerFor[ThresholdTableInput, ThresholdTableResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ThresholdTableInput) (*mcp.CallToolResult, ThresholdTableResult, error) {
		edition, err := editionFromInput(input.Edition)
		if err != nil {
			return nil, ThresholdTableResult{}, err
		}
		table := dice.ThresholdKeywords(edition)
		keywords := make([]ThresholdKeywordEntry, 0, len(table))
		for keyword, threshold := range table {
			keywords = append(keywords, ThresholdKeywordEntry{Keyword: keyword, Threshold: threshold})
		}
		sort.Slice(keywords, func(i, j int) bool {
			if keywords[i].Threshold != keywords[j].Threshold {
				return keywords[i].Threshold < keywords[j].Threshold
			}
			return keywords[i].Keyword < keywords[j].Keyword
		})
		return nil, ThresholdTableResult{Edition: string(edition), Keywords: keywords}, nil
	}
}

// editionFromInput maps the optional edition argument to a ruleset,
// defaulting blank input to the same edition new chat users get.
func editionFromInput(raw string) (dice.Edition, error) {
	if strings.TrimSpace(raw) == "" {
		return settingsdomain.DefaultEdition, nil
	}
	edition, err := settingsdomain.ParseEdition(raw)
	if err != nil {
		return "", fmt.Errorf("parse edition %q: %w", raw, err)
	}
	return edition, nil
}
