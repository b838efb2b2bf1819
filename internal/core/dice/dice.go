// Package dice implements Shadowrun dice-pool rolling and scoring.
package dice

import "errors"

// Edition identifies the Shadowrun ruleset applied to a roll.
//
// Editions are supplied by the caller on every operation and never stored
// here. Unknown editions degrade gracefully: no keyword table, no limit
// consumption, no t-prefix stripping, and no SR4 critical-success rule.
type Edition string

const (
	// EditionSR4 is Shadowrun fourth edition.
	EditionSR4 Edition = "SR4"
	// EditionSR5 is Shadowrun fifth edition.
	EditionSR5 Edition = "SR5"
	// EditionSR6 is Shadowrun sixth edition.
	EditionSR6 Edition = "SR6"
)

// ErrMalformedArguments indicates roll arguments that cannot be parsed.
var ErrMalformedArguments = errors.New("roll arguments are malformed")

// ErrInvalidDicePool indicates a dice pool outside the rollable range.
var ErrInvalidDicePool = errors.New("dice pool must be positive")

// Outcome classifies a roll against its success threshold.
type Outcome int

const (
	OutcomeUnspecified Outcome = iota
	OutcomeFailure
	OutcomeSuccess
	OutcomeCriticalSuccess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnspecified:
		return "Unspecified"
	case OutcomeFailure:
		return "Failure"
	case OutcomeSuccess:
		return "Success"
	case OutcomeCriticalSuccess:
		return "Critical Success"
	default:
		return "Unknown"
	}
}

// Glitch classifies the ones-heavy complication of a roll.
type Glitch int

const (
	GlitchNone Glitch = iota
	GlitchNormal
	GlitchCritical
)

func (g Glitch) String() string {
	switch g {
	case GlitchNone:
		return "None"
	case GlitchNormal:
		return "Glitch"
	case GlitchCritical:
		return "Critical Glitch"
	default:
		return "Unknown"
	}
}

// Request describes one parsed roll command.
type Request struct {
	// Pool is the number of six-sided dice in the initial wave.
	Pool int
	// Edge rerolls every 6 into a new wave (Rule of Six).
	Edge bool
	// Limit caps countable hits. Only meaningful under SR5; nil when absent.
	Limit *int
	// Threshold is the hit count required for success; nil when absent.
	Threshold *int
	// Comment carries the unconsumed trailing tokens joined by spaces.
	Comment string
}

// Result captures one resolved roll.
type Result struct {
	// Waves holds the face values drawn per reroll round, in draw order.
	Waves [][]int
	// RawHits counts faces of 5 or 6 across every wave, before any cap.
	RawHits int
	// Hits is RawHits capped at the limit when the SR5 limit applies.
	Hits int
	// NetHits is Hits minus the threshold; nil when no threshold was set.
	NetHits *int
	// Outcome is set exactly when a threshold was set.
	Outcome Outcome
	// Glitch reports the complication state of the roll.
	Glitch Glitch
}

var sr4Thresholds = map[string]int{
	"easy": 1, "ea": 1,
	"average": 2, "av": 2,
	"hard": 4, "ha": 4,
	"extreme": 6, "ex": 6,
}

var sr5Thresholds = map[string]int{
	"easy": 1, "ea": 1,
	"average": 2, "av": 2,
	"hard": 4, "ha": 4,
	"veryhard": 6, "vh": 6,
	"extreme": 8, "ex": 8,
}

// ThresholdKeywords returns the difficulty keyword table for an edition.
// The returned map is a copy; SR6 and unknown editions have no keywords.
func ThresholdKeywords(edition Edition) map[string]int {
	table := thresholdTable(edition)
	keywords := make(map[string]int, len(table))
	for keyword, value := range table {
		keywords[keyword] = value
	}
	return keywords
}

func thresholdTable(edition Edition) map[string]int {
	switch edition {
	case EditionSR4:
		return sr4Thresholds
	case EditionSR5:
		return sr5Thresholds
	default:
		return nil
	}
}
