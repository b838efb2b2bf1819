package dice

import (
	"errors"
	"math/rand"
)

// Roll resolves a request using the provided random source.
//
// # Waves
//
// The initial wave draws Pool dice. When Edge is set, every 6 in a wave
// draws one die in the next wave (the Rule of Six); rolling stops when a
// wave contains no 6s. Without Edge a single wave is drawn.
//
// # Scoring
//
// Faces of 5 or 6 across every wave count as raw hits. Under SR5 with a
// limit present, hits are capped at the limit. When a threshold is
// present, net hits are hits minus threshold: zero or fewer fail, four or
// more under SR4 are a critical success, anything else succeeds. A roll
// whose 1s make up at least half of every die drawn (a tie counts)
// glitches; with zero hits the glitch is critical.
//
// # Errors
//
//   - A nil random source returns an error.
//   - A Pool of zero or less returns ErrInvalidDicePool; degenerate empty
//     rolls are rejected rather than scored.
func Roll(rng *rand.Rand, request Request, edition Edition) (Result, error) {
	if rng == nil {
		return Result{}, errors.New("random source is required")
	}
	if request.Pool <= 0 {
		return Result{}, ErrInvalidDicePool
	}

	waves := rollWaves(rng, request.Pool, request.Edge)
	return Evaluate(waves, request, edition), nil
}

// RollSeeded resolves a request deterministically from seed.
// Given the same seed, request, and edition, RollSeeded always produces
// the same Result.
func RollSeeded(seed int64, request Request, edition Edition) (Result, error) {
	return Roll(rand.New(rand.NewSource(seed)), request, edition)
}

// Evaluate deterministically scores already-drawn waves under a request
// and edition. The glitch rule divides by the total dice drawn across all
// waves; empty waves score as no glitch.
func Evaluate(waves [][]int, request Request, edition Edition) Result {
	result := Result{Waves: waves}

	totalDice := 0
	ones := 0
	for _, wave := range waves {
		for _, value := range wave {
			totalDice++
			if value >= 5 {
				result.RawHits++
			}
			if value == 1 {
				ones++
			}
		}
	}

	result.Hits = result.RawHits
	if edition == EditionSR5 && request.Limit != nil && result.Hits > *request.Limit {
		result.Hits = *request.Limit
	}

	if request.Threshold != nil {
		net := result.Hits - *request.Threshold
		result.NetHits = &net
		switch {
		case net <= 0:
			result.Outcome = OutcomeFailure
		case net >= 4 && edition == EditionSR4:
			result.Outcome = OutcomeCriticalSuccess
		default:
			result.Outcome = OutcomeSuccess
		}
	}

	if totalDice > 0 && float64(ones) >= float64(totalDice)/2 {
		if result.Hits == 0 {
			result.Glitch = GlitchCritical
		} else {
			result.Glitch = GlitchNormal
		}
	}

	return result
}

func rollWaves(rng *rand.Rand, pool int, edge bool) [][]int {
	var waves [][]int
	for pool > 0 {
		wave := make([]int, pool)
		rerolls := 0
		for i := range wave {
			value := rollDie(rng)
			wave[i] = value
			if value == 6 {
				rerolls++
			}
		}
		waves = append(waves, wave)
		if !edge {
			break
		}
		pool = rerolls
	}
	return waves
}

// rollDie rolls a single six-sided die.
func rollDie(rng *rand.Rand) int {
	return rng.Intn(6) + 1
}
