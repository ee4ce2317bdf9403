package tree

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"fedwatch/internal/fomc"
	"fedwatch/internal/models"
)

// Property: for any plausible futures price, the solved move distribution
// for a single meeting is a probability distribution over at most two
// adjacent candidate steps, and the level distribution conserves mass.
func TestProperty_SingleMeetingDistribution(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	meetings := []time.Time{date(2025, 2, 10)}
	live := models.RateRange{Lower: 4.25, Upper: 4.50}

	properties.Property("moves form a distribution over adjacent steps", prop.ForAll(
		func(price float64) bool {
			cal, err := fomc.NewCalendar(date(2025, 2, 1), meetings, 1)
			if err != nil {
				return false
			}
			builder, err := NewBuilder(cal, stubSource{"ZQG25": price}, live, DefaultConfig(), zerolog.Nop())
			if err != nil {
				return false
			}
			result, err := builder.Build(context.Background())
			if err != nil {
				t.Logf("price %v: %v", price, err)
				return false
			}

			moves := result.Meetings[0].Moves
			if len(moves) < 1 || len(moves) > 2 {
				t.Logf("price %v: %d moves", price, len(moves))
				return false
			}

			mass := 0.0
			for _, mv := range moves {
				if mv.Prob < 0 || mv.Prob > 1 {
					t.Logf("price %v: prob %v out of range", price, mv.Prob)
					return false
				}
				if mv.Steps < -2 || mv.Steps > 2 {
					t.Logf("price %v: step %d outside candidate range", price, mv.Steps)
					return false
				}
				mass += mv.Prob
			}
			if math.Abs(mass-1) > 1e-9 {
				t.Logf("price %v: move mass %v", price, mass)
				return false
			}
			if len(moves) == 2 && moves[1].Steps-moves[0].Steps != 1 {
				t.Logf("price %v: non-adjacent steps %v", price, moves)
				return false
			}

			if math.Abs(result.Meetings[0].Dist.Sum()-1) > 1e-9 {
				t.Logf("price %v: level mass %v", price, result.Meetings[0].Dist.Sum())
				return false
			}
			return true
		},
		gen.Float64Range(94.0, 96.5),
	))

	properties.TestingRun(t)
}

// Property: across a multi-meeting chain, probability mass is conserved
// after every meeting, all probabilities stay non-negative, and hike,
// hold and cut probabilities partition each meeting's mass.
func TestProperty_ChainConservation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	meetings := []time.Time{
		date(2025, 3, 19),
		date(2025, 5, 7),
		date(2025, 6, 18),
	}
	symbols := []string{"ZQH25", "ZQK25", "ZQM25"}
	live := models.RateRange{Lower: 4.25, Upper: 4.50}

	properties.Property("mass conserved across the meeting chain", prop.ForAll(
		func(p1, p2, p3 float64) bool {
			source := stubSource{symbols[0]: p1, symbols[1]: p2, symbols[2]: p3}

			cal, err := fomc.NewCalendar(date(2025, 3, 1), meetings, 3)
			if err != nil {
				return false
			}
			builder, err := NewBuilder(cal, source, live, DefaultConfig(), zerolog.Nop())
			if err != nil {
				return false
			}
			result, err := builder.Build(context.Background())
			if err != nil {
				t.Logf("prices %v/%v/%v: %v", p1, p2, p3, err)
				return false
			}

			for i, m := range result.Meetings {
				if math.Abs(m.Dist.Sum()-1) > 1e-9 {
					t.Logf("meeting %d: mass %v", i, m.Dist.Sum())
					return false
				}
				for offset, p := range m.Dist {
					if p < -1e-12 {
						t.Logf("meeting %d: negative P(%+dbp) = %v", i, offset, p)
						return false
					}
				}

				split := result.HikeProbability(i) + result.HoldProbability(i) + result.CutProbability(i)
				if math.Abs(split-1) > 1e-9 {
					t.Logf("meeting %d: hike+hold+cut = %v", i, split)
					return false
				}
			}
			return true
		},
		gen.Float64Range(94.5, 96.0),
		gen.Float64Range(94.5, 96.0),
		gen.Float64Range(94.5, 96.0),
	))

	properties.TestingRun(t)
}

// Property: a clipped solve reports a warning exactly when the implied
// displacement exceeds the candidate range, and never otherwise.
func TestProperty_ClippingWarnings(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("warning iff displacement beyond candidate range", prop.ForAll(
		func(target float64) bool {
			base := 4.375
			implied := (target - base) / 0.25

			moves, warn := solveMoves(base, target, 0.25, 2, 1e-9)

			beyond := implied > 2+1e-9 || implied < -2-1e-9
			if beyond != (warn != nil) {
				t.Logf("target %v (implied %v steps): warn=%v", target, implied, warn)
				return false
			}

			mass := 0.0
			for _, mv := range moves {
				mass += mv.Prob
			}
			return math.Abs(mass-1) <= 1e-9
		},
		gen.Float64Range(2.0, 7.0),
	))

	properties.TestingRun(t)
}
