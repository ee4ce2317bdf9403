// Package tree builds the path-dependent probability tree over upcoming
// policy meetings from futures-implied rates.
package tree

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"fedwatch/internal/curve"
	apperrors "fedwatch/internal/errors"
	"fedwatch/internal/fomc"
	"fedwatch/internal/logging"
	"fedwatch/internal/models"
	"fedwatch/internal/pricing"
)

// Move is one candidate rate move at a meeting, expressed in steps of the
// configured step size, with its solved probability.
type Move struct {
	Steps int
	Prob  float64
}

// Distribution maps a target level, as a basis-point offset from the
// watch-date level, to the cumulative probability of the committee's path
// having reached it.
type Distribution map[int]float64

// Sum returns the total probability mass.
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, p := range d {
		total += p
	}
	return total
}

// MeanOffset returns the probability-weighted average offset in basis points.
func (d Distribution) MeanOffset() float64 {
	mean := 0.0
	for offset, p := range d {
		mean += float64(offset) * p
	}
	return mean
}

// Levels returns the offsets carrying probability, in ascending order.
func (d Distribution) Levels() []int {
	levels := make([]int, 0, len(d))
	for offset := range d {
		levels = append(levels, offset)
	}
	sort.Ints(levels)
	return levels
}

// Clone returns a copy of the distribution.
func (d Distribution) Clone() Distribution {
	out := make(Distribution, len(d))
	for offset, p := range d {
		out[offset] = p
	}
	return out
}

// Warning records a degenerate solve: the futures-implied displacement
// exceeded the widest candidate move and was clipped. The build continues,
// but the meeting's probabilities no longer reproduce the quoted price.
type Warning struct {
	Meeting time.Time
	Implied float64 // displacement implied by prices, in steps
	Applied float64 // displacement after clipping
}

func (w Warning) String() string {
	return fmt.Sprintf("meeting %s: implied move of %.2f steps clipped to %.2f",
		w.Meeting.Format("2006-01-02"), w.Implied, w.Applied)
}

// Config holds the candidate move configuration.
type Config struct {
	StepBasisPoints int     // size of one step, default 25
	MaxSteps        int     // widest candidate move in steps, default 2
	Tolerance       float64 // probability conservation tolerance
}

// DefaultConfig returns the standard FedWatch move configuration.
func DefaultConfig() Config {
	return Config{
		StepBasisPoints: 25,
		MaxSteps:        2,
		Tolerance:       1e-9,
	}
}

// Builder constructs the probability tree for one watch date. It owns the
// tree during construction; the returned Result is immutable.
type Builder struct {
	cfg    Config
	cal    *fomc.Calendar
	source pricing.PriceSource
	live   models.RateRange
	logger zerolog.Logger
}

// NewBuilder creates a builder over the given calendar, price source and
// live target rate range.
func NewBuilder(cal *fomc.Calendar, source pricing.PriceSource, live models.RateRange, cfg Config, logger zerolog.Logger) (*Builder, error) {
	if cfg.StepBasisPoints <= 0 || cfg.MaxSteps < 1 {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedStep,
			"step %dbp, max %d steps", cfg.StepBasisPoints, cfg.MaxSteps)
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultConfig().Tolerance
	}
	if cal == nil || source == nil {
		return nil, apperrors.Wrap(apperrors.ErrConfigInvalid, "calendar and price source are required")
	}
	if live.Lower > live.Upper {
		return nil, apperrors.NewValidationError("live", live, "rate range lower bound exceeds upper")
	}

	return &Builder{
		cfg:    cfg,
		cal:    cal,
		source: source,
		live:   live,
		logger: logger.With().Str("component", "tree_builder").Logger(),
	}, nil
}

// Build runs the sequential per-meeting solve and returns the completed
// tree. The chain is causal: a failure at meeting k aborts the build, no
// partial tree past that meeting is returned.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	meetings, err := b.cal.UpcomingMeetings()
	if err != nil {
		return nil, err
	}

	// Initial state: the live rate with probability 1.
	dist := Distribution{0: 1}
	base := b.live.Midpoint()
	stepPct := float64(b.cfg.StepBasisPoints) / 100

	outcomes := make([]MeetingOutcome, 0, len(meetings))
	var warnings []Warning

	for i, meeting := range meetings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ordinal := i + 1
		logger := logging.WithMeeting(b.logger, meeting)

		month := models.MonthOf(meeting)
		price, err := b.source.Price(ctx, month, b.cal.WatchDate())
		if err != nil {
			if apperrors.Is(err, apperrors.ErrPriceNotFound) {
				err = apperrors.Wrap(apperrors.ErrMissingPrice, month.Symbol())
			}
			return nil, apperrors.NewMeetingError(meeting, ordinal, err)
		}

		post, err := b.postMeetingRate(ctx, meeting, month, price, base, logger)
		if err != nil {
			return nil, apperrors.NewMeetingError(meeting, ordinal, err)
		}

		moves, warn := solveMoves(base, post, stepPct, b.cfg.MaxSteps, b.cfg.Tolerance)
		if warn != nil {
			warn.Meeting = meeting
			warnings = append(warnings, *warn)
			logger.Warn().
				Float64("implied_steps", warn.Implied).
				Float64("applied_steps", warn.Applied).
				Msg("Implied move clipped to candidate range")
		}
		logging.LogSolve(logger, meeting, base, post, warn != nil)

		dist = convolve(dist, moves, b.cfg.StepBasisPoints)
		if drift := math.Abs(dist.Sum() - 1); drift > b.cfg.Tolerance {
			return nil, apperrors.NewMeetingError(meeting, ordinal,
				fmt.Errorf("probability mass drifted by %g", drift))
		}

		outcomes = append(outcomes, MeetingOutcome{
			Date:     meeting,
			Ordinal:  ordinal,
			Month:    month,
			Contract: month.Symbol(),
			Price:    price,
			PreRate:  base,
			PostRate: post,
			Moves:    moves,
			Dist:     dist.Clone(),
		})

		base = b.live.Midpoint() + dist.MeanOffset()/100
	}

	return &Result{
		WatchDate:       b.cal.WatchDate(),
		LiveRange:       b.live,
		StepBasisPoints: b.cfg.StepBasisPoints,
		Meetings:        outcomes,
		Warnings:        warnings,
	}, nil
}

// postMeetingRate decodes the implied post-meeting rate for the meeting's
// contract month. A meeting on the month's last day makes that contract
// blind to the new rate, so the following month's contract is used
// instead, provided it holds no meeting of its own.
func (b *Builder) postMeetingRate(ctx context.Context, meeting time.Time, month models.ContractMonth, price, preRate float64, logger zerolog.Logger) (float64, error) {
	decode := curve.MonthDecode{Month: month, Price: price, MeetingDay: meeting.Day()}
	post, err := decode.PostMeetingRate(preRate)
	if err == nil {
		logging.LogDecode(logger, month.Symbol(), price, preRate, post)
		return post, nil
	}
	if !apperrors.Is(err, apperrors.ErrDegenerateMonth) {
		return 0, err
	}

	next := month.Next()
	if _, ok := b.cal.MeetingIn(next); ok {
		// The following month has its own meeting, its contract mixes
		// regimes and cannot stand in for this one.
		return 0, err
	}

	nextPrice, perr := b.source.Price(ctx, next, b.cal.WatchDate())
	if perr != nil {
		if apperrors.Is(perr, apperrors.ErrPriceNotFound) {
			perr = apperrors.Wrap(apperrors.ErrMissingPrice, next.Symbol())
		}
		return 0, perr
	}

	post = curve.ImpliedAverageRate(nextPrice)
	logger.Debug().
		Str("fallback_contract", next.Symbol()).
		Float64("post_rate", post).
		Msg("Degenerate meeting month, post rate taken from following contract")
	return post, nil
}

// solveMoves distributes probability over candidate moves so the expected
// post-meeting rate matches the futures-implied target. The displacement
// is attributed nearest step first, the remainder one step farther out.
// Displacements beyond the widest candidate move are clipped and reported
// as a Warning rather than silently renormalized.
func solveMoves(base, target, stepPct float64, maxSteps int, tolerance float64) ([]Move, *Warning) {
	implied := (target - base) / stepPct

	applied := implied
	limit := float64(maxSteps)
	if applied > limit {
		applied = limit
	} else if applied < -limit {
		applied = -limit
	}

	var warn *Warning
	if math.Abs(implied-applied) > tolerance {
		warn = &Warning{Implied: implied, Applied: applied}
	}

	nearest := int(math.Trunc(applied))
	frac := applied - math.Trunc(applied)

	if math.Abs(frac) <= tolerance {
		return []Move{{Steps: nearest, Prob: 1}}, warn
	}

	farther := nearest + 1
	if frac < 0 {
		farther = nearest - 1
	}

	moves := []Move{
		{Steps: nearest, Prob: 1 - math.Abs(frac)},
		{Steps: farther, Prob: math.Abs(frac)},
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i].Steps < moves[j].Steps })
	return moves, warn
}

// convolve branches every reached level into the solved moves, merging
// levels that coincide.
func convolve(dist Distribution, moves []Move, stepBP int) Distribution {
	out := make(Distribution, len(dist)+len(moves))
	for offset, p := range dist {
		for _, mv := range moves {
			out[offset+mv.Steps*stepBP] += p * mv.Prob
		}
	}
	return out
}
