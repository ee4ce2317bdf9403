package tree

import (
	"sort"
	"time"

	"fedwatch/internal/models"
)

// MeetingOutcome is the solved state for one upcoming meeting.
type MeetingOutcome struct {
	Date     time.Time
	Ordinal  int
	Month    models.ContractMonth
	Contract string
	Price    float64 // futures price used for the decode
	PreRate  float64 // probability-weighted rate carried into the meeting
	PostRate float64 // futures-implied expected post-meeting rate
	Moves    []Move  // solved step distribution for this meeting alone
	Dist     Distribution
}

// Result is the completed probability tree. It is immutable after
// construction and safe for concurrent reads.
type Result struct {
	WatchDate       time.Time
	LiveRange       models.RateRange
	StepBasisPoints int
	Meetings        []MeetingOutcome
	Warnings        []Warning
}

// NumMeetings returns the number of solved meetings.
func (r *Result) NumMeetings() int {
	return len(r.Meetings)
}

// Probability returns the probability of the target level at the given
// basis-point offset after the meeting at index i. Unreached levels carry
// zero probability.
func (r *Result) Probability(i, offsetBP int) float64 {
	if i < 0 || i >= len(r.Meetings) {
		return 0
	}
	return r.Meetings[i].Dist[offsetBP]
}

// HikeProbability returns the probability of any upward move at the
// meeting at index i, aggregated over the solved step distribution.
func (r *Result) HikeProbability(i int) float64 {
	return r.moveMass(i, func(steps int) bool { return steps > 0 })
}

// CutProbability returns the probability of any downward move at the
// meeting at index i.
func (r *Result) CutProbability(i int) float64 {
	return r.moveMass(i, func(steps int) bool { return steps < 0 })
}

// HoldProbability returns the probability of no move at the meeting at
// index i.
func (r *Result) HoldProbability(i int) float64 {
	return r.moveMass(i, func(steps int) bool { return steps == 0 })
}

func (r *Result) moveMass(i int, match func(steps int) bool) float64 {
	if i < 0 || i >= len(r.Meetings) {
		return 0
	}
	total := 0.0
	for _, mv := range r.Meetings[i].Moves {
		if match(mv.Steps) {
			total += mv.Prob
		}
	}
	return total
}

// Levels returns the union of target level offsets reached with nonzero
// probability at any meeting, in ascending order.
func (r *Result) Levels() []int {
	seen := make(map[int]struct{})
	for _, m := range r.Meetings {
		for offset := range m.Dist {
			seen[offset] = struct{}{}
		}
	}
	levels := make([]int, 0, len(seen))
	for offset := range seen {
		levels = append(levels, offset)
	}
	sort.Ints(levels)
	return levels
}

// LevelRange returns the target rate range for a basis-point offset from
// the watch-date level.
func (r *Result) LevelRange(offsetBP int) models.RateRange {
	return r.LiveRange.Shift(offsetBP)
}

// Table is the meetings-by-levels probability grid for display.
type Table struct {
	Levels []int    // column offsets in basis points
	Labels []string // rate range labels, aligned with Levels
	Rows   []TableRow
}

// TableRow is one meeting's probabilities, aligned with Table.Levels.
type TableRow struct {
	Meeting time.Time
	Probs   []float64
}

// Table assembles the full probability grid. Rows sum to 1 within the
// builder's tolerance.
func (r *Result) Table() Table {
	levels := r.Levels()
	labels := make([]string, len(levels))
	for i, offset := range levels {
		labels[i] = r.LevelRange(offset).String()
	}

	rows := make([]TableRow, len(r.Meetings))
	for i, m := range r.Meetings {
		probs := make([]float64, len(levels))
		for j, offset := range levels {
			probs[j] = m.Dist[offset]
		}
		rows[i] = TableRow{Meeting: m.Date, Probs: probs}
	}

	return Table{Levels: levels, Labels: labels, Rows: rows}
}
