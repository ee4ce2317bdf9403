// Package fomc provides the FOMC meeting calendar and the contract month
// schedule derived from it.
package fomc

import (
	"time"

	apperrors "fedwatch/internal/errors"
	"fedwatch/internal/models"
)

// searchHorizonMonths bounds the walks that bracket the priced month span.
// The committee meets roughly eight times a year, so a two-year window is
// more than enough to find a month without a meeting.
const searchHorizonMonths = 24

// Calendar holds the ordered set of policy meeting dates and derives the
// upcoming meetings and contract months for a given watch date.
type Calendar struct {
	watchDate   time.Time
	meetings    []time.Time
	numUpcoming int
}

// MonthInfo describes one contract month in the priced span.
type MonthInfo struct {
	Month      models.ContractMonth
	Contract   string
	Meeting    time.Time
	HasMeeting bool
	// Ordinal is the meeting's position relative to the watch date:
	// 1, 2, ... for upcoming meetings, -1, -2, ... for past meetings,
	// 0 for months without a meeting.
	Ordinal int
}

// NewCalendar creates a calendar for the given watch date.
// Meeting dates must be strictly increasing, unique, and contain at most
// one meeting per calendar month.
func NewCalendar(watchDate time.Time, meetings []time.Time, numUpcoming int) (*Calendar, error) {
	if numUpcoming < 1 {
		return nil, apperrors.NewValidationError("numUpcoming", numUpcoming, "must be at least 1")
	}
	if len(meetings) == 0 {
		return nil, apperrors.NewCalendarError("no meeting dates supplied", apperrors.ErrInvalidCalendar)
	}

	normalized := make([]time.Time, len(meetings))
	for i, m := range meetings {
		normalized[i] = truncateToDay(m)
	}

	for i := 1; i < len(normalized); i++ {
		if !normalized[i].After(normalized[i-1]) {
			return nil, apperrors.NewCalendarError(
				"meeting dates must be strictly increasing and unique",
				apperrors.ErrInvalidCalendar)
		}
		if models.MonthOf(normalized[i]) == models.MonthOf(normalized[i-1]) {
			return nil, apperrors.NewCalendarError(
				"two meetings in one contract month: "+models.MonthOf(normalized[i]).String(),
				apperrors.ErrInvalidCalendar)
		}
	}

	return &Calendar{
		watchDate:   truncateToDay(watchDate),
		meetings:    normalized,
		numUpcoming: numUpcoming,
	}, nil
}

// WatchDate returns the as-of date of the calendar.
func (c *Calendar) WatchDate() time.Time {
	return c.watchDate
}

// NumUpcoming returns the requested number of upcoming meetings.
func (c *Calendar) NumUpcoming() int {
	return c.numUpcoming
}

// UpcomingMeetings returns the first N meeting dates strictly after the
// watch date, in chronological order.
func (c *Calendar) UpcomingMeetings() ([]time.Time, error) {
	var upcoming []time.Time
	for _, m := range c.meetings {
		if m.After(c.watchDate) {
			upcoming = append(upcoming, m)
		}
	}

	if len(upcoming) < c.numUpcoming {
		return nil, apperrors.Wrapf(apperrors.ErrInsufficientData,
			"calendar has %d future meetings, %d requested; extend the meeting list",
			len(upcoming), c.numUpcoming)
	}

	return upcoming[:c.numUpcoming], nil
}

// MeetingIn returns the meeting held in the given contract month, if any.
func (c *Calendar) MeetingIn(month models.ContractMonth) (time.Time, bool) {
	for _, m := range c.meetings {
		if month.Contains(m) {
			return m, true
		}
	}
	return time.Time{}, false
}

// RequiredContractMonths returns the distinct contract months from the
// watch date's month through the month of the last upcoming meeting,
// inclusive. These are exactly the months a price must be supplied for.
func (c *Calendar) RequiredContractMonths() ([]models.ContractMonth, error) {
	upcoming, err := c.UpcomingMeetings()
	if err != nil {
		return nil, err
	}

	start := models.MonthOf(c.watchDate)
	end := models.MonthOf(upcoming[len(upcoming)-1])

	var months []models.ContractMonth
	for m := start; !end.Before(m); m = m.Next() {
		months = append(months, m)
	}
	return months, nil
}

// PricedMonths returns the contract month span used by the original
// FedWatch methodology: it extends RequiredContractMonths backward to the
// nearest month without a meeting and forward past the last upcoming
// meeting to the next month without one. The bracketing months anchor the
// pre- and post-horizon rate regimes.
func (c *Calendar) PricedMonths() ([]models.ContractMonth, error) {
	if _, err := c.UpcomingMeetings(); err != nil {
		return nil, err
	}

	start, err := c.startingQuietMonth()
	if err != nil {
		return nil, err
	}
	end, err := c.endingQuietMonth()
	if err != nil {
		return nil, err
	}

	var months []models.ContractMonth
	for m := start; !end.Before(m); m = m.Next() {
		months = append(months, m)
	}
	return months, nil
}

// startingQuietMonth walks backward from the watch month to the nearest
// month without any scheduled meeting.
func (c *Calendar) startingQuietMonth() (models.ContractMonth, error) {
	m := models.MonthOf(c.watchDate)
	for i := 0; i < searchHorizonMonths; i++ {
		if _, ok := c.MeetingIn(m); !ok {
			return m, nil
		}
		m = m.Prev()
	}
	return models.ContractMonth{}, apperrors.NewCalendarError(
		"no starting month without a meeting found", apperrors.ErrInvalidCalendar)
}

// endingQuietMonth walks forward from the watch month, counting upcoming
// meetings, to the first meeting-free month at or past the horizon.
func (c *Calendar) endingQuietMonth() (models.ContractMonth, error) {
	m := models.MonthOf(c.watchDate)
	counted := 0
	for i := 0; i < searchHorizonMonths*2; i++ {
		if meeting, ok := c.MeetingIn(m); ok && meeting.After(c.watchDate) {
			counted++
		} else if !ok && counted >= c.numUpcoming {
			return m, nil
		}
		m = m.Next()
	}
	return models.ContractMonth{}, apperrors.Wrap(apperrors.ErrInsufficientData,
		"no ending month without a meeting found; extend the meeting list")
}

// Summary returns per-month details for the priced span, including the
// meeting ordinal relative to the watch date.
func (c *Calendar) Summary() ([]MonthInfo, error) {
	months, err := c.PricedMonths()
	if err != nil {
		return nil, err
	}

	infos := make([]MonthInfo, 0, len(months))
	for _, month := range months {
		info := MonthInfo{Month: month, Contract: month.Symbol()}
		if meeting, ok := c.MeetingIn(month); ok {
			info.Meeting = meeting
			info.HasMeeting = true
			info.Ordinal = c.ordinalOf(meeting)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ordinalOf returns 1, 2, ... for meetings after the watch date and
// -1, -2, ... for earlier meetings counting back from the watch date.
func (c *Calendar) ordinalOf(meeting time.Time) int {
	if meeting.After(c.watchDate) {
		n := 0
		for _, m := range c.meetings {
			if m.After(c.watchDate) {
				n++
			}
			if m.Equal(meeting) {
				return n
			}
		}
		return n
	}

	n := 0
	for i := len(c.meetings) - 1; i >= 0; i-- {
		m := c.meetings[i]
		if !m.After(c.watchDate) {
			n--
		}
		if m.Equal(meeting) {
			return n
		}
	}
	return n
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
