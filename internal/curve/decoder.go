// Package curve derives implied overnight rates from fed funds futures
// prices, splitting meeting months into pre- and post-meeting regimes.
package curve

import (
	apperrors "fedwatch/internal/errors"
	"fedwatch/internal/models"
)

// ImpliedAverageRate converts a futures price into the average overnight
// rate for the contract month. Contracts are quoted as 100 minus the rate,
// so no further unit conversion is needed.
func ImpliedAverageRate(price float64) float64 {
	return 100 - price
}

// MonthDecode holds the inputs for decoding one contract month.
type MonthDecode struct {
	Month      models.ContractMonth
	Price      float64
	MeetingDay int // day of month of the contained meeting, 0 if none
}

// HasMeeting reports whether the month contains a policy meeting.
func (d MonthDecode) HasMeeting() bool {
	return d.MeetingDay > 0
}

// DaysBefore returns the number of calendar days priced at the
// pre-meeting rate. The post-meeting rate takes effect the day after the
// meeting, so the meeting day itself counts as a pre-meeting day.
func (d MonthDecode) DaysBefore() int {
	return d.MeetingDay
}

// DaysAfter returns the number of calendar days priced at the
// post-meeting rate.
func (d MonthDecode) DaysAfter() int {
	return d.Month.DaysInMonth() - d.MeetingDay
}

// AverageRate returns the whole-month average rate implied by the price.
// For a month without a meeting this is the month's single rate regime and
// serves as a consistency value, not a free variable.
func (d MonthDecode) AverageRate() float64 {
	return ImpliedAverageRate(d.Price)
}

// PostMeetingRate solves the day-weighted average equation for the rate in
// force after the month's meeting, given the pre-meeting rate:
//
//	avg = (daysBefore*pre + daysAfter*post) / daysInMonth
//
// A meeting on the last day of the month leaves no post-meeting days, so
// the post-meeting rate is unobservable from this contract alone; the
// caller must fall back to the following month's contract.
func (d MonthDecode) PostMeetingRate(preRate float64) (float64, error) {
	if !d.HasMeeting() {
		return 0, apperrors.NewDecodeError(d.Month.String(),
			"month has no meeting to decompose", nil)
	}
	if d.MeetingDay < 1 || d.MeetingDay > d.Month.DaysInMonth() {
		return 0, apperrors.NewDecodeError(d.Month.String(),
			"meeting day outside contract month", nil)
	}

	daysAfter := d.DaysAfter()
	if daysAfter == 0 {
		return 0, apperrors.NewDecodeError(d.Month.String(),
			"post-meeting rate unobservable", apperrors.ErrDegenerateMonth)
	}

	days := float64(d.Month.DaysInMonth())
	avg := d.AverageRate()
	post := (avg*days - preRate*float64(d.DaysBefore())) / float64(daysAfter)
	return post, nil
}
