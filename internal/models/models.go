// Package models provides domain models for fed funds futures and target rates.
package models

import (
	"fmt"
	"time"
)

// cmeMonthCodes maps calendar months to CME Globex month codes.
var cmeMonthCodes = map[time.Month]byte{
	time.January: 'F', time.February: 'G', time.March: 'H',
	time.April: 'J', time.May: 'K', time.June: 'M',
	time.July: 'N', time.August: 'Q', time.September: 'U',
	time.October: 'V', time.November: 'X', time.December: 'Z',
}

// ContractMonth identifies the delivery month of a fed funds futures contract.
type ContractMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the contract month containing the given date.
func MonthOf(t time.Time) ContractMonth {
	return ContractMonth{Year: t.Year(), Month: t.Month()}
}

// String returns the month in YYYY-MM format.
func (c ContractMonth) String() string {
	return fmt.Sprintf("%04d-%02d", c.Year, int(c.Month))
}

// Symbol returns the CME Globex contract code, e.g. ZQH25 for March 2025.
func (c ContractMonth) Symbol() string {
	return fmt.Sprintf("ZQ%c%02d", cmeMonthCodes[c.Month], c.Year%100)
}

// DaysInMonth returns the number of calendar days in the contract month.
func (c ContractMonth) DaysInMonth() int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(c.Year, c.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstDay returns midnight UTC on the first day of the month.
func (c ContractMonth) FirstDay() time.Time {
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns midnight UTC on the last day of the month.
func (c ContractMonth) LastDay() time.Time {
	return time.Date(c.Year, c.Month, c.DaysInMonth(), 0, 0, 0, 0, time.UTC)
}

// Next returns the following contract month.
func (c ContractMonth) Next() ContractMonth {
	return MonthOf(c.FirstDay().AddDate(0, 1, 0))
}

// Prev returns the preceding contract month.
func (c ContractMonth) Prev() ContractMonth {
	return MonthOf(c.FirstDay().AddDate(0, -1, 0))
}

// Before reports whether c is strictly earlier than other.
func (c ContractMonth) Before(other ContractMonth) bool {
	if c.Year != other.Year {
		return c.Year < other.Year
	}
	return c.Month < other.Month
}

// Contains reports whether the given date falls inside the contract month.
func (c ContractMonth) Contains(t time.Time) bool {
	return t.Year() == c.Year && t.Month() == c.Month
}

// FuturesQuote represents one daily settlement record of a fed funds
// futures contract. Prices are quoted as 100 minus the average overnight
// rate for the delivery month.
type FuturesQuote struct {
	Symbol       string
	Date         time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       int64
	OpenInterest int64
}

// RateRange represents a target rate range in percent, e.g. 4.50-4.75.
// A single target level is expressed as a range with equal bounds.
type RateRange struct {
	Lower float64
	Upper float64
}

// NewRateLevel returns a degenerate range for a single target level.
func NewRateLevel(rate float64) RateRange {
	return RateRange{Lower: rate, Upper: rate}
}

// Midpoint returns the middle of the range, the value used in rate arithmetic.
func (r RateRange) Midpoint() float64 {
	return (r.Lower + r.Upper) / 2
}

// Shift returns the range moved by the given number of basis points.
func (r RateRange) Shift(bps int) RateRange {
	delta := float64(bps) / 100
	return RateRange{Lower: r.Lower + delta, Upper: r.Upper + delta}
}

// String formats the range as "4.50-4.75", or "4.50" for a single level.
func (r RateRange) String() string {
	if r.Lower == r.Upper {
		return fmt.Sprintf("%.2f", r.Lower)
	}
	return fmt.Sprintf("%.2f-%.2f", r.Lower, r.Upper)
}

// IsZero reports whether the range is unset.
func (r RateRange) IsZero() bool {
	return r.Lower == 0 && r.Upper == 0
}
