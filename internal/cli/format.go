package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "fedwatch/internal/errors"
	"fedwatch/internal/models"
)

// FormatRate formats a rate in percent.
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate)
}

// FormatPrice formats a futures price.
func FormatPrice(price float64) string {
	return fmt.Sprintf("%.3f", price)
}

// FormatProbability formats a probability as a percentage.
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// FormatBasisPoints formats a signed basis-point offset, e.g. "+25bp".
func FormatBasisPoints(bps int) string {
	if bps == 0 {
		return "0bp"
	}
	if bps > 0 {
		return fmt.Sprintf("+%dbp", bps)
	}
	return fmt.Sprintf("%dbp", bps)
}

// FormatOrdinal formats a 1-based meeting ordinal, e.g. "1st", "2nd".
func FormatOrdinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// FormatDate formats a date for display.
func FormatDate(t time.Time) string {
	return t.Format("02-Jan-2006")
}

// ParseRateRange parses a target rate range such as "4.50-4.75" or a
// single level such as "5.25".
func ParseRateRange(s string) (models.RateRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.RateRange{}, apperrors.NewValidationError("range", s, "empty rate range")
	}

	parts := strings.SplitN(s, "-", 2)
	lower, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.RateRange{}, apperrors.NewValidationError("range", s, "invalid lower bound")
	}

	if len(parts) == 1 {
		return models.NewRateLevel(lower), nil
	}

	upper, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.RateRange{}, apperrors.NewValidationError("range", s, "invalid upper bound")
	}
	if lower > upper {
		return models.RateRange{}, apperrors.NewValidationError("range", s, "lower bound exceeds upper")
	}

	return models.RateRange{Lower: lower, Upper: upper}, nil
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("date", s, "expected YYYY-MM-DD")
	}
	return t, nil
}
