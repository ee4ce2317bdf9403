package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"fedwatch/internal/models"
)

// Property: any target range on the quarter-point grid survives a
// format/parse round trip unchanged.
func TestProperty_RateRangeRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("String then ParseRateRange preserves the range", prop.ForAll(
		func(lowerQuarters int, widthQuarters int) bool {
			r := models.RateRange{
				Lower: float64(lowerQuarters) * 0.25,
				Upper: float64(lowerQuarters+widthQuarters) * 0.25,
			}

			parsed, err := ParseRateRange(r.String())
			if err != nil {
				t.Logf("range %s: %v", r.String(), err)
				return false
			}
			return parsed.Lower == r.Lower && parsed.Upper == r.Upper
		},
		gen.IntRange(0, 40),
		gen.IntRange(0, 4),
	))

	properties.Property("single level parses as degenerate range", prop.ForAll(
		func(quarters int) bool {
			level := float64(quarters) * 0.25
			parsed, err := ParseRateRange(models.NewRateLevel(level).String())
			if err != nil {
				return false
			}
			return parsed.Lower == level && parsed.Upper == level
		},
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}

// Property: basis-point formatting carries an explicit sign for hikes,
// a bare minus for cuts, and no sign at zero.
func TestProperty_BasisPointFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("sign prefix matches the offset", prop.ForAll(
		func(bps int) bool {
			formatted := FormatBasisPoints(bps)
			if !strings.HasSuffix(formatted, "bp") {
				return false
			}
			switch {
			case bps > 0:
				return strings.HasPrefix(formatted, "+")
			case bps < 0:
				return strings.HasPrefix(formatted, "-")
			default:
				return formatted == "0bp"
			}
		},
		gen.IntRange(-200, 200),
	))

	properties.TestingRun(t)
}

// Property: dates survive a parse/format round trip through the
// YYYY-MM-DD wire format.
func TestProperty_DateRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("ParseDate inverts the wire format", prop.ForAll(
		func(dayOffset int) bool {
			want := base.AddDate(0, 0, dayOffset)
			parsed, err := ParseDate(want.Format("2006-01-02"))
			if err != nil {
				return false
			}
			return parsed.Equal(want)
		},
		gen.IntRange(0, 3650),
	))

	properties.TestingRun(t)
}

func TestParseRateRangeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "abc", "4.50-abc", "5.00-4.50", "-"} {
		if _, err := ParseRateRange(input); err == nil {
			t.Errorf("ParseRateRange(%q): expected error", input)
		}
	}
}

func TestFormatOrdinal(t *testing.T) {
	tests := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
		11: "11th", 12: "12th", 13: "13th", 21: "21st",
	}
	for n, want := range tests {
		if got := FormatOrdinal(n); got != want {
			t.Errorf("FormatOrdinal(%d) = %q, want %q", n, got, want)
		}
	}
}
