package fomc

import (
	"testing"
	"time"

	apperrors "fedwatch/internal/errors"
	"fedwatch/internal/models"
)

// meetings2025 is the scheduled FOMC calendar for 2025.
var meetings2025 = []time.Time{
	date(2025, 1, 29),
	date(2025, 3, 19),
	date(2025, 5, 7),
	date(2025, 6, 18),
	date(2025, 7, 30),
	date(2025, 9, 17),
	date(2025, 10, 29),
	date(2025, 12, 10),
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewCalendarValidation(t *testing.T) {
	watch := date(2025, 3, 1)

	tests := []struct {
		name     string
		meetings []time.Time
		upcoming int
	}{
		{"empty calendar", nil, 2},
		{"zero upcoming", meetings2025, 0},
		{"out of order", []time.Time{date(2025, 3, 19), date(2025, 1, 29)}, 1},
		{"duplicate date", []time.Time{date(2025, 3, 19), date(2025, 3, 19)}, 1},
		{"two meetings in one month", []time.Time{date(2025, 3, 5), date(2025, 3, 19)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCalendar(watch, tt.meetings, tt.upcoming); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestNewCalendarIgnoresTimeOfDay(t *testing.T) {
	meetings := []time.Time{
		time.Date(2025, 3, 19, 14, 30, 0, 0, time.UTC),
		date(2025, 5, 7),
	}
	cal, err := NewCalendar(time.Date(2025, 3, 19, 18, 0, 0, 0, time.UTC), meetings, 1)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	// The watch date falls on a meeting day. Day-level truncation means
	// that meeting is not "upcoming" regardless of announcement time.
	upcoming, err := cal.UpcomingMeetings()
	if err != nil {
		t.Fatalf("UpcomingMeetings: %v", err)
	}
	if !upcoming[0].Equal(date(2025, 5, 7)) {
		t.Errorf("expected 2025-05-07 first, got %s", upcoming[0].Format("2006-01-02"))
	}
}

func TestUpcomingMeetings(t *testing.T) {
	cal, err := NewCalendar(date(2025, 3, 1), meetings2025, 2)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	upcoming, err := cal.UpcomingMeetings()
	if err != nil {
		t.Fatalf("UpcomingMeetings: %v", err)
	}

	want := []time.Time{date(2025, 3, 19), date(2025, 5, 7)}
	if len(upcoming) != len(want) {
		t.Fatalf("expected %d meetings, got %d", len(want), len(upcoming))
	}
	for i := range want {
		if !upcoming[i].Equal(want[i]) {
			t.Errorf("meeting %d: expected %s, got %s",
				i, want[i].Format("2006-01-02"), upcoming[i].Format("2006-01-02"))
		}
	}
}

func TestUpcomingMeetingsInsufficient(t *testing.T) {
	cal, err := NewCalendar(date(2025, 11, 1), meetings2025, 3)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	// Only the December meeting remains after November 1st.
	if _, err := cal.UpcomingMeetings(); !apperrors.Is(err, apperrors.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestMeetingIn(t *testing.T) {
	cal, err := NewCalendar(date(2025, 3, 1), meetings2025, 2)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	meeting, ok := cal.MeetingIn(models.ContractMonth{Year: 2025, Month: time.March})
	if !ok || !meeting.Equal(date(2025, 3, 19)) {
		t.Errorf("expected 2025-03-19 in March, got %v (%v)", meeting, ok)
	}

	if _, ok := cal.MeetingIn(models.ContractMonth{Year: 2025, Month: time.April}); ok {
		t.Error("expected no meeting in April")
	}
}

func TestRequiredContractMonths(t *testing.T) {
	cal, err := NewCalendar(date(2025, 3, 1), meetings2025, 2)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	months, err := cal.RequiredContractMonths()
	if err != nil {
		t.Fatalf("RequiredContractMonths: %v", err)
	}

	want := []models.ContractMonth{
		{Year: 2025, Month: time.March},
		{Year: 2025, Month: time.April},
		{Year: 2025, Month: time.May},
	}
	if len(months) != len(want) {
		t.Fatalf("expected %d months, got %d: %v", len(want), len(months), months)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Errorf("month %d: expected %s, got %s", i, want[i], months[i])
		}
	}
}

func TestPricedMonthsBracketsQuietMonths(t *testing.T) {
	cal, err := NewCalendar(date(2025, 3, 1), meetings2025, 2)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	months, err := cal.PricedMonths()
	if err != nil {
		t.Fatalf("PricedMonths: %v", err)
	}

	// The watch month holds a meeting, so the span starts in February,
	// the nearest quiet month. Past the second upcoming meeting (May 7),
	// June and July hold meetings too; August is the first quiet month.
	first, last := months[0], months[len(months)-1]
	if (first != models.ContractMonth{Year: 2025, Month: time.February}) {
		t.Errorf("expected span to start 2025-02, got %s", first)
	}
	if (last != models.ContractMonth{Year: 2025, Month: time.August}) {
		t.Errorf("expected span to end 2025-08, got %s", last)
	}
	if len(months) != 7 {
		t.Errorf("expected 7 months, got %d: %v", len(months), months)
	}
}

func TestSummaryOrdinals(t *testing.T) {
	cal, err := NewCalendar(date(2025, 3, 1), meetings2025, 2)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	summary, err := cal.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	byMonth := make(map[models.ContractMonth]MonthInfo, len(summary))
	for _, info := range summary {
		byMonth[info.Month] = info
	}

	feb := byMonth[models.ContractMonth{Year: 2025, Month: time.February}]
	if feb.HasMeeting {
		t.Error("February should have no meeting")
	}

	mar := byMonth[models.ContractMonth{Year: 2025, Month: time.March}]
	if !mar.HasMeeting || mar.Ordinal != 1 {
		t.Errorf("March should hold upcoming meeting #1, got %+v", mar)
	}
	if mar.Contract != "ZQH25" {
		t.Errorf("expected contract ZQH25 for March, got %s", mar.Contract)
	}

	may := byMonth[models.ContractMonth{Year: 2025, Month: time.May}]
	if !may.HasMeeting || may.Ordinal != 2 {
		t.Errorf("May should hold upcoming meeting #2, got %+v", may)
	}

	jun := byMonth[models.ContractMonth{Year: 2025, Month: time.June}]
	if !jun.HasMeeting || jun.Ordinal != 3 {
		t.Errorf("June should hold upcoming meeting #3, got %+v", jun)
	}
}

func TestSummaryPastOrdinal(t *testing.T) {
	// Watch in February so the January meeting sits just behind the span.
	meetings := []time.Time{
		date(2025, 2, 5),
		date(2025, 3, 19),
		date(2025, 5, 7),
	}
	cal, err := NewCalendar(date(2025, 2, 10), meetings, 2)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	summary, err := cal.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	for _, info := range summary {
		if (info.Month == models.ContractMonth{Year: 2025, Month: time.February}) {
			if !info.HasMeeting || info.Ordinal != -1 {
				t.Errorf("February meeting should carry ordinal -1, got %+v", info)
			}
			return
		}
	}
	t.Fatal("February missing from summary")
}
