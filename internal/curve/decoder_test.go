package curve

import (
	"math"
	"testing"
	"time"

	apperrors "fedwatch/internal/errors"
	"fedwatch/internal/models"
)

const tolerance = 1e-9

func TestImpliedAverageRate(t *testing.T) {
	tests := []struct {
		price float64
		want  float64
	}{
		{95.625, 4.375},
		{100.0, 0.0},
		{95.29564516129032, 4.70435483870968},
	}
	for _, tt := range tests {
		if got := ImpliedAverageRate(tt.price); math.Abs(got-tt.want) > tolerance {
			t.Errorf("ImpliedAverageRate(%v) = %v, want %v", tt.price, got, tt.want)
		}
	}
}

func TestDayCounts(t *testing.T) {
	d := MonthDecode{
		Month:      models.ContractMonth{Year: 2025, Month: time.February},
		MeetingDay: 10,
	}
	if !d.HasMeeting() {
		t.Fatal("expected HasMeeting")
	}
	if d.DaysBefore() != 10 {
		t.Errorf("DaysBefore = %d, want 10", d.DaysBefore())
	}
	if d.DaysAfter() != 18 {
		t.Errorf("DaysAfter = %d, want 18", d.DaysAfter())
	}
}

func TestPostMeetingRate(t *testing.T) {
	// February 2025, meeting on the 10th, pre-meeting rate 4.375%.
	// A certain +25bp move prices the month at
	// (10*4.375 + 18*4.625)/28 = 4.5357142857... so 100 minus that.
	d := MonthDecode{
		Month:      models.ContractMonth{Year: 2025, Month: time.February},
		Price:      95.46428571428571,
		MeetingDay: 10,
	}

	post, err := d.PostMeetingRate(4.375)
	if err != nil {
		t.Fatalf("PostMeetingRate: %v", err)
	}
	if math.Abs(post-4.625) > tolerance {
		t.Errorf("post rate = %v, want 4.625", post)
	}
}

func TestPostMeetingRateIdentityWhenFlat(t *testing.T) {
	// A price implying avg == pre must solve to post == pre for any
	// meeting day.
	pre := 4.375
	month := models.ContractMonth{Year: 2025, Month: time.March}
	for day := 1; day < month.DaysInMonth(); day++ {
		d := MonthDecode{Month: month, Price: 100 - pre, MeetingDay: day}
		post, err := d.PostMeetingRate(pre)
		if err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
		if math.Abs(post-pre) > tolerance {
			t.Errorf("day %d: post = %v, want %v", day, post, pre)
		}
	}
}

func TestPostMeetingRateNoMeeting(t *testing.T) {
	d := MonthDecode{
		Month: models.ContractMonth{Year: 2025, Month: time.April},
		Price: 95.5,
	}
	if _, err := d.PostMeetingRate(4.375); err == nil {
		t.Fatal("expected error for month without meeting")
	}
}

func TestPostMeetingRateDayOutOfRange(t *testing.T) {
	d := MonthDecode{
		Month:      models.ContractMonth{Year: 2025, Month: time.February},
		Price:      95.5,
		MeetingDay: 30,
	}
	if _, err := d.PostMeetingRate(4.375); err == nil {
		t.Fatal("expected error for meeting day outside month")
	}
}

func TestPostMeetingRateDegenerateMonth(t *testing.T) {
	// Meeting on April 30th leaves zero post-meeting days.
	d := MonthDecode{
		Month:      models.ContractMonth{Year: 2025, Month: time.April},
		Price:      95.5,
		MeetingDay: 30,
	}

	_, err := d.PostMeetingRate(4.375)
	if !apperrors.Is(err, apperrors.ErrDegenerateMonth) {
		t.Fatalf("expected ErrDegenerateMonth, got %v", err)
	}

	var decodeErr *apperrors.DecodeError
	if !apperrors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %T", err)
	}
	if decodeErr.Month != "2025-04" {
		t.Errorf("DecodeError.Month = %q, want 2025-04", decodeErr.Month)
	}
}
