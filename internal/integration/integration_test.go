// Package integration provides end-to-end tests wiring the quote store,
// meeting calendar and probability tree together.
package integration

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fedwatch/internal/fomc"
	"fedwatch/internal/models"
	"fedwatch/internal/store"
	"fedwatch/internal/tree"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestWatchWorkflow runs the complete pipeline: import meetings and
// quotes into SQLite, derive the calendar, and build the probability
// tree from stored settlement prices.
func TestWatchWorkflow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dataStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "fedwatch.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer dataStore.Close()

	// Import the meeting calendar.
	meetingDates := []time.Time{
		date(2025, 1, 29),
		date(2025, 3, 19),
		date(2025, 5, 7),
	}
	if err := dataStore.SaveMeetings(ctx, meetingDates); err != nil {
		t.Fatalf("SaveMeetings: %v", err)
	}

	// Import settlement prices. The March contract prices an expected
	// +0.82-step move off the 4.50-4.75 range; the May contract prices
	// the carried 4.83% expected rate flat.
	quotes := []models.FuturesQuote{
		{Symbol: "ZQH25", Date: date(2025, 3, 3), Close: 95.29564516129032},
		{Symbol: "ZQK25", Date: date(2025, 3, 3), Close: 95.17},
	}
	if err := dataStore.SaveQuotes(ctx, quotes); err != nil {
		t.Fatalf("SaveQuotes: %v", err)
	}
	if err := dataStore.SetLastSync("quotes", date(2025, 3, 3)); err != nil {
		t.Fatalf("SetLastSync: %v", err)
	}

	// Rebuild the calendar from the store, as the CLI does.
	stored, err := dataStore.GetMeetings(ctx)
	if err != nil {
		t.Fatalf("GetMeetings: %v", err)
	}
	cal, err := fomc.NewCalendar(date(2025, 3, 3), stored, 2)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	live := models.RateRange{Lower: 4.50, Upper: 4.75}
	builder, err := tree.NewBuilder(cal, dataStore, live, tree.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	result, err := builder.Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if result.NumMeetings() != 2 {
		t.Fatalf("expected 2 meetings, got %d", result.NumMeetings())
	}
	if math.Abs(result.HikeProbability(0)-0.82) > 1e-6 {
		t.Errorf("first meeting hike probability = %v, want 0.82", result.HikeProbability(0))
	}
	if math.Abs(result.HoldProbability(1)-1) > 1e-6 {
		t.Errorf("second meeting hold probability = %v, want 1", result.HoldProbability(1))
	}
	if math.Abs(result.Probability(1, 25)-0.82) > 1e-6 {
		t.Errorf("P(+25bp) after second meeting = %v, want 0.82", result.Probability(1, 25))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	if got := dataStore.GetLastSync("quotes"); !got.Equal(date(2025, 3, 3)) {
		t.Errorf("last quote sync = %v, want 2025-03-03", got)
	}
}

// TestWatchWorkflowMissingContract verifies the chain aborts cleanly
// when a stored calendar references a contract with no quotes.
func TestWatchWorkflowMissingContract(t *testing.T) {
	ctx := context.Background()

	dataStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "fedwatch.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer dataStore.Close()

	meetingDates := []time.Time{date(2025, 3, 19), date(2025, 5, 7)}
	if err := dataStore.SaveMeetings(ctx, meetingDates); err != nil {
		t.Fatalf("SaveMeetings: %v", err)
	}
	if err := dataStore.SaveQuotes(ctx, []models.FuturesQuote{
		{Symbol: "ZQH25", Date: date(2025, 3, 3), Close: 95.29564516129032},
	}); err != nil {
		t.Fatalf("SaveQuotes: %v", err)
	}

	cal, err := fomc.NewCalendar(date(2025, 3, 3), meetingDates, 2)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}

	builder, err := tree.NewBuilder(cal, dataStore,
		models.RateRange{Lower: 4.50, Upper: 4.75}, tree.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	if _, err := builder.Build(ctx); err == nil {
		t.Fatal("expected error for missing May contract")
	}
}
