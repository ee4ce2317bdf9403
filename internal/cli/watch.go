package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	apperrors "fedwatch/internal/errors"
	"fedwatch/internal/fomc"
	"fedwatch/internal/models"
	"fedwatch/internal/tree"
)

// watchResult is the JSON shape of a completed watch run.
type watchResult struct {
	WatchDate string              `json:"watch_date"`
	LiveRange string              `json:"live_range"`
	Levels    []string            `json:"levels"`
	Meetings  []watchMeetingJSON  `json:"meetings"`
	Warnings  []string            `json:"warnings,omitempty"`
}

type watchMeetingJSON struct {
	Date          string             `json:"date"`
	Contract      string             `json:"contract"`
	Price         float64            `json:"price"`
	ImpliedRate   float64            `json:"implied_post_rate"`
	HoldProb      float64            `json:"hold"`
	HikeProb      float64            `json:"hike"`
	CutProb       float64            `json:"cut"`
	Probabilities map[string]float64 `json:"probabilities"`
}

func newWatchCmd(app *App) *cobra.Command {
	var (
		dateFlag     string
		meetingsFlag int
		stepFlag     int
		maxStepsFlag int
		rangeFlag    string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Compute rate move probabilities for upcoming meetings",
		Long: `Builds the probability tree across upcoming FOMC meetings from fed
funds futures prices and prints the per-meeting probability table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			watchDate := time.Now()
			if dateFlag != "" {
				parsed, err := ParseDate(dateFlag)
				if err != nil {
					return err
				}
				watchDate = parsed
			}

			if app.Prices == nil {
				return apperrors.Wrap(apperrors.ErrConfigInvalid, "no price source available")
			}

			meetings, err := loadMeetings(ctx, app)
			if err != nil {
				return err
			}

			liveRange, err := resolveRateRange(ctx, app, rangeFlag, watchDate)
			if err != nil {
				return err
			}

			cal, err := fomc.NewCalendar(watchDate, meetings, meetingsFlag)
			if err != nil {
				return err
			}

			cfg := tree.Config{
				StepBasisPoints: stepFlag,
				MaxSteps:        maxStepsFlag,
				Tolerance:       app.Config.Watch.Tolerance,
			}
			builder, err := tree.NewBuilder(cal, app.Prices, liveRange, cfg, app.Logger)
			if err != nil {
				return err
			}

			result, err := builder.Build(ctx)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(toWatchResult(result))
			}
			renderWatchResult(output, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "watch date in YYYY-MM-DD (default: today)")
	cmd.Flags().IntVarP(&meetingsFlag, "meetings", "n", 0, "number of upcoming meetings")
	cmd.Flags().IntVar(&stepFlag, "step", 0, "candidate move size in basis points")
	cmd.Flags().IntVar(&maxStepsFlag, "max-steps", 0, "widest candidate move in steps")
	cmd.Flags().StringVar(&rangeFlag, "range", "", `live target range, e.g. "4.50-4.75"`)

	// Unset flags fall back to configured defaults.
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if meetingsFlag == 0 {
			meetingsFlag = app.Config.Watch.NumUpcoming
		}
		if stepFlag == 0 {
			stepFlag = app.Config.Watch.StepBasisPoints
		}
		if maxStepsFlag == 0 {
			maxStepsFlag = app.Config.Watch.MaxSteps
		}
	}

	return cmd
}

// resolveRateRange picks the live target range: flag, then config, then FRED.
func resolveRateRange(ctx context.Context, app *App, rangeFlag string, watchDate time.Time) (models.RateRange, error) {
	if rangeFlag != "" {
		return ParseRateRange(rangeFlag)
	}
	if app.Config.RateRangeSet() {
		return models.RateRange{
			Lower: app.Config.Watch.RateLower,
			Upper: app.Config.Watch.RateUpper,
		}, nil
	}
	if app.Fred == nil {
		return models.RateRange{}, apperrors.Wrap(apperrors.ErrRateUnavailable,
			"no target range configured and FRED lookups disabled")
	}
	return app.Fred.TargetRange(ctx, watchDate)
}

func toWatchResult(result *tree.Result) watchResult {
	table := result.Table()
	out := watchResult{
		WatchDate: result.WatchDate.Format("2006-01-02"),
		LiveRange: result.LiveRange.String(),
		Levels:    table.Labels,
	}
	for _, w := range result.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	for i, m := range result.Meetings {
		probs := make(map[string]float64, len(m.Dist))
		for _, offset := range m.Dist.Levels() {
			probs[result.LevelRange(offset).String()] = m.Dist[offset]
		}
		out.Meetings = append(out.Meetings, watchMeetingJSON{
			Date:          m.Date.Format("2006-01-02"),
			Contract:      m.Contract,
			Price:         m.Price,
			ImpliedRate:   m.PostRate,
			HoldProb:      result.HoldProbability(i),
			HikeProb:      result.HikeProbability(i),
			CutProb:       result.CutProbability(i),
			Probabilities: probs,
		})
	}
	return out
}

func renderWatchResult(output *Output, result *tree.Result) {
	output.Bold("FedWatch — %s (target %s)", FormatDate(result.WatchDate), result.LiveRange.String())
	output.Println()

	// Meetings × levels probability grid
	grid := result.Table()
	headers := append([]string{"Meeting"}, grid.Labels...)
	table := NewTable(output, headers...)
	for _, row := range grid.Rows {
		cells := []string{FormatDate(row.Meeting)}
		for _, p := range row.Probs {
			cells = append(cells, output.Probability(p))
		}
		table.AddRow(cells...)
	}
	table.Render()
	output.Println()

	// Per-meeting move summary
	summary := NewTable(output, "Meeting", "Contract", "Price", "Implied", "Cut", "Hold", "Hike")
	for i, m := range result.Meetings {
		summary.AddRow(
			FormatDate(m.Date),
			m.Contract,
			FormatPrice(m.Price),
			FormatRate(m.PostRate),
			output.Probability(result.CutProbability(i)),
			output.Probability(result.HoldProbability(i)),
			output.Probability(result.HikeProbability(i)),
		)
	}
	summary.Render()

	for _, w := range result.Warnings {
		output.Warning("⚠ %s", w.String())
	}
}
