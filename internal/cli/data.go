package cli

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "fedwatch/internal/errors"
	"fedwatch/internal/models"
	"fedwatch/internal/pricing"
)

// loadMeetings reads the stored FOMC meeting calendar. An empty store is
// an error: the calendar must be imported before anything can be priced.
func loadMeetings(ctx context.Context, app *App) ([]time.Time, error) {
	if app.Store == nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, "quote store unavailable")
	}
	meetings, err := app.Store.GetMeetings(ctx)
	if err != nil {
		return nil, err
	}
	if len(meetings) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrDataNotFound,
			"no FOMC meetings stored, run 'fedwatch meetings import <file>' first")
	}
	return meetings, nil
}

func newMeetingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "Manage the FOMC meeting calendar",
		Long:  "Import and inspect the stored FOMC meeting dates.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Import meeting dates from a file",
		Long: `Reads FOMC meeting dates from a text file, one YYYY-MM-DD date per
line. Blank lines and lines starting with '#' are skipped. Imported
dates are merged into the stored calendar.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			if app.Store == nil {
				return apperrors.Wrap(apperrors.ErrDatabaseError, "quote store unavailable")
			}

			dates, err := readMeetingFile(args[0])
			if err != nil {
				return err
			}
			if len(dates) == 0 {
				return apperrors.NewValidationError("file", args[0], "no meeting dates found")
			}

			if err := app.Store.SaveMeetings(ctx, dates); err != nil {
				return err
			}
			if err := app.Store.SetLastSync("meetings", time.Now()); err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to record meeting sync time")
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"imported": len(dates),
					"first":    dates[0].Format("2006-01-02"),
					"last":     dates[len(dates)-1].Format("2006-01-02"),
				})
			}
			output.Success("✓ Imported %d meetings (%s through %s)",
				len(dates), FormatDate(dates[0]), FormatDate(dates[len(dates)-1]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored meeting dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			meetings, err := loadMeetings(ctx, app)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				dates := make([]string, 0, len(meetings))
				for _, m := range meetings {
					dates = append(dates, m.Format("2006-01-02"))
				}
				return output.JSON(map[string]interface{}{"meetings": dates})
			}

			now := time.Now()
			table := NewTable(output, "Date", "Month", "Status")
			for _, m := range meetings {
				status := output.ColoredString(ColorGreen, "upcoming")
				if !m.After(now) {
					status = output.ColoredString(ColorDim, "past")
				}
				table.AddRow(FormatDate(m), models.MonthOf(m).String(), status)
			}
			table.Render()
			return nil
		},
	})

	return cmd
}

// readMeetingFile parses one YYYY-MM-DD meeting date per line.
func readMeetingFile(path string) ([]time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var dates []time.Time
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		date, err := ParseDate(line)
		if err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrapf(err, "reading %s", path)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func newQuotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Manage stored futures quotes",
		Long:  "Import contract price files into the quote store and inspect them.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <dir>",
		Short: "Import contract CSV files into the quote store",
		Long: `Reads every per-contract CSV file in the directory (named by Globex
code, e.g. ZQH25.csv) and upserts the quotes into the store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			if app.Store == nil {
				return apperrors.Wrap(apperrors.ErrDatabaseError, "quote store unavailable")
			}

			paths, err := filepath.Glob(filepath.Join(args[0], "*.csv"))
			if err != nil {
				return apperrors.Wrapf(err, "scanning %s", args[0])
			}
			if len(paths) == 0 {
				return apperrors.Wrapf(apperrors.ErrDataNotFound, "no contract files in %s", args[0])
			}

			source := pricing.NewCSVSource(args[0], app.Logger)
			contracts := 0
			rows := 0
			for _, path := range paths {
				symbol := strings.TrimSuffix(filepath.Base(path), ".csv")
				quotes, err := source.ReadContract(symbol)
				if err != nil {
					output.Warning("⚠ Skipping %s: %v", symbol, err)
					continue
				}
				if err := app.Store.SaveQuotes(ctx, quotes); err != nil {
					return err
				}
				contracts++
				rows += len(quotes)
			}
			if err := app.Store.SetLastSync("quotes", time.Now()); err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to record quote sync time")
			}

			if output.IsJSON() {
				return output.JSON(map[string]int{
					"contracts": contracts,
					"quotes":    rows,
				})
			}
			output.Success("✓ Imported %d quotes across %d contracts", rows, contracts)
			return nil
		},
	})

	showCmd := &cobra.Command{
		Use:   "show <symbol>",
		Short: "Show stored quotes for a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			if app.Store == nil {
				return apperrors.Wrap(apperrors.ErrDatabaseError, "quote store unavailable")
			}

			limit, _ := cmd.Flags().GetInt("limit")
			symbol := strings.ToUpper(strings.TrimSpace(args[0]))

			quotes, err := app.Store.GetQuotes(ctx, symbol, time.Time{}, time.Now().AddDate(10, 0, 0))
			if err != nil {
				return err
			}
			if len(quotes) == 0 {
				return apperrors.NewPriceError(symbol, time.Time{}, apperrors.ErrPriceNotFound)
			}
			if limit > 0 && len(quotes) > limit {
				quotes = quotes[len(quotes)-limit:]
			}

			if output.IsJSON() {
				return output.JSON(quotes)
			}

			output.Bold("%s — %d quotes", symbol, len(quotes))
			output.Println()
			table := NewTable(output, "Date", "Open", "High", "Low", "Close", "Volume", "OI")
			for _, q := range quotes {
				table.AddRow(
					q.Date.Format("2006-01-02"),
					FormatPrice(q.Open),
					FormatPrice(q.High),
					FormatPrice(q.Low),
					FormatPrice(q.Close),
					formatCount(q.Volume),
					formatCount(q.OpenInterest),
				)
			}
			table.Render()
			return nil
		},
	}
	showCmd.Flags().Int("limit", 20, "most recent quotes to show (0 for all)")
	cmd.AddCommand(showCmd)

	return cmd
}

func formatCount(n int64) string {
	if n == 0 {
		return "-"
	}
	return strconv.FormatInt(n, 10)
}
