package cli

import (
	"time"

	"github.com/spf13/cobra"

	"fedwatch/internal/fomc"
)

// calendarJSON is the JSON shape of the contract calendar.
type calendarJSON struct {
	WatchDate string              `json:"watch_date"`
	Months    []calendarMonthJSON `json:"months"`
}

type calendarMonthJSON struct {
	Month    string `json:"month"`
	Contract string `json:"contract"`
	Meeting  string `json:"meeting,omitempty"`
	Ordinal  int    `json:"ordinal,omitempty"`
}

func newCalendarCmd(app *App) *cobra.Command {
	var (
		dateFlag     string
		meetingsFlag int
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the contract months required for a watch date",
		Long: `Lists the contract months whose futures prices are needed for the
requested number of upcoming meetings, with their Globex codes and the
meeting each month contains.`,
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

			meetings, err := loadMeetings(ctx, app)
			if err != nil {
				return err
			}

			cal, err := fomc.NewCalendar(watchDate, meetings, meetingsFlag)
			if err != nil {
				return err
			}

			summary, err := cal.Summary()
			if err != nil {
				return err
			}

			if output.IsJSON() {
				out := calendarJSON{WatchDate: cal.WatchDate().Format("2006-01-02")}
				for _, info := range summary {
					month := calendarMonthJSON{
						Month:    info.Month.String(),
						Contract: info.Contract,
						Ordinal:  info.Ordinal,
					}
					if info.HasMeeting {
						month.Meeting = info.Meeting.Format("2006-01-02")
					}
					out.Months = append(out.Months, month)
				}
				return output.JSON(out)
			}

			output.Bold("Contract calendar — %s, %d upcoming meetings",
				FormatDate(cal.WatchDate()), cal.NumUpcoming())
			output.Println()

			table := NewTable(output, "Month", "Contract", "Meeting", "Order")
			for _, info := range summary {
				meeting := "-"
				order := ""
				if info.HasMeeting {
					meeting = FormatDate(info.Meeting)
					switch {
					case info.Ordinal > 0:
						order = output.ColoredString(ColorGreen, FormatOrdinal(info.Ordinal))
					case info.Ordinal < 0:
						order = output.ColoredString(ColorDim, "past")
					}
				}
				table.AddRow(info.Month.String(), info.Contract, meeting, order)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "watch date in YYYY-MM-DD (default: today)")
	cmd.Flags().IntVarP(&meetingsFlag, "meetings", "n", 0, "number of upcoming meetings")

	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if meetingsFlag == 0 {
			meetingsFlag = app.Config.Watch.NumUpcoming
		}
	}

	return cmd
}
