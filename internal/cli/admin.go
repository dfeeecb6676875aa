package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"lifelog-coach/internal/analytics"
	"lifelog-coach/internal/app"
	"lifelog-coach/internal/model"
)

var (
	clearYes    bool
	journalDate string
)

func writeStats(out io.Writer, s model.WeeklyStats) {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	fmt.Fprintf(out, "Last 7 days: %d records\n", s.TotalLogs)
	fmt.Fprintf(out, "Average sleep: %sh | Activity: %smin | Average mood: %s/5\n", f(s.AvgSleep), f(s.TotalActivity), f(s.AvgMood))
	if s.LatestWeight > 0 {
		fmt.Fprintf(out, "Weight: %skg (%+.1fkg)\n", f(s.LatestWeight), s.WeightChange)
	}
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the weekly home-screen figures",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			s := a.Service.WeeklyStats()
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), s)
			}
			writeStats(cmd.OutOrStdout(), s)
			return nil
		})
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Replace local data with a week of demo data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			if err := a.Service.LoadDemo(cmd.Context()); err != nil {
				return err
			}
			logs, _ := a.Service.Logs("", "")
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d demo records\n", len(logs))
			return nil
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all local records, feedback and the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to clear without --yes")
		}
		return withApp(cmd.Context(), func(a *app.App) error {
			a.Service.ClearAll(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "All local data cleared.")
			return nil
		})
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Summarise the AI exchange journal for one day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			loc := a.Service.Location()
			day := time.Now().In(loc)
			if journalDate != "" {
				parsed, err := time.ParseInLocation(model.DateLayout, journalDate, loc)
				if err != nil {
					return fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", journalDate)
				}
				day = parsed
			}
			events, err := a.Journal.LoadInteractions()
			if err != nil {
				return fmt.Errorf("load journal: %w", err)
			}
			stats := analytics.AnalyzeDailyLogs(events, day)
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), stats)
			}
			fmt.Fprintln(cmd.OutOrStdout(), stats.GenerateReportSummary())
			return nil
		})
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm deletion")
	journalCmd.Flags().StringVar(&journalDate, "date", "", "Date YYYY-MM-DD (default today)")
	rootCmd.AddCommand(statsCmd, demoCmd, clearCmd, journalCmd)
}
