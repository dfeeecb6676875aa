package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lifelog-coach/internal/app"
	"lifelog-coach/internal/model"
)

var (
	feedbackDate string
	insightsSave bool
)

var feedbackCmd = &cobra.Command{
	Use:       "feedback [morning|evening]",
	Short:     "Get the daily coaching feedback",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(model.FeedbackMorning), string(model.FeedbackEvening)},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			kind := a.Service.CurrentSlot()
			if len(args) == 1 {
				kind = model.FeedbackKind(args[0])
			}
			f, err := a.Service.RequestDailyFeedback(cmd.Context(), feedbackDate, kind)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), f)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[%s] %s\n%s\n", f.Kind, f.Date, f.Content)
			for _, p := range f.Prescriptions {
				fmt.Fprintf(out, "  - %s\n", p)
			}
			if f.RiskLevel != "" {
				fmt.Fprintf(out, "Risk: %s %s\n", f.RiskLevel, f.RiskReason)
			}
			return nil
		})
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Analyse the last 7 days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			in, err := a.Service.Insights(cmd.Context(), insightsSave)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), in)
			}
			out := cmd.OutOrStdout()
			writeStats(out, in.Stats)
			fmt.Fprintln(out, "\nPatterns:")
			for _, p := range in.Analysis.Patterns {
				fmt.Fprintf(out, "  - %s\n", p)
			}
			if len(in.Analysis.Factors) > 0 {
				fmt.Fprintln(out, "Factors:")
				for _, f := range in.Analysis.Factors {
					fmt.Fprintf(out, "  - %s (%s): %s\n", f.Name, f.Impact, f.Evidence)
				}
			}
			fmt.Fprintf(out, "Recommendations:\n  - %s\n", strings.Join(in.Analysis.Recommendations, "\n  - "))
			return nil
		})
	},
}

func init() {
	feedbackCmd.Flags().StringVar(&feedbackDate, "date", "", "Date YYYY-MM-DD (default today)")
	insightsCmd.Flags().BoolVar(&insightsSave, "save", false, "Store the analysis as a morning feedback")
	rootCmd.AddCommand(feedbackCmd, insightsCmd)
}
