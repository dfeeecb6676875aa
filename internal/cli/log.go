package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lifelog-coach/internal/app"
	"lifelog-coach/internal/model"
	"lifelog-coach/internal/service"
)

var (
	logDate string
	logNote string
	logMeta string

	logsDate string
	logsType string
)

var logCmd = &cobra.Command{
	Use:   "log <diet|sleep|activity|weight|mood> <value>",
	Short: "Record a health event",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := model.Kind(args[0])
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}
		meta, err := model.DecodeMetadata(kind, json.RawMessage(logMeta))
		if err != nil {
			return fmt.Errorf("invalid --meta: %w", err)
		}
		if logNote != "" {
			meta.Description = logNote
		}
		return withApp(cmd.Context(), func(a *app.App) error {
			rec, err := a.Service.SubmitLog(cmd.Context(), service.LogInput{
				Date:     logDate,
				Kind:     kind,
				Value:    value,
				Metadata: meta,
			})
			if err != nil {
				return err
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s %s%s for %s (id %s)\n", rec.Kind, strconv.FormatFloat(rec.Value, 'f', -1, 64), rec.Kind.Unit(), rec.Date, rec.ID)
			return nil
		})
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List recorded events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			logs, err := a.Service.Logs(logsDate, model.Kind(logsType))
			if err != nil {
				return err
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), logs)
			}
			if len(logs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No records.")
				return nil
			}
			loc := a.Service.Location()
			for _, r := range logs {
				line := fmt.Sprintf("%s %s  %-8s %s%s", r.Date, r.Timestamp.In(loc).Format("15:04"), r.Kind, strconv.FormatFloat(r.Value, 'f', -1, 64), r.Kind.Unit())
				if d := r.Describe(); d != "" {
					line += "  " + d
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a recorded event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			if err := a.Service.DeleteLog(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	logCmd.Flags().StringVar(&logDate, "date", "", "Date YYYY-MM-DD (default today)")
	logCmd.Flags().StringVar(&logNote, "note", "", "Free-text description")
	logCmd.Flags().StringVar(&logMeta, "meta", "", `Type-specific JSON, e.g. '{"moodScore":4}'`)
	logsCmd.Flags().StringVar(&logsDate, "date", "", "Only this date YYYY-MM-DD")
	logsCmd.Flags().StringVar(&logsType, "type", "", "Only this record type")

	rootCmd.AddCommand(logCmd, logsCmd, deleteCmd)
}
