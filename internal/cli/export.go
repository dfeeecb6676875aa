package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lifelog-coach/internal/app"
	"lifelog-coach/internal/crm"
)

var (
	exportCRM  bool
	exportFrom string
	exportTo   string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export raw data or per-day CRM summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			var v any
			if exportCRM {
				var rng *crm.DateRange
				if exportFrom != "" || exportTo != "" {
					rng = &crm.DateRange{From: exportFrom, To: exportTo}
				}
				days, err := a.Service.ExportCRM(a.Service.UserID(), rng)
				if err != nil {
					return err
				}
				if !jsonOutput() && exportOut == "" {
					for _, d := range days {
						fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n%s\n\n", d.Date, d.Summary, d.MessageLog)
					}
					return nil
				}
				v = days
			} else {
				v = a.Service.ExportRawData()
			}

			if exportOut == "" {
				return printJSON(cmd.OutOrStdout(), v)
			}
			b, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return fmt.Errorf("encode export: %w", err)
			}
			path := exportOut
			if path == "-" || path == "auto" {
				path = a.Service.ExportFileName()
			}
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportCRM, "crm", false, "Export per-day CRM summaries instead of raw data")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First day YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last day YYYY-MM-DD")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", `Write to file ("auto" for lifelog-export-<date>.json)`)
	rootCmd.AddCommand(exportCmd)
}
