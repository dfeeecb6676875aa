// Package cli implements the lifelog command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lifelog-coach/internal/app"
	"lifelog-coach/internal/config"
)

var formatFlag string

var rootCmd = &cobra.Command{
	Use:   "lifelog",
	Short: "Health lifelog with AI coaching",
	Long: "lifelog records meals, sleep, activity, weight and mood, and turns them into daily " +
		"coaching feedback, weekly insights and per-day CRM summaries.",
	SilenceUsage: true,
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
}

// withApp builds the application from the environment, runs fn and closes it.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func jsonOutput() bool {
	return formatFlag == "json"
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
