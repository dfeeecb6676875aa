package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lifelog-coach/internal/app"
	"lifelog-coach/internal/httpapi"
	"lifelog-coach/internal/model"
	"lifelog-coach/internal/telegram"
)

var (
	serveAddr   string
	serveNoBot  bool
	serveNoCron bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the feedback scheduler and the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withApp(ctx, func(a *app.App) error {
			addr := a.Config.HTTPAddr
			if serveAddr != "" {
				addr = serveAddr
			}

			var bot *telegram.Bot
			if a.Config.TelegramBotToken != "" && !serveNoBot {
				b, err := telegram.New(a.Config.TelegramBotToken, a.Service, a.Config.MessageParseMode,
					a.Config.TelegramAllowedUsers, a.Config.MaxImageBytes)
				if err != nil {
					return fmt.Errorf("start telegram bot: %w", err)
				}
				bot = b
				go bot.Start(ctx)
			}

			if !serveNoCron {
				var notify func(model.Feedback)
				if bot != nil {
					notify = bot.NotifyFeedback
				}
				if err := a.StartScheduler(notify); err != nil {
					return fmt.Errorf("start scheduler: %w", err)
				}
			}

			// Room for the base64 overhead of a full-size image.
			server := httpapi.NewServer(a.Service, addr, a.Config.MaxImageBytes*2)
			errc := make(chan error, 1)
			go func() { errc <- server.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			log.Printf("📥 Shutting down")
			shutdownErr := server.Stop()
			if err := <-errc; err != nil {
				return err
			}
			if shutdownErr != nil {
				return fmt.Errorf("shutdown: %w", shutdownErr)
			}
			return nil
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default HTTP_ADDR)")
	serveCmd.Flags().BoolVar(&serveNoBot, "no-bot", false, "Do not start the Telegram bot")
	serveCmd.Flags().BoolVar(&serveNoCron, "no-cron", false, "Do not schedule morning and evening feedback")
	rootCmd.AddCommand(serveCmd)
}
