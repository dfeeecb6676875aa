package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lifelog-coach/internal/crm"
	"lifelog-coach/internal/model"
	"lifelog-coach/internal/service"
	"lifelog-coach/internal/store"
)

const helpText = `Lifelog coach commands:
/log <diet|sleep|activity|weight|mood> <value> [YYYY-MM-DD] [note]
/logs [YYYY-MM-DD]
/feedback [morning|evening] [YYYY-MM-DD]
/insights
/stats
/export [from] [to]
/demo
/clear
Send a meal photo to estimate its nutrition.`

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !b.isAllowed(msg.From.ID) {
		if msg.From != nil {
			log.Printf("⚠️ Unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		}
		return
	}
	b.remember(msg.Chat.ID)

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	default:
		b.sendMessage(msg.Chat.ID, b.escapeIfNeeded(helpText))
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start", "help":
		b.sendMessage(chatID, b.escapeIfNeeded(helpText))
	case "log":
		b.handleLog(ctx, chatID, args)
	case "logs":
		date := ""
		if len(args) > 0 {
			date = args[0]
		} else {
			date = b.svc.Today()
		}
		logs, err := b.svc.Logs(date, "")
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.sendMessage(chatID, formatLogs(date, logs, b.svc.Location(), b.html()))
	case "feedback":
		kind := b.svc.CurrentSlot()
		date := ""
		for _, a := range args {
			switch {
			case model.FeedbackKind(a).Daily():
				kind = model.FeedbackKind(a)
			default:
				date = a
			}
		}
		f, err := b.svc.RequestDailyFeedback(ctx, date, kind)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.sendMessage(chatID, formatFeedback(f, b.html()))
	case "insights":
		out, err := b.svc.Insights(ctx, false)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.sendMessage(chatID, formatInsights(out, b.html()))
	case "stats":
		b.sendMessage(chatID, formatStats(b.svc.WeeklyStats(), b.html()))
	case "export":
		var rng *crm.DateRange
		switch len(args) {
		case 0:
		case 1:
			rng = &crm.DateRange{From: args[0], To: args[0]}
		default:
			rng = &crm.DateRange{From: args[0], To: args[1]}
		}
		days, err := b.svc.ExportCRM(b.svc.UserID(), rng)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.sendMessage(chatID, formatDays(days, b.html()))
	case "demo":
		if err := b.svc.LoadDemo(ctx); err != nil {
			b.replyError(chatID, err)
			return
		}
		b.sendMessage(chatID, "Demo data loaded.")
	case "clear":
		b.svc.ClearAll(ctx)
		b.sendMessage(chatID, "All local data cleared.")
	default:
		b.sendMessage(chatID, "Unknown command. Try /help")
	}
}

// handleLog parses "/log <type> <value> [date] [note...]".
func (b *Bot) handleLog(ctx context.Context, chatID int64, args []string) {
	if len(args) < 2 {
		b.sendMessage(chatID, "Usage: /log <diet|sleep|activity|weight|mood> <value> [YYYY-MM-DD] [note]")
		return
	}
	kind := model.Kind(strings.ToLower(args[0]))
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		b.sendMessage(chatID, "The value must be a number.")
		return
	}
	rest := args[2:]
	date := ""
	if len(rest) > 0 && model.ValidDate(rest[0]) {
		date = rest[0]
		rest = rest[1:]
	}
	note := strings.Join(rest, " ")

	rec, err := b.svc.SubmitLog(ctx, service.LogInput{
		Date:     date,
		Kind:     kind,
		Value:    value,
		Metadata: quickMetadata(kind, value, note),
	})
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sendMessage(chatID, b.escapeIfNeeded(fmt.Sprintf("✅ Logged %s for %s: %s", strings.ToLower(rec.Kind.Label()), rec.Date, describe(rec))))
}

// quickMetadata maps the one-line chat form onto the kind-specific fields.
func quickMetadata(kind model.Kind, value float64, note string) model.Metadata {
	switch kind {
	case model.KindDiet:
		return model.Metadata{Payload: model.DietMeta{Calories: value, MealDescription: note}}
	case model.KindActivity:
		return model.Metadata{Payload: model.ActivityMeta{Duration: value, ActivityType: note}}
	case model.KindMood:
		return model.Metadata{Payload: model.MoodMeta{MoodScore: int(value), MoodNote: note}}
	}
	return model.Metadata{Description: note}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	// Telegram lists sizes smallest first
	photo := msg.Photo[len(msg.Photo)-1]
	if b.maxImage > 0 && int64(photo.FileSize) > b.maxImage {
		b.sendMessage(msg.Chat.ID, "The photo is too large to analyse.")
		return
	}
	data, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		log.Printf("❌ photo download failed: %v", err)
		b.sendMessage(msg.Chat.ID, "Could not download the photo. Please try again.")
		return
	}

	result, err := b.svc.AnalyzeFood(ctx, data, "")
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, formatNutrition(result, b.html()))
	out.ParseMode = b.parseMode
	if result.Success {
		b.mu.Lock()
		b.meals[msg.Chat.ID] = result
		b.mu.Unlock()
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Save as meal", saveMealCmd),
			),
		)
	}
	if _, err := b.s.Send(out); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.files.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	limit := b.maxImage
	if limit <= 0 {
		limit = 10 << 20
	}
	// One byte over the limit lets the service reject the image as oversized.
	content, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	log.Printf("📥 Downloaded photo, size: %d bytes", len(content))
	return content, nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.From == nil || !b.isAllowed(cb.From.ID) {
		return
	}
	chatID := cb.Message.Chat.ID
	switch cb.Data {
	case saveMealCmd:
		b.mu.Lock()
		result, ok := b.meals[chatID]
		delete(b.meals, chatID)
		b.mu.Unlock()
		if !ok {
			b.sendMessage(chatID, "Nothing to save. Send a meal photo first.")
			return
		}
		rec, err := b.svc.SubmitFoodLog(ctx, service.FoodLogInput{Result: result})
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.sendMessage(chatID, b.escapeIfNeeded(fmt.Sprintf("✅ Meal saved for %s: %s", rec.Date, describe(rec))))
	}
}

// replyError turns a service error into a user-facing message.
func (b *Bot) replyError(chatID int64, err error) {
	var (
		ve *service.ValidationError
		re *service.ResourceError
	)
	text := "Sorry, something went wrong."
	switch {
	case errors.As(err, &ve):
		text = "⚠️ " + ve.Error()
	case errors.As(err, &re):
		text = "⚠️ " + re.Message
	case errors.Is(err, service.ErrFeedbackInFlight):
		text = "Feedback is already being prepared, please wait a moment."
	case errors.Is(err, store.ErrNotFound):
		text = "Record not found."
	default:
		log.Printf("❌ telegram request failed: %v", err)
	}
	b.sendMessage(chatID, b.escapeIfNeeded(text))
}
