// Package telegram is a chat front end to the lifelog service: logging, feedback,
// insights, exports and food photo analysis.
package telegram

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lifelog-coach/internal/model"
	"lifelog-coach/internal/service"
)

const saveMealCmd = "save_meal"

type Bot struct {
	api       *tgbotapi.BotAPI
	s         sender
	files     fileLinker
	svc       *service.Service
	parseMode string
	http      *http.Client
	maxImage  int64

	allowed map[int64]bool

	mu sync.Mutex
	// chats that have talked to the bot; scheduled feedback is pushed to them
	chats map[int64]bool
	// last successful photo analysis per chat, waiting for the save button
	meals map[int64]model.NutritionResult
}

func New(botToken string, svc *service.Service, parseMode string, allowedUsers []int64, maxImageBytes int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := newBot(botAPISender{api: api}, api, svc, parseMode, allowedUsers, maxImageBytes)
	b.api = api
	return b, nil
}

func newBot(s sender, files fileLinker, svc *service.Service, parseMode string, allowedUsers []int64, maxImageBytes int64) *Bot {
	allowed := make(map[int64]bool, len(allowedUsers))
	for _, id := range allowedUsers {
		allowed[id] = true
	}
	return &Bot{
		s:         s,
		files:     files,
		svc:       svc,
		parseMode: parseMode,
		http:      &http.Client{Timeout: 30 * time.Second},
		maxImage:  maxImageBytes,
		allowed:   allowed,
		chats:     make(map[int64]bool),
		meals:     make(map[int64]model.NutritionResult),
	}
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	log.Printf("✅ Telegram bot @%s started", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
				continue
			}
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) isAllowed(userID int64) bool {
	return len(b.allowed) == 0 || b.allowed[userID]
}

func (b *Bot) remember(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chats[chatID] = true
}

// NotifyFeedback pushes a feedback message to every chat that has used the bot.
func (b *Bot) NotifyFeedback(f model.Feedback) {
	b.mu.Lock()
	chats := make([]int64, 0, len(b.chats))
	for id := range b.chats {
		chats = append(chats, id)
	}
	b.mu.Unlock()

	text := formatFeedback(f, b.html())
	for _, id := range chats {
		b.sendMessage(id, text)
	}
}

func (b *Bot) html() bool {
	return strings.EqualFold(b.parseMode, tgbotapi.ModeHTML)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = b.parseMode
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
