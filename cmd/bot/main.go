package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"snapstudy/internal/branding"
	"snapstudy/internal/infra"
)

const (
	statusPollInterval = 5 * time.Second
	generationTimeout  = 15 * time.Minute
)

const welcomeText = "Hi! Send me a topic and I will turn it into a short lesson video.\n\n" +
	"Commands:\n" +
	"/quota - how many videos you have left today"

type bot struct {
	api    *tgbotapi.BotAPI
	client *apiClient
	logger infra.Logger

	mu     sync.Mutex
	active map[int64]bool
}

func main() {
	_ = godotenv.Load()

	logger := infra.NewLogger(os.Getenv("APP_ENV"))

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		logger.Fatal().Msg("TELEGRAM_BOT_TOKEN is required")
	}
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to telegram")
	}
	logger.Info().Str("username", api.Self.UserName).Msg("bot authorized")

	b := &bot{
		api:    api,
		client: newAPIClient(baseURL),
		logger: logger,
		active: make(map[int64]bool),
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		cancel()
		api.StopReceivingUpdates()
	}()

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	for update := range api.GetUpdatesChan(updateCfg) {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		go b.handleMessage(ctx, update.Message)
	}
	logger.Info().Msg("bot stopped")
}

func (b *bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	locale := ""
	if msg.From != nil {
		locale = msg.From.LanguageCode
	}

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, chatID, msg.Command())
	default:
		b.generate(ctx, chatID, text, locale)
	}
}

func (b *bot) handleCommand(ctx context.Context, chatID int64, command string) {
	switch command {
	case "start", "help":
		b.send(chatID, welcomeText)
	case "quota":
		limit, remaining, err := b.client.remainingQuota(ctx, chatID)
		if err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("quota lookup failed")
			b.send(chatID, "Could not check your quota right now, try again in a bit.")
			return
		}
		b.send(chatID, fmt.Sprintf("You have %d of %d videos left today.", remaining, limit))
	default:
		b.send(chatID, "Unknown command. Send a topic to generate a video, or /help.")
	}
}

func (b *bot) generate(ctx context.Context, chatID int64, topic, locale string) {
	b.mu.Lock()
	if b.active[chatID] {
		b.mu.Unlock()
		b.send(chatID, "One video at a time please. Your current one is still rendering.")
		return
	}
	b.active[chatID] = true
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.active, chatID)
		b.mu.Unlock()
	}()

	submitted, err := b.client.submit(ctx, chatID, topic, locale)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests {
			b.send(chatID, "You have used up today's videos. Come back tomorrow!")
			return
		}
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("submit failed")
		b.send(chatID, "Could not start the generation, try again in a bit.")
		return
	}

	progressID := b.send(chatID, fmt.Sprintf("Working on \"%s\"...", topic))

	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	lastProgress := ""
	for {
		select {
		case <-ctx.Done():
			b.edit(chatID, progressID, "This is taking too long, giving up. The video may still appear; try again later.")
			return
		case <-time.After(statusPollInterval):
		}

		status, err := b.client.status(ctx, chatID, submitted.JobID)
		if err != nil {
			b.logger.Warn().Err(err).Str("job_id", submitted.JobID).Msg("status poll failed")
			continue
		}

		switch status.State {
		case "succeeded":
			b.edit(chatID, progressID, "Done! Here is your lesson:")
			b.deliver(chatID, status)
			return
		case "failed", "timed_out", "cancelled":
			text := status.Message
			if text == "" {
				text = "Something went wrong. Please try again."
			}
			b.edit(chatID, progressID, text)
			return
		default:
			if status.Progress != "" && status.Progress != lastProgress {
				lastProgress = status.Progress
				b.edit(chatID, progressID, fmt.Sprintf("Working on \"%s\"... (%s)", topic, status.Progress))
			}
		}
	}
}

// deliver sends the finished video link and one card per scene.
func (b *bot) deliver(chatID int64, status *statusResponse) {
	if status.Result == nil {
		return
	}
	for i, scene := range status.Result.Scenes {
		caption := fmt.Sprintf("%d. %s\n%s", i+1, branding.DisplayTitle(scene.Title), scene.Text)
		if len(scene.Images) > 0 {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(scene.Images[0]))
			photo.Caption = caption
			if _, err := b.api.Send(photo); err == nil {
				continue
			}
		}
		b.send(chatID, caption)
	}
	b.send(chatID, status.Result.VideoURL)
}

// send posts a message and returns its id, or 0 on failure.
func (b *bot) send(chatID int64, text string) int {
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("send failed")
		return 0
	}
	return sent.MessageID
}

func (b *bot) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.send(chatID, text)
		return
	}
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("edit failed")
	}
}
