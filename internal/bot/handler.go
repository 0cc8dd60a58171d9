// Package bot routes inbound Telegram updates to the weather resolver and
// the user registry, and renders replies.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/pogodka/weather-bot/internal/api/metrics"
	"github.com/pogodka/weather-bot/internal/core/domain"
	"github.com/pogodka/weather-bot/internal/core/ports"
)

const (
	callbackWeather = "weather"
	callbackHelp    = "help"
)

// Sender is the slice of the Telegram client the handler needs. Satisfied by
// *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Recorder accepts identity sightings for asynchronous persistence.
// Satisfied by the queue dispatcher.
type Recorder interface {
	Enqueue(id domain.Identity)
}

// Handler owns the per-update control flow. Every update is processed on its
// own goroutine; the registry write is enqueued fire-and-forget, so the reply
// never waits on the database.
type Handler struct {
	sender   Sender
	resolver ports.WeatherResolver
	recorder Recorder
	log      zerolog.Logger
}

func NewHandler(sender Sender, resolver ports.WeatherResolver, recorder Recorder, log zerolog.Logger) *Handler {
	return &Handler{
		sender:   sender,
		resolver: resolver,
		recorder: recorder,
		log:      log,
	}
}

var mainKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🌤 Узнать погоду", callbackWeather),
		tgbotapi.NewInlineKeyboardButtonData("ℹ️ Помощь", callbackHelp),
	),
)

// Run consumes the update channel until ctx is cancelled or the channel
// closes. Each update gets its own goroutine so a slow provider call never
// stalls other users.
func (h *Handler) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go h.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches one update. A panic in a single update must not
// take the polling loop down with it.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Msg("recovered while handling update")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From != nil {
		h.recorder.Enqueue(identityFrom(msg.From))
	}

	if msg.IsCommand() {
		metrics.MessagesTotal.WithLabelValues("command").Inc()
		h.handleCommand(ctx, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return
	}

	metrics.MessagesTotal.WithLabelValues("text").Inc()
	h.log.Info().Int64("user_id", userID(msg.From)).Str("city", text).Msg("free-text weather request")
	h.replyWeather(ctx, msg.Chat.ID, text)
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.log.Info().Int64("user_id", userID(msg.From)).Msg("user started the bot")
		reply := tgbotapi.NewMessage(msg.Chat.ID, replyGreeting)
		reply.ReplyMarkup = mainKeyboard
		h.send(reply)

	case "weather":
		city := strings.TrimSpace(msg.CommandArguments())
		if city == "" {
			h.send(tgbotapi.NewMessage(msg.Chat.ID, replyUsage))
			return
		}
		h.replyWeather(ctx, msg.Chat.ID, city)

	default:
		// Unknown commands are ignored, same as unaddressed slash text.
	}
}

func (h *Handler) handleCallback(cb *tgbotapi.CallbackQuery) {
	metrics.MessagesTotal.WithLabelValues("callback").Inc()
	if cb.From != nil {
		h.recorder.Enqueue(identityFrom(cb.From))
	}

	// Acknowledge first so the client stops its spinner.
	if _, err := h.sender.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		h.log.Warn().Err(err).Str("callback_id", cb.ID).Msg("failed to answer callback")
	}

	if cb.Message == nil {
		return
	}

	switch cb.Data {
	case callbackWeather:
		h.send(tgbotapi.NewMessage(cb.Message.Chat.ID, replyAskCity))
	case callbackHelp:
		h.send(tgbotapi.NewMessage(cb.Message.Chat.ID, replyHelp))
	}
}

// replyWeather resolves a city and sends either the report or the fixed
// not-found message. Resolver errors never escape: the user always gets an
// answer.
func (h *Handler) replyWeather(ctx context.Context, chatID int64, city string) {
	report, err := h.resolver.Resolve(ctx, city)
	if err != nil {
		h.send(tgbotapi.NewMessage(chatID, replyNotFound))
		return
	}
	if !report.Found() {
		h.send(tgbotapi.NewMessage(chatID, replyNotFound))
		return
	}
	h.send(tgbotapi.NewMessage(chatID, formatReport(city, report)))
}

func (h *Handler) send(msg tgbotapi.MessageConfig) {
	if _, err := h.sender.Send(msg); err != nil {
		h.log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("failed to send reply")
	}
}

func identityFrom(u *tgbotapi.User) domain.Identity {
	return domain.Identity{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func userID(u *tgbotapi.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
