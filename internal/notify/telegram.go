// Package notify pings managers in Telegram about confirmed bookings.
package notify

import (
	"encoding/json"
	"fmt"

	"showbook/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier subscribes to booking events and forwards confirmations
// to a manager chat. A nil notifier is a valid no-op.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger.With().Str("component", "notify").Logger(),
	}, nil
}

// Subscribe attaches the notifier to the event bus.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	if n == nil {
		return
	}
	bus.Subscribe(events.EventBookingConfirmed, n.onBookingConfirmed)
}

func (n *TelegramNotifier) onBookingConfirmed(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Msg("decode booking event")
		return err
	}

	text := fmt.Sprintf("Booking #%d confirmed: %s, %d seat(s), event %d",
		payload.BookingID, payload.UserName, payload.Seats, payload.EventID)

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("booking_id", payload.BookingID).Msg("send telegram notification")
		return err
	}
	return nil
}
