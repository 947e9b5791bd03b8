package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier delivers the threshold message over Telegram. The
// contact address is the customer's chat id in decimal form.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramNotifier connects the bot. An empty token yields a notifier
// whose sends fail with ErrNotConfigured.
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	if token == "" {
		return &TelegramNotifier{}, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot}, nil
}

func (n *TelegramNotifier) Send(ctx context.Context, address string, position int) error {
	if n.bot == nil {
		return ErrNotConfigured
	}
	chatID, err := strconv.ParseInt(address, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id %q: %w", address, err)
	}

	text := fmt.Sprintf("You're almost up! You're now position %d. Only %d people ahead of you.",
		position, position-1)
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
