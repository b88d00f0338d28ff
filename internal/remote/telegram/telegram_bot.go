package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/melvorminer/melvorminer/internal/event"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    messageSender
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating Telegram bot: %w", err)
	}

	return &Bot{api: api, chatID: chatID}, nil
}

func (b *Bot) Handle(_ context.Context, e event.Event) error {
	var text string
	switch evt := e.(type) {
	case event.MiningStartedEvent:
		if !evt.Primary {
			return nil
		}
		text = fmt.Sprintf("[%s] %s", evt.Supervisor(), evt.Message())
	case event.MiningStoppedEvent:
		text = fmt.Sprintf("[%s] %s", evt.Supervisor(), evt.Message())
		if evt.Err != nil {
			text += ": " + evt.Err.Error()
		}
	default:
		return nil
	}

	if _, err := b.api.Send(tgbotapi.NewMessage(b.chatID, text)); err != nil {
		return fmt.Errorf("error sending Telegram message: %w", err)
	}

	return nil
}
