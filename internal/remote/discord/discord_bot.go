package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/melvorminer/melvorminer/internal/event"
)

type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Bot struct {
	session   messageSender
	channelID string
}

func NewBot(token, channelID string) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	return &Bot{session: dg, channelID: channelID}, nil
}

// Handle posts the interesting events to the configured channel.
func (b *Bot) Handle(_ context.Context, e event.Event) error {
	msg, ok := format(e)
	if !ok {
		return nil
	}

	if _, err := b.session.ChannelMessageSend(b.channelID, msg); err != nil {
		return fmt.Errorf("error sending Discord message: %w", err)
	}

	return nil
}

func format(e event.Event) (string, bool) {
	switch evt := e.(type) {
	case event.MiningStartedEvent:
		if !evt.Primary {
			return "", false
		}
		return fmt.Sprintf("**[%s]** %s", evt.Supervisor(), evt.Message()), true
	case event.MiningStoppedEvent:
		if evt.Err != nil {
			return fmt.Sprintf("**[%s]** :warning: %s: %v", evt.Supervisor(), evt.Message(), evt.Err), true
		}
		return fmt.Sprintf("**[%s]** %s", evt.Supervisor(), evt.Message()), true
	}

	return "", false
}
