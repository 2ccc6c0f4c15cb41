package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"npr-price-bot/internal/commands"
	"npr-price-bot/lib/helpers"
	"npr-price-bot/lib/translation"
)

// NewBot creates new telegram bot
func NewBot(c BotConfig, h *commands.Handler) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	return &Bot{
		Bot:      bot,
		Config:   c,
		Commands: h,
	}, nil
}

// GetUpdatesChannel gets new updates
func (b *Bot) GetUpdatesChannel() tgbotapi.UpdatesChannel {
	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	return b.Bot.GetUpdatesChan(updatesConfig)
}

// SendMessage sends a telegram message
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	_, err := b.Bot.Send(msg)
	return errors.Wrapf(err, "could not send message to chat %d", m.ChatID)
}

// Notify sends the price alert to chatID. It satisfies alert.Notifier.
func (b *Bot) Notify(chatID int64, price float64) error {
	return b.SendMessage(Message{
		ChatID: chatID,
		Text: fmt.Sprintf("%s %s",
			translation.Translate("🚨 NPR P2P Price Alert! Current Price:"),
			helpers.FormatPrice(price)),
	})
}

// HandleUpdate routes a command update to its handler and returns the reply text.
func (b *Bot) HandleUpdate(u tgbotapi.Update) string {
	log.Debugf("received command: %s", u.Message.Command())

	switch u.Message.Command() {
	case "start":
		return b.Commands.Start()
	case "setprice":
		return b.Commands.SetPrice(u.Message.Chat.ID, u.Message.CommandArguments())
	case "getprice":
		return b.Commands.GetPrice()
	}

	return translation.Translate("Unknown command. Available commands: /start, /setprice <amount>, /getprice")
}
