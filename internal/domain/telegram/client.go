package telegram

import "gopkg.in/telebot.v3"

// Sender posts a message to a Telegram chat.
// The notifier and the bot command handlers depend on this instead of *telebot.Bot.
type Sender interface {
	Send(chatID int64, text string, options *telebot.SendOptions) error
}
