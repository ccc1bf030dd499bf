package telegram

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fantamorto/internal/application"
	domainerrors "fantamorto/internal/errors"
)

func (b *Bot) send(chatID int64, text string) error {
	if text == "" {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := b.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	if err := b.send(chatID, text); err != nil {
		b.logger.Error("%v", err)
	}
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("failed to send %s to %d: %v", name, chatID, err)
	}
}

// errorText turns a service error into the reply shown in the chat.
func (b *Bot) errorText(err error) string {
	var ambiguous *application.AmbiguousLookupError
	if errors.As(err, &ambiguous) {
		return candidatesText(ambiguous.Query, ambiguous.Candidates, b.clock.Now())
	}
	if errors.Is(err, application.ErrSheetsNotConfigured) {
		return "Google Sheets export is not available on this bot"
	}
	if domainerrors.IsDomain(err) {
		return esc(err.Error())
	}
	if domainerrors.KindOf(err) == domainerrors.KindUpstreamUnavailable {
		b.logger.Warn("wikidata unavailable: %v", err)
		return "Wikidata is not answering right now, try again later"
	}
	b.logger.Error("command failed: %v", err)
	return "Something went wrong, try again later"
}
