package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"

	"fantamorto/internal/application"
	"fantamorto/internal/models"
	"fantamorto/internal/worker"
)

const chatPrefix = "tg:"

type Bot struct {
	bot      *tgbotapi.BotAPI
	services *application.Service
	router   *worker.Router
	teamSize int
	clock    clockwork.Clock
	logger   application.Logger
	handlers map[string]handlerFunc
	wg       sync.WaitGroup
}

func NewBot(token string, services *application.Service, router *worker.Router, teamSize int, logger application.Logger) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("telegram bot authorized on account %s", bot.Self.UserName)

	if teamSize <= 0 {
		teamSize = models.DefaultTeamSize
	}
	b := &Bot{
		bot:      bot,
		services: services,
		router:   router,
		teamSize: teamSize,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
	}
	b.handlers = b.commandHandlers()
	return b, nil
}

// Init publishes the command menu.
func (b *Bot) Init() error {
	if _, err := b.bot.Request(tgbotapi.NewSetMyCommands(menu...)); err != nil {
		return fmt.Errorf("failed to register telegram commands: %w", err)
	}
	return nil
}

func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || !msg.IsCommand() || msg.From == nil {
				continue
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleCommand(ctx, msg)
			}()
		}
	}
}

func (b *Bot) Stop() {
	b.bot.StopReceivingUpdates()
	b.wg.Wait()
}

func (b *Bot) ChatPrefix() string {
	return chatPrefix
}

func (b *Bot) AnnounceDeath(_ context.Context, e application.DeathEvent) error {
	return b.announce(e.ChatID, deathText(e))
}

func (b *Bot) AnnounceFirstDeath(_ context.Context, e application.FirstDeathEvent) error {
	return b.announce(e.ChatID, firstDeathText(e))
}

func (b *Bot) announce(chat, text string) error {
	chatID, err := parseChatID(chat)
	if err != nil {
		return err
	}
	return b.send(chatID, text)
}

func chatKey(chatID int64) string {
	return chatPrefix + strconv.FormatInt(chatID, 10)
}

func parseChatID(chat string) (int64, error) {
	if len(chat) <= len(chatPrefix) || chat[:len(chatPrefix)] != chatPrefix {
		return 0, fmt.Errorf("chat %q is not a telegram chat", chat)
	}
	id, err := strconv.ParseInt(chat[len(chatPrefix):], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("chat %q is not a telegram chat: %w", chat, err)
	}
	return id, nil
}

func userOf(from *tgbotapi.User) models.User {
	name := from.FirstName
	if from.LastName != "" {
		name += " " + from.LastName
	}
	return models.User{
		ID:       chatPrefix + strconv.FormatInt(from.ID, 10),
		Name:     name,
		Username: from.UserName,
	}
}
