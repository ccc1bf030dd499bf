package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"

	"fantamorto/internal/application"
	"fantamorto/internal/models"
	"fantamorto/internal/worker"
	"fantamorto/pkg/config"
)

type handlerFunc func(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction)

type Bot struct {
	session  *discordgo.Session
	services *application.Service
	router   *worker.Router
	logger   application.Logger
	clock    clockwork.Clock

	adminIDs map[string]struct{}
	guildID  string
	teamSize int

	commands []*discordgo.ApplicationCommand
	handlers map[string]handlerFunc
}

func NewBot(cfg *config.Config, services *application.Service, router *worker.Router, logger application.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	admins := make(map[string]struct{})
	for _, id := range cfg.AdminUserIDs {
		cleanID := strings.TrimSpace(id)
		if cleanID != "" {
			admins[cleanID] = struct{}{}
		}
	}

	teamSize := cfg.TeamSize
	if teamSize <= 0 {
		teamSize = models.DefaultTeamSize
	}

	b := &Bot{
		session:  s,
		services: services,
		router:   router,
		logger:   logger,
		clock:    clockwork.NewRealClock(),
		adminIDs: admins,
		guildID:  cfg.DiscordGuildID,
		teamSize: teamSize,
	}
	b.registerCommands()
	b.handlers = map[string]handlerFunc{
		"help":         b.handleHelp,
		"start":        b.handleStart,
		"stop":         b.handleStop,
		"join":         b.handleJoin,
		"draft":        b.handleDraft,
		"cancel_draft": b.handleCancelDraft,
		"draft_order":  b.handleDraftOrder,
		"info":         b.handleInfo,
		"add":          b.handleAdd,
		"drop":         b.handleDrop,
		"captain":      b.handleCaptain,
		"ranking":      b.handleRanking,
		"team":         b.handleTeam,
		"all_teams":    b.handleAllTeams,
		"rename":       b.handleRename,
		"export":       b.handleExport,
		"kill":         b.ensureAdmin(b.handleKill),
	}
	return b, nil
}

func (b *Bot) Init() error {
	b.session.AddHandler(b.onInteraction)
	return nil
}

func (b *Bot) Run(ctx context.Context) {
	if err := b.session.Open(); err != nil {
		b.logger.Error("failed to open discord session: %v", err)
		return
	}

	b.logger.Info("discord bot started, registering slash commands")

	// An empty guild ID registers the commands globally.
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, b.commands)
	if err != nil {
		b.logger.Error("failed to register commands: %v", err)
	} else {
		b.logger.Info("registered %d slash commands", len(b.commands))
	}

	<-ctx.Done()
}

func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		b.logger.Warn("failed to close discord session: %v", err)
	}
}

func (b *Bot) ChatPrefix() string {
	return chatPrefix
}

func (b *Bot) AnnounceDeath(_ context.Context, e application.DeathEvent) error {
	return b.announce(e.ChatID, deathEmbed(e))
}

func (b *Bot) AnnounceFirstDeath(_ context.Context, e application.FirstDeathEvent) error {
	return b.announce(e.ChatID, firstDeathEmbed(e))
}

func (b *Bot) announce(chat string, embed *discordgo.MessageEmbed) error {
	channelID, ok := strings.CutPrefix(chat, chatPrefix)
	if !ok || channelID == "" {
		return fmt.Errorf("chat %q is not a discord channel", chat)
	}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		return fmt.Errorf("failed to send to discord channel %s: %w", channelID, err)
	}
	return nil
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	handler, ok := b.handlers[name]
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	b.logger.Debug("command /%s from %s in %s", name, userOf(i.Interaction).ID, chatKey(i.ChannelID))
	handler(ctx, s, i.Interaction)
}

func chatKey(channelID string) string {
	return chatPrefix + channelID
}

// userOf reads the invoking user from a guild member or, in DMs, the user.
func userOf(i *discordgo.Interaction) models.User {
	u := i.User
	if i.Member != nil && i.Member.User != nil {
		u = i.Member.User
	}
	if u == nil {
		return models.User{}
	}
	name := u.GlobalName
	if i.Member != nil && i.Member.Nick != "" {
		name = i.Member.Nick
	}
	if name == "" {
		name = u.Username
	}
	return models.User{ID: chatPrefix + u.ID, Name: name, Username: u.Username}
}
