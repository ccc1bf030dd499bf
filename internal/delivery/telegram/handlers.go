package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fantamorto/internal/models"
)

type request struct {
	chatID int64
	chat   string
	user   models.User
	args   string
}

type handlerFunc func(ctx context.Context, req request)

var menu = []tgbotapi.BotCommand{
	{Command: "help", Description: "How to play"},
	{Command: "start", Description: "Start a new game"},
	{Command: "join", Description: "Join the game with a team name"},
	{Command: "draft", Description: "Open the draft"},
	{Command: "add", Description: "Draft a person by name or Wikidata ID"},
	{Command: "info", Description: "Look a person up without drafting"},
	{Command: "drop", Description: "Release a drafted person by index"},
	{Command: "captain", Description: "Choose your captain by index"},
	{Command: "draftorder", Description: "Show the draft order"},
	{Command: "canceldraft", Description: "Go back to the lobby"},
	{Command: "team", Description: "Show your team"},
	{Command: "allteams", Description: "List the teams in game"},
	{Command: "ranking", Description: "Show the ranking"},
	{Command: "rename", Description: "Rename your team"},
	{Command: "export", Description: "Export the game (csv, xlsx or sheet)"},
	{Command: "stop", Description: "End the game"},
}

func (b *Bot) commandHandlers() map[string]handlerFunc {
	h := map[string]handlerFunc{
		"help":        b.handleHelp,
		"start":       b.handleStart,
		"stop":        b.handleStop,
		"join":        b.handleJoin,
		"draft":       b.handleDraft,
		"canceldraft": b.handleCancelDraft,
		"draftorder":  b.handleDraftOrder,
		"info":        b.handleInfo,
		"add":         b.handleAdd,
		"drop":        b.handleDrop,
		"captain":     b.handleCaptain,
		"ranking":     b.handleRanking,
		"team":        b.handleTeam,
		"allteams":    b.handleAllTeams,
		"rename":      b.handleRename,
		"export":      b.handleExport,
		"kill":        b.handleKill,
		"send":        b.handleSend,
	}
	aliases := map[string]string{
		"cancel_draft": "canceldraft",
		"draft_order":  "draftorder",
		"order":        "draftorder",
		"table":        "ranking",
		"all_teams":    "allteams",
	}
	for alias, name := range aliases {
		h[alias] = h[name]
	}
	return h
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	name := strings.ToLower(msg.Command())
	handler, ok := b.handlers[name]
	if !ok {
		return
	}
	req := request{
		chatID: msg.Chat.ID,
		chat:   chatKey(msg.Chat.ID),
		user:   userOf(msg.From),
		args:   strings.TrimSpace(msg.CommandArguments()),
	}
	b.logger.Debug("command /%s from %s in %s", name, req.user.ID, req.chat)
	handler(ctx, req)
}

func (b *Bot) handleHelp(_ context.Context, req request) {
	b.reply(req.chatID, helpText())
}

func (b *Bot) handleStart(ctx context.Context, req request) {
	g, err := b.services.Game.StartGame(ctx, req.chat, req.user)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, welcomeText(g))
}

func (b *Bot) handleStop(ctx context.Context, req request) {
	ranking, err := b.services.Game.StopGame(ctx, req.chat, req.user)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, finalText(ranking))
}

func (b *Bot) handleJoin(ctx context.Context, req request) {
	name := req.args
	if name == "" {
		name = defaultTeamName(req.user)
	}
	team, err := b.services.Game.Join(ctx, req.chat, req.user, name)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, joinedText(team))
}

func (b *Bot) handleDraft(ctx context.Context, req request) {
	view, err := b.services.Game.StartDraft(ctx, req.chat, req.user)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, "The draft is open!\n"+draftOrderText(view, b.teamSize))
	if view.Current != nil {
		b.reply(req.chatID, turnText(view.Current, b.teamSize))
	}
}

func (b *Bot) handleCancelDraft(ctx context.Context, req request) {
	if err := b.services.Game.CancelDraft(ctx, req.chat, req.user); err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, "The draft has been cancelled. The picks are released and new teams can <code>/join</code>")
}

func (b *Bot) handleDraftOrder(ctx context.Context, req request) {
	view, err := b.services.Game.DraftOrder(ctx, req.chat)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, draftOrderText(view, b.teamSize))
}

func (b *Bot) handleInfo(ctx context.Context, req request) {
	found, err := b.services.Game.Info(ctx, req.args)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	now := b.clock.Now()
	parts := make([]string, len(found))
	for i, a := range found {
		parts[i] = athletText(a, now)
	}
	b.reply(req.chatID, strings.Join(parts, "\n\n"))
}

func (b *Bot) handleAdd(ctx context.Context, req request) {
	res, err := b.services.Game.Draft(ctx, req.chat, req.user, req.args)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, draftedText(res, b.teamSize, b.clock.Now()))
}

func (b *Bot) handleDrop(ctx context.Context, req request) {
	idx, ok := b.index(req)
	if !ok {
		return
	}
	a, err := b.services.Game.DropAthlet(ctx, req.chat, req.user, idx)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, esc(a.Name)+" is a free agent again")
}

func (b *Bot) handleCaptain(ctx context.Context, req request) {
	idx, ok := b.index(req)
	if !ok {
		return
	}
	res, err := b.services.Game.SetCaptain(ctx, req.chat, req.user, idx)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, captainText(res))
}

func (b *Bot) handleRanking(ctx context.Context, req request) {
	ranking, err := b.services.Game.Ranking(ctx, req.chat)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, rankingText(ranking))
}

func (b *Bot) handleTeam(ctx context.Context, req request) {
	report, err := b.services.Game.Team(ctx, req.chat, req.user)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, teamText(report))
}

func (b *Bot) handleAllTeams(ctx context.Context, req request) {
	teams, err := b.services.Game.Teams(ctx, req.chat)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, teamsText(teams))
}

func (b *Bot) handleRename(ctx context.Context, req request) {
	if req.args == "" {
		b.reply(req.chatID, "Tell me the new name: <code>/rename NAME</code>")
		return
	}
	team, err := b.services.Game.Rename(ctx, req.chat, req.user, req.args)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	b.reply(req.chatID, "Your team is now called <b>"+esc(team.Name)+"</b>")
}

func (b *Bot) handleExport(ctx context.Context, req request) {
	switch strings.ToLower(req.args) {
	case "", "csv":
		data, err := b.services.Export.CSV(ctx, req.chat)
		if err != nil {
			b.reply(req.chatID, b.errorText(err))
			return
		}
		b.sendDocument(req.chatID, "fantamorto.csv", data)
	case "xlsx", "excel":
		data, err := b.services.Export.Excel(ctx, req.chat)
		if err != nil {
			b.reply(req.chatID, b.errorText(err))
			return
		}
		b.sendDocument(req.chatID, "fantamorto.xlsx", data)
	case "sheet", "sheets":
		url, err := b.services.Export.SyncSheet(ctx, req.chat)
		if err != nil {
			b.reply(req.chatID, b.errorText(err))
			return
		}
		b.reply(req.chatID, "The ranking is online: "+url)
	default:
		b.reply(req.chatID, "Usage: <code>/export [csv|xlsx|sheet]</code>")
	}
}

func (b *Bot) handleKill(ctx context.Context, req request) {
	res, err := b.services.Game.Kill(ctx, req.user, req.args)
	if err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	if len(res.Deaths) == 0 {
		b.reply(req.chatID, esc(strings.ToUpper(req.args))+" is dead, no running game still had them alive")
	}
	b.router.Announce(ctx, res)
}

// handleSend delivers an administrator message to another chat.
func (b *Bot) handleSend(_ context.Context, req request) {
	if err := b.services.Game.RequireAdmin(req.user); err != nil {
		b.reply(req.chatID, b.errorText(err))
		return
	}
	target, text, err := parseSendArgs(req.args)
	if err != nil {
		b.reply(req.chatID, "Send the chat ID followed by the message, e.g. <code>/send -1001234 hello</code>")
		return
	}
	if err := b.send(target, esc(text)); err != nil {
		b.logger.Error("%v", err)
		b.reply(req.chatID, "The message could not be delivered")
		return
	}
	b.logger.Info("%s sent a message to %d", req.user.ID, target)
	b.reply(req.chatID, "Message delivered")
}

// parseSendArgs splits "<chat> <message>". The chat may carry the tg: prefix.
func parseSendArgs(args string) (int64, string, error) {
	chat, text, _ := strings.Cut(strings.TrimSpace(args), " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, "", fmt.Errorf("missing message")
	}
	if !strings.HasPrefix(chat, chatPrefix) {
		chat = chatPrefix + chat
	}
	id, err := parseChatID(chat)
	if err != nil {
		return 0, "", err
	}
	return id, text, nil
}

func (b *Bot) index(req request) (int, bool) {
	idx, err := strconv.Atoi(req.args)
	if err != nil || idx < 0 {
		b.reply(req.chatID, "Send the index of the person as shown by <code>/team</code>, starting from 0")
		return 0, false
	}
	return idx, true
}

func defaultTeamName(u models.User) string {
	if u.Username != "" {
		return "Team " + u.Username
	}
	return "Team " + u.Name
}
