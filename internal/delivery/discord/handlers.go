package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"fantamorto/internal/models"
)

func (b *Bot) handleHelp(_ context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{helpEmbed()}},
	})
	if err != nil {
		b.logger.Error("failed to respond to /help: %v", err)
	}
}

func (b *Bot) handleStart(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	g, err := b.services.Game.StartGame(ctx, chatKey(i.ChannelID), userOf(i))
	if err != nil {
		b.editError(s, i, err)
		return
	}
	b.editText(s, i, fmt.Sprintf("Welcome to Fantamorto! Each player can draft up to %d real people with a page on wikidata.org.\nJoin with `/join`.", g.TeamSize))
}

func (b *Bot) handleStop(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	ranking, err := b.services.Game.StopGame(ctx, chatKey(i.ChannelID), userOf(i))
	if err != nil {
		b.editError(s, i, err)
		return
	}
	title := "The game has ended"
	if len(ranking) > 0 {
		title = "The winner is " + ranking[0].TeamName
	}
	b.editEmbed(s, i, rankingEmbed(truncate(title, maxTitleLength), ranking))
}

func (b *Bot) handleJoin(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	user := userOf(i)
	name := valueOrDefault(stringOption(i, "team_name"), defaultTeamName(user))
	team, err := b.services.Game.Join(ctx, chatKey(i.ChannelID), user, name)
	if err != nil {
		b.editError(s, i, err)
		return
	}
	b.editText(s, i, fmt.Sprintf("**%s** is now part of the game. When everybody has joined, the creator opens the draft with `/draft`.", escape(team.Name)))
}

func (b *Bot) handleDraft(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	view, err := b.services.Game.StartDraft(ctx, chatKey(i.ChannelID), userOf(i))
	if err != nil {
		b.editError(s, i, err)
		return
	}
	b.editEmbed(s, i, draftOrderEmbed(view, b.teamSize))
}

func (b *Bot) handleCancelDraft(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	if err := b.services.Game.CancelDraft(ctx, chatKey(i.ChannelID), userOf(i)); err != nil {
		b.editError(s, i, err)
		return
	}
	b.editText(s, i, "The draft has been cancelled. Every pick is released and new teams can `/join`.")
}

func (b *Bot) handleDraftOrder(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	view, err := b.services.Game.DraftOrder(ctx, chatKey(i.ChannelID))
	if err != nil {
		b.editError(s, i, err)
		return
	}
	b.editEmbed(s, i, draftOrderEmbed(view, b.teamSize))
}

func (b *Bot) handleInfo(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	found, err := b.services.Game.Info(ctx, stringOption(i, "query"))
	if err != nil {
		b.editError(s, i, err)
		return
	}
	now := b.clock.Now()
	// A message carries at most ten embeds.
	embeds := make([]*discordgo.MessageEmbed, 0, min(len(found), 10))
	for _, a := range found[:min(len(found), 10)] {
		embeds = append(embeds, athletEmbed(a, now))
	}
	b.editEmbed(s, i, embeds...)
}

func (b *Bot) handleAdd(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	res, err := b.services.Game.Draft(ctx, chatKey(i.ChannelID), userOf(i), stringOption(i, "query"))
	if err != nil {
		b.editError(s, i, err)
		return
	}
	content := draftedContent(res, b.teamSize)
	b.edit(s, i, &discordgo.WebhookEdit{
		Content: &content,
		Embeds:  &[]*discordgo.MessageEmbed{athletEmbed(res.Athlet, b.clock.Now())},
	})
}

func (b *Bot) handleDrop(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	a, err := b.services.Game.DropAthlet(ctx, chatKey(i.ChannelID), userOf(i), intOption(i, "index"))
	if err != nil {
		b.editError(s, i, err)
		return
	}
	b.editText(s, i, escape(a.Name)+" is a free agent again.")
}

func (b *Bot) handleCaptain(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	res, err := b.services.Game.SetCaptain(ctx, chatKey(i.ChannelID), userOf(i), intOption(i, "index"))
	if err != nil {
		b.editError(s, i, err)
		return
	}
	b.editText(s, i, captainContent(res))
}

func (b *Bot) handleRanking(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	ranking, err := b.services.Game.Ranking(ctx, chatKey(i.ChannelID))
	if err != nil {
		b.editError(s, i, err)
		return
	}
	b.editEmbed(s, i, rankingEmbed("Ranking", ranking))
}

func (b *Bot) handleTeam(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	report, err := b.services.Game.Team(ctx, chatKey(i.ChannelID), userOf(i))
	if err != nil {
		b.editError(s, i, err)
		return
	}
	b.editEmbed(s, i, teamEmbed(report))
}

func (b *Bot) handleAllTeams(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	teams, err := b.services.Game.Teams(ctx, chatKey(i.ChannelID))
	if err != nil {
		b.editError(s, i, err)
		return
	}
	b.editEmbed(s, i, teamsEmbed(teams))
}

func (b *Bot) handleRename(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	team, err := b.services.Game.Rename(ctx, chatKey(i.ChannelID), userOf(i), stringOption(i, "team_name"))
	if err != nil {
		b.editError(s, i, err)
		return
	}
	b.editText(s, i, fmt.Sprintf("Your team is now called **%s**.", escape(team.Name)))
}

func (b *Bot) handleExport(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	chat := chatKey(i.ChannelID)

	switch valueOrDefault(stringOption(i, "format"), "csv") {
	case "xlsx":
		data, err := b.services.Export.Excel(ctx, chat)
		if err != nil {
			b.editError(s, i, err)
			return
		}
		b.editFile(s, i, "Your export is ready!", "fantamorto.xlsx", data)
	case "sheet":
		url, err := b.services.Export.SyncSheet(ctx, chat)
		if err != nil {
			b.editError(s, i, err)
			return
		}
		b.editText(s, i, "The ranking is online: "+url)
	default:
		data, err := b.services.Export.CSV(ctx, chat)
		if err != nil {
			b.editError(s, i, err)
			return
		}
		b.editFile(s, i, "Your export is ready!", "fantamorto.csv", data)
	}
}

func (b *Bot) handleKill(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	b.deferResponse(s, i)
	wid := strings.ToUpper(stringOption(i, "wid"))
	res, err := b.services.Game.Kill(ctx, userOf(i), wid)
	if err != nil {
		b.editError(s, i, err)
		return
	}
	b.editText(s, i, fmt.Sprintf("%s %s recorded as dead, %d announcements sent.", emojiDead, escape(wid), len(res.Deaths)+len(res.FirstDeaths)))
	b.router.Announce(ctx, res)
}

func defaultTeamName(u models.User) string {
	return "Team " + valueOrDefault(u.Name, u.Username)
}
