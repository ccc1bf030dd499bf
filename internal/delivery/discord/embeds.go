package discord

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"fantamorto/internal/application"
	"fantamorto/internal/game"
	"fantamorto/internal/models"
)

func helpEmbed() *discordgo.MessageEmbed {
	steps := []string{
		"1. Start a new game with `/start`",
		"2. Join with `/join team_name`",
		"3. The creator opens the draft with `/draft`",
		"4. On your turn pick someone with `/add`, by name or by Wikidata ID (e.g. `Q11860`)",
		"5. Choose your captain with `/captain index`, the index shown by `/team`",
		"6. The game starts once every team is full and has a captain",
		"7. Follow the standings with `/ranking`",
	}
	return &discordgo.MessageEmbed{
		Title:       "How to play Fantamorto",
		Description: strings.Join(steps, "\n"),
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Other commands", Value: "`/info` `/drop` `/rename` `/draft_order` `/cancel_draft` `/all_teams` `/export` `/stop`"},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Enjoy! But do not help Death do the work!"},
	}
}

func draftOrderEmbed(view *application.DraftView, teamSize int) *discordgo.MessageEmbed {
	var sb strings.Builder
	for i, t := range view.Order {
		sb.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", i+1, escape(t.Name), escape(t.OwnerName)))
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Draft round %d", view.Round+1),
		Description: sb.String(),
		Color:       colorBlue,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d picks remaining", view.Remaining)},
	}
	if view.Current != nil {
		embed.Fields = []*discordgo.MessageEmbedField{{
			Name:  "On the clock",
			Value: fmt.Sprintf("%s for **%s**, %d picks left", escape(view.Current.OwnerName), escape(view.Current.Name), teamSize-len(view.Current.AthletIDs)),
		}}
	}
	return embed
}

func labels(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	parts := []string{"__" + escape(values[0]) + "__"}
	for _, v := range values[1:] {
		parts = append(parts, escape(v))
	}
	return truncate(strings.Join(parts, ", "), maxFieldLength)
}

func athletEmbed(a *models.Athlet, now time.Time) *discordgo.MessageEmbed {
	status := fmt.Sprintf("%s %d years old", emojiAlive, a.Age(now))
	color := colorGreen
	if a.IsDead() {
		status = fmt.Sprintf("%s died %s aged %d", emojiDead, a.DateOfDeath.Format(time.DateOnly), a.Age(now))
		color = colorRed
	}
	points := fmt.Sprintf("%d", game.TheoreticalScore(a, now))
	if a.IsBanned {
		points += " (banned)"
	}
	return &discordgo.MessageEmbed{
		Title:       a.Name,
		URL:         a.URL(),
		Description: status,
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Born", Value: a.DateOfBirth.Format(time.DateOnly), Inline: true},
			{Name: "Points", Value: points, Inline: true},
			{Name: "Wikidata", Value: a.WID, Inline: true},
			{Name: "Gender", Value: labels(a.Genders)},
			{Name: "Citizenship", Value: labels(a.Citizenships)},
			{Name: "Occupation", Value: labels(a.Occupations)},
		},
	}
}

func candidatesEmbed(query string, candidates []*models.Athlet, now time.Time) *discordgo.MessageEmbed {
	var sb strings.Builder
	for i, a := range candidates {
		sb.WriteString(fmt.Sprintf("%d: [%s](%s) %dy %s %dpt\n",
			i+1, a.WID, a.URL(), a.Age(now), escape(strings.Join(a.Occupations, ", ")), game.TheoreticalScore(a, now)))
	}
	return &discordgo.MessageEmbed{
		Title:       truncate(fmt.Sprintf("Several people match %q", query), maxTitleLength),
		Description: truncate(sb.String(), maxDescriptionLength),
		Color:       colorGray,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Send the Wikidata ID of the one you want"},
	}
}

func draftedContent(res *application.DraftResult, teamSize int) string {
	switch res.Status {
	case models.GameStatusDraft:
		if res.Next != nil {
			return fmt.Sprintf("%s joins **%s**. Next up: %s for **%s**, %d picks left.",
				escape(res.Athlet.Name), escape(res.Team.Name), escape(res.Next.OwnerName), escape(res.Next.Name), teamSize-len(res.Next.AthletIDs))
		}
	case models.GameStatusCaptain:
		return fmt.Sprintf("%s joins **%s**. All the teams are complete! Choose your captains with `/captain`.",
			escape(res.Athlet.Name), escape(res.Team.Name))
	case models.GameStatusRun:
		return fmt.Sprintf("%s joins **%s**. Every team is ready, let's start the game!",
			escape(res.Athlet.Name), escape(res.Team.Name))
	}
	return fmt.Sprintf("%s joins **%s**.", escape(res.Athlet.Name), escape(res.Team.Name))
}

func captainContent(res *application.CaptainResult) string {
	msg := fmt.Sprintf("%s %s is the captain of **%s**. ", emojiCaptain, escape(res.Captain.Name), escape(res.Team.Name))
	if res.Status == models.GameStatusRun {
		return msg + "Every team is ready, let's start the game!"
	}
	return msg + fmt.Sprintf("%d teams still need a captain.", res.Missing)
}

func rankingEmbed(title string, ranking []models.Standing) *discordgo.MessageEmbed {
	var sb strings.Builder
	for _, st := range ranking {
		sb.WriteString(fmt.Sprintf("%s **%s** (%s): `%d`\n", getMedalEmoji(st.Position), escape(st.TeamName), escape(st.OwnerName), st.Score))
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: truncate(valueOrDefault(sb.String(), "No teams yet."), maxDescriptionLength),
		Color:       colorGold,
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	}
}

func teamEmbed(r *game.TeamReport) *discordgo.MessageEmbed {
	var sb strings.Builder
	for _, l := range r.Lines {
		sb.WriteString(fmt.Sprintf("`%d` ", l.Index))
		if l.Captain {
			sb.WriteString(emojiCaptain + " ")
		}
		sb.WriteString(fmt.Sprintf("%s, %dy ", escape(l.Athlet.Name), l.Age))
		if l.Athlet.IsDead() {
			sb.WriteString(emojiDead)
			for _, f := range []struct {
				on    bool
				emoji string
			}{
				{l.FirstDeath, emojiFirstDeath},
				{l.Gonzales, emojiGonzales},
				{l.Cesarini, emojiCesarini},
				{l.Club27, emojiClub27},
				{l.Birthday, emojiBirthday},
			} {
				if f.on {
					sb.WriteString(" " + f.emoji)
				}
			}
		} else {
			sb.WriteString(emojiAlive)
		}
		sb.WriteString(fmt.Sprintf(" (%d pt)\n", l.Score))
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Inclusivity", Value: bonusValue(r.Score.Inclusivity, r.Score.Genders, r.Genders), Inline: true},
		{Name: "Globetrotter", Value: bonusValue(r.Score.Globetrotter, r.Score.Citizenships, r.Citizenships), Inline: true},
		{Name: "Jack of all Trades", Value: bonusValue(r.Score.JackOfAllTrades, r.Score.Occupations, r.Occupations), Inline: true},
	}
	if r.Score.Captain > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Captain", Value: fmt.Sprintf("%d pt", r.Score.Captain), Inline: true})
	}
	if r.Team.HasFirstDeath {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "First death", Value: fmt.Sprintf("%d pt", r.Score.FirstDeath), Inline: true})
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s: %d pt", r.Team.Name, r.Score.Total),
		Description: truncate(valueOrDefault(sb.String(), "Nobody drafted yet."), maxDescriptionLength),
		Color:       colorGold,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Owner: " + r.Team.OwnerName},
	}
}

// bonusValue shows the already scored values in bold, followed by the rest.
func bonusValue(points int, dead, all []string) string {
	parts := make([]string, 0, len(all))
	for _, v := range dead {
		parts = append(parts, "**"+escape(v)+"**")
	}
	for _, v := range all {
		if !slices.Contains(dead, v) {
			parts = append(parts, escape(v))
		}
	}
	return truncate(fmt.Sprintf("%d pt\n%s", points, strings.Join(parts, ", ")), maxFieldLength)
}

func teamsEmbed(teams []*models.Team) *discordgo.MessageEmbed {
	var sb strings.Builder
	for _, t := range teams {
		sb.WriteString(fmt.Sprintf("**%s** (%s)\n", escape(t.Name), escape(t.OwnerName)))
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%d teams in game", len(teams)),
		Description: truncate(sb.String(), maxDescriptionLength),
		Color:       colorBlue,
	}
}

func deathEmbed(e application.DeathEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "+++ DEAD +++",
		URL:         e.Athlet.URL(),
		Description: fmt.Sprintf("%s %s is now just a corpse!\nOnly the fans of **%s** rejoice: this death brings them %d points.", emojiDead, escape(e.Athlet.Name), escape(e.TeamName), e.Points),
		Color:       colorRed,
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	}
}

func firstDeathEmbed(e application.FirstDeathEvent) *discordgo.MessageEmbed {
	names := make([]string, len(e.Teams))
	for i, t := range e.Teams {
		names[i] = "**" + escape(t.Name) + "**"
	}
	return &discordgo.MessageEmbed{
		Title:       emojiFirstDeath + " FIRST DEATH!",
		Description: "The points for the first blood go to " + strings.Join(names, ", "),
		Color:       colorRed,
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	}
}
