package telegram

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fantamorto/internal/application"
	"fantamorto/internal/game"
	"fantamorto/internal/models"
)

const (
	emojiCaptain     = "🎖"
	emojiAlive       = "💓"
	emojiDead        = "💀"
	emojiFirstDeath  = "🩸"
	emojiGonzales    = "🐭"
	emojiCesarini    = "⏱"
	emojiClub27      = "🎸"
	emojiBirthday    = "🎂"
	emojiInclusivity = "🌈"
	emojiGlobe       = "🌍"
	emojiJack        = "🛠"
)

var medals = []string{"🥇", "🥈", "🥉"}

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

func helpText() string {
	return "This bot lets a group play Fantamorto!\n" +
		"1. Start a new game with <code>/start</code>\n" +
		"2. Join with your team using <code>/join TEAM_NAME</code>\n" +
		"3. When every team has joined, the creator opens the draft with <code>/draft</code>\n" +
		"4. On your turn pick a person with <code>/add NAME or ID</code>, where ID is the Wikidata ID from https://www.wikidata.org\n" +
		"For example <code>/add Silvio Berlusconi</code> or <code>/add Q11860</code>\n" +
		"5. Choose your captain with <code>/captain IDX</code>, the index shown by <code>/team</code>\n" +
		"6. The game starts once every team is full and has a captain\n" +
		"7. Check the standings with <code>/ranking</code>\n" +
		"\nOther commands: <code>/info NAME</code> <code>/drop IDX</code> <code>/rename NAME</code> " +
		"<code>/draftorder</code> <code>/canceldraft</code> <code>/allteams</code> <code>/export [xlsx|sheet]</code> <code>/stop</code>\n" +
		"\nEnjoy! But do not help Death do the work!"
}

func welcomeText(g *models.Game) string {
	return fmt.Sprintf("Welcome to Fantamorto!\n"+
		"Each player can draft up to %d real people with a page on wikidata.org.\n"+
		"To join the game send <code>/join</code>", g.TeamSize)
}

func joinedText(t *models.Team) string {
	return fmt.Sprintf("<b>%s</b> is now part of the game.\n"+
		"When all the players have joined, send <code>/draft</code> to start the draft", esc(t.Name))
}

func turnText(t *models.Team, teamSize int) string {
	return fmt.Sprintf("%s, it's your turn to draft for <b>%s</b>!\nYou still have %d picks left.",
		esc(t.OwnerName), esc(t.Name), teamSize-len(t.AthletIDs))
}

func draftOrderText(view *application.DraftView, teamSize int) string {
	var sb strings.Builder
	if view.Current != nil {
		sb.WriteString(fmt.Sprintf("Current drafter is <b>%s</b> (%s), %d picks left\n",
			esc(view.Current.Name), esc(view.Current.OwnerName), teamSize-len(view.Current.AthletIDs)))
	}
	sb.WriteString(fmt.Sprintf("Round %d, %d picks remaining. The order is:\n", view.Round+1, view.Remaining))
	for i, t := range view.Order {
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, esc(t.Name), esc(t.OwnerName)))
	}
	return sb.String()
}

func labelList(values []string, none string) string {
	if len(values) == 0 {
		return none
	}
	parts := []string{"<u>" + esc(values[0]) + "</u>"}
	for _, v := range values[1:] {
		parts = append(parts, esc(v))
	}
	return strings.Join(parts, ", ")
}

func athletText(a *models.Athlet, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<a href=\"%s\">%s</a> (%s), %s. ",
		a.URL(), esc(a.Name), labelList(a.Genders, "no gender"), labelList(a.Occupations, "no occupation")))
	sb.WriteString(fmt.Sprintf("Citizenship: %s.\n", labelList(a.Citizenships, "none")))
	sb.WriteString(fmt.Sprintf("Born %s", a.DateOfBirth.Format(time.DateOnly)))
	if a.IsDead() {
		sb.WriteString(fmt.Sprintf(", died %s aged %d %s", a.DateOfDeath.Format(time.DateOnly), a.Age(now), emojiDead))
	} else {
		sb.WriteString(fmt.Sprintf(", %d years old", a.Age(now)))
	}
	sb.WriteString(fmt.Sprintf("\nWorth %d points", game.TheoreticalScore(a, now)))
	if a.IsBanned {
		sb.WriteString(" if it were not banned")
	}
	return sb.String()
}

func candidatesText(query string, candidates []*models.Athlet, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("I found several people for <i>%s</i>. Send the ID of the one you want\n", esc(query)))
	sb.WriteString("ID\tAGE\tOCCUPATIONS\tPOINTS\n")
	for i, a := range candidates {
		sb.WriteString(fmt.Sprintf("%d: <a href=\"%s\">%s</a>\t%dy\t%s\t%dpt\n",
			i+1, a.URL(), a.WID, a.Age(now), esc(strings.Join(a.Occupations, ", ")), game.TheoreticalScore(a, now)))
	}
	return sb.String()
}

func draftedText(res *application.DraftResult, teamSize int, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(athletText(res.Athlet, now))
	sb.WriteString("\n\n")
	switch res.Status {
	case models.GameStatusDraft:
		if res.Next != nil {
			sb.WriteString(turnText(res.Next, teamSize))
		}
	case models.GameStatusCaptain:
		sb.WriteString("All the teams are complete!\n" +
			"Now choose the captains with <code>/captain IDX</code>, where IDX comes from <code>/team</code>")
	case models.GameStatusRun:
		sb.WriteString("All the teams are complete and have a captain! Let's start the game!")
	}
	return sb.String()
}

func captainText(res *application.CaptainResult) string {
	msg := fmt.Sprintf("%s %s is the captain of <b>%s</b>\n", emojiCaptain, esc(res.Captain.Name), esc(res.Team.Name))
	if res.Status == models.GameStatusRun {
		return msg + "All the teams are complete! Let's start the game!"
	}
	return msg + fmt.Sprintf("There are still %d teams without a captain", res.Missing)
}

func rankingText(ranking []models.Standing) string {
	var sb strings.Builder
	sb.WriteString("<b>RANKING</b>\n")
	for _, st := range ranking {
		sb.WriteString(fmt.Sprintf("%s %d - %s (%s)\n", place(st.Position), st.Score, esc(st.TeamName), esc(st.OwnerName)))
	}
	return sb.String()
}

func finalText(ranking []models.Standing) string {
	var sb strings.Builder
	sb.WriteString("The game has ended!\n")
	if len(ranking) > 0 {
		sb.WriteString(fmt.Sprintf("And the winner is......\n<b>%s</b>\n\nHere is the final ranking\n", esc(ranking[0].TeamName)))
		for _, st := range ranking {
			sb.WriteString(fmt.Sprintf("%s %s: %d\n", place(st.Position), esc(st.TeamName), st.Score))
		}
	}
	sb.WriteString("\nTo start a new game send <code>/start</code>")
	return sb.String()
}

func place(position int) string {
	if position >= 1 && position <= len(medals) {
		return medals[position-1]
	}
	return fmt.Sprintf("%d.", position)
}

func teamText(r *game.TeamReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("NAME: <b>%s</b>\nOWNER: %s\nSCORE: %d\n", esc(r.Team.Name), esc(r.Team.OwnerName), r.Score.Total))
	sb.WriteString("**** ATHLETS ****\n")
	for _, l := range r.Lines {
		sb.WriteString(fmt.Sprintf("%d: ", l.Index))
		if l.Captain {
			sb.WriteString(emojiCaptain + " ")
		}
		sb.WriteString(fmt.Sprintf("%s - %dy ", esc(l.Athlet.Name), l.Age))
		if !l.Athlet.IsDead() {
			sb.WriteString(emojiAlive + " ")
		} else {
			sb.WriteString(emojiDead + " ")
			flags := []struct {
				on    bool
				emoji string
			}{
				{l.FirstDeath, emojiFirstDeath},
				{l.Gonzales, emojiGonzales},
				{l.Cesarini, emojiCesarini},
				{l.Club27, emojiClub27},
				{l.Birthday, emojiBirthday},
			}
			for _, f := range flags {
				if f.on {
					sb.WriteString(f.emoji + " ")
				}
			}
		}
		sb.WriteString(fmt.Sprintf("(%d pt)\n", l.Score))
	}

	sb.WriteString("**** BONUS ****\n")
	if r.Team.HasFirstDeath {
		var names []string
		for _, l := range r.Lines {
			if l.FirstDeath {
				names = append(names, esc(l.Athlet.Name))
			}
		}
		sb.WriteString(fmt.Sprintf("%s First death: %d pt\n(%s)\n", emojiFirstDeath, r.Score.FirstDeath, strings.Join(names, ", ")))
	}
	sb.WriteString(fmt.Sprintf("%s Inclusivity: %d pt\n(%s)\n", emojiInclusivity, r.Score.Inclusivity, boldDead(r.Score.Genders, r.Genders)))
	sb.WriteString(fmt.Sprintf("%s Globetrotter: %d pt\n(%s)\n", emojiGlobe, r.Score.Globetrotter, boldDead(r.Score.Citizenships, r.Citizenships)))
	sb.WriteString(fmt.Sprintf("%s Jack of all Trades: %d pt\n(%s)\n", emojiJack, r.Score.JackOfAllTrades, boldDead(r.Score.Occupations, r.Occupations)))
	return sb.String()
}

// boldDead lists the values already scored in bold, then the rest.
func boldDead(dead, all []string) string {
	parts := make([]string, 0, len(all))
	for _, v := range dead {
		parts = append(parts, "<b>"+esc(v)+"</b>")
	}
	for _, v := range all {
		if !slices.Contains(dead, v) {
			parts = append(parts, esc(v))
		}
	}
	return strings.Join(parts, ", ")
}

func teamsText(teams []*models.Team) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("There are %d teams in game:\n", len(teams)))
	for _, t := range teams {
		sb.WriteString(fmt.Sprintf("%s (%s)\n", esc(t.Name), esc(t.OwnerName)))
	}
	return sb.String()
}

func deathText(e application.DeathEvent) string {
	return fmt.Sprintf("+++ DEAD +++\n%s is now just a corpse!\n"+
		"Only the fans of <b>%s</b> rejoice: this death brings them %d points\nDEAD! DEAD DEAD DEAD!",
		esc(e.Athlet.Name), esc(e.TeamName), e.Points)
}

func firstDeathText(e application.FirstDeathEvent) string {
	names := make([]string, len(e.Teams))
	for i, t := range e.Teams {
		names[i] = "<b>" + esc(t.Name) + "</b>"
	}
	return fmt.Sprintf("FIRST DEATH! %s\nThe points for the first blood go to %s", emojiFirstDeath, strings.Join(names, ", "))
}
