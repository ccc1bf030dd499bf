package discord

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"fantamorto/internal/application"
	"fantamorto/internal/game"
	"fantamorto/internal/models"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRankingEmbed(t *testing.T) {
	embed := rankingEmbed("Ranking", []models.Standing{
		{TeamName: "Reapers", OwnerName: "ann", Score: 180, Position: 1},
		{TeamName: "grave_diggers", OwnerName: "bob", Score: 60, Position: 2},
		{TeamName: "Late", OwnerName: "cid", Score: 0, Position: 4},
	})
	for _, want := range []string{"🥇 **Reapers** (ann): `180`", `🥈 **grave\_diggers**`, "4. **Late**"} {
		if !strings.Contains(embed.Description, want) {
			t.Fatalf("description %q does not contain %q", embed.Description, want)
		}
	}
	if embed.Color != colorGold {
		t.Fatalf("color = %x, want %x", embed.Color, colorGold)
	}

	if empty := rankingEmbed("Ranking", nil); empty.Description != "No teams yet." {
		t.Fatalf("empty description = %q", empty.Description)
	}
}

func TestTeamEmbed(t *testing.T) {
	died := date(2023, 12, 28)
	dead := &models.Athlet{WID: "Q1", Name: "Old Man", DateOfBirth: date(1930, 3, 1), DateOfDeath: &died,
		Genders: []string{"male"}, Citizenships: []string{"Italy"}, Occupations: []string{"actor"}}
	alive := &models.Athlet{WID: "Q2", Name: "Young Woman", DateOfBirth: date(1990, 3, 1),
		Genders: []string{"female"}, Citizenships: []string{"France"}, Occupations: []string{"singer"}}
	team := &models.Team{Name: "Reapers", OwnerName: "ann", AthletIDs: []string{"Q1", "Q2"}, CaptainID: "Q1"}
	g := &models.Game{Teams: []*models.Team{team}, Athlets: map[string]*models.Athlet{"Q1": dead, "Q2": alive}}
	report := game.BuildReport(g, team, now)

	embed := teamEmbed(&report)
	if !strings.HasPrefix(embed.Title, "Reapers: ") {
		t.Fatalf("title = %q", embed.Title)
	}
	for _, want := range []string{"`0` 🎖 Old Man, 93y 💀 ⏱ (", "`1` Young Woman, 34y 💓 (0 pt)"} {
		if !strings.Contains(embed.Description, want) {
			t.Fatalf("description %q does not contain %q", embed.Description, want)
		}
	}

	names := make([]string, len(embed.Fields))
	for i, f := range embed.Fields {
		names[i] = f.Name
	}
	if got := strings.Join(names, ","); got != "Inclusivity,Globetrotter,Jack of all Trades,Captain" {
		t.Fatalf("fields = %s", got)
	}
	if v := embed.Fields[0].Value; v != "0 pt\n**male**, female" {
		t.Fatalf("inclusivity = %q", v)
	}
}

func TestAnnouncementEmbeds(t *testing.T) {
	death := deathEmbed(application.DeathEvent{Athlet: &models.Athlet{WID: "Q1", Name: "Old Man"}, TeamName: "Reapers", Points: 7})
	if death.URL != "http://www.wikidata.org/entity/Q1" || !strings.Contains(death.Description, "**Reapers** rejoice: this death brings them 7 points") {
		t.Fatalf("death embed = %+v", death)
	}
	first := firstDeathEmbed(application.FirstDeathEvent{Teams: []*models.Team{{Name: "A"}, {Name: "B"}}})
	if !strings.HasSuffix(first.Description, "**A**, **B**") {
		t.Fatalf("first death description = %q", first.Description)
	}
}

func TestEscapeAndTruncate(t *testing.T) {
	if got := escape("*bold* _it_ `code`"); got != "\\*bold\\* \\_it\\_ \\`code\\`" {
		t.Fatalf("escape = %q", got)
	}
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("truncate = %q, want %q", got, "abc…")
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Fatalf("truncate = %q, want %q", got, "abc")
	}
}

func TestUserOf(t *testing.T) {
	tests := []struct {
		name string
		in   *discordgo.Interaction
		want models.User
	}{
		{
			name: "guild member with nick",
			in:   &discordgo.Interaction{Member: &discordgo.Member{Nick: "Boss", User: &discordgo.User{ID: "7", Username: "ann"}}},
			want: models.User{ID: "dc:7", Name: "Boss", Username: "ann"},
		},
		{
			name: "direct message",
			in:   &discordgo.Interaction{User: &discordgo.User{ID: "8", Username: "bob", GlobalName: "Bob"}},
			want: models.User{ID: "dc:8", Name: "Bob", Username: "bob"},
		},
		{
			name: "bare username",
			in:   &discordgo.Interaction{User: &discordgo.User{ID: "9", Username: "cid"}},
			want: models.User{ID: "dc:9", Name: "cid", Username: "cid"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userOf(tt.in); got != tt.want {
				t.Fatalf("userOf = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	i := &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "captain",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "index", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(2)},
				{Name: "query", Type: discordgo.ApplicationCommandOptionString, Value: "  Q42 "},
			},
		},
	}
	if got := intOption(i, "index"); got != 2 {
		t.Fatalf("intOption = %d, want 2", got)
	}
	if got := stringOption(i, "query"); got != "Q42" {
		t.Fatalf("stringOption = %q, want %q", got, "Q42")
	}
	if got := stringOption(i, "missing"); got != "" {
		t.Fatalf("stringOption(missing) = %q", got)
	}
	if got := intOption(i, "missing"); got != -1 {
		t.Fatalf("intOption(missing) = %d, want -1", got)
	}
}

func TestEnsureAdminLetsAdminsThrough(t *testing.T) {
	b := &Bot{adminIDs: map[string]struct{}{"dc:1": {}}}
	called := false
	h := b.ensureAdmin(func(context.Context, *discordgo.Session, *discordgo.Interaction) { called = true })

	h(context.Background(), nil, &discordgo.Interaction{User: &discordgo.User{ID: "1"}})
	if !called {
		t.Fatalf("admin was rejected")
	}
}
