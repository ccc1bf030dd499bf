package telegram

import (
	"strings"
	"testing"
	"time"

	"fantamorto/internal/application"
	"fantamorto/internal/game"
	"fantamorto/internal/models"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRankingTextUsesMedals(t *testing.T) {
	text := rankingText([]models.Standing{
		{TeamName: "Reapers", OwnerName: "ann", Score: 180, Position: 1},
		{TeamName: "Ghouls", OwnerName: "bob", Score: 60, Position: 2},
		{TeamName: "Mourners", OwnerName: "cid", Score: 60, Position: 2},
		{TeamName: "<Late>", OwnerName: "dan", Score: 0, Position: 4},
	})
	for _, want := range []string{"🥇 180 - Reapers", "🥈 60 - Ghouls", "🥈 60 - Mourners", "4. 0 - &lt;Late&gt;"} {
		if !strings.Contains(text, want) {
			t.Fatalf("ranking %q does not contain %q", text, want)
		}
	}
}

func TestFinalTextNamesTheWinner(t *testing.T) {
	text := finalText([]models.Standing{{TeamName: "Reapers", Score: 90, Position: 1}})
	if !strings.Contains(text, "<b>Reapers</b>") || !strings.Contains(text, "🥇 Reapers: 90") {
		t.Fatalf("final text = %q", text)
	}
	if text := finalText(nil); strings.Contains(text, "winner") {
		t.Fatalf("final text without teams = %q", text)
	}
}

func TestTeamText(t *testing.T) {
	died := date(2024, 1, 10)
	dead := &models.Athlet{WID: "Q1", Name: "Old Man", DateOfBirth: date(1930, 3, 1), DateOfDeath: &died,
		Genders: []string{"male"}, Citizenships: []string{"Italy"}, Occupations: []string{"actor"}}
	alive := &models.Athlet{WID: "Q2", Name: "Young Woman", DateOfBirth: date(1990, 3, 1),
		Genders: []string{"female"}, Citizenships: []string{"France"}, Occupations: []string{"singer"}}
	team := &models.Team{Name: "Reapers", OwnerName: "ann", AthletIDs: []string{"Q1", "Q2"}, CaptainID: "Q2", HasFirstDeath: true}
	g := &models.Game{
		Teams:       []*models.Team{team},
		Athlets:     map[string]*models.Athlet{"Q1": dead, "Q2": alive},
		FirstDeaths: []string{"Q1"},
	}
	report := game.BuildReport(g, team, now)

	text := teamText(&report)
	for _, want := range []string{
		"NAME: <b>Reapers</b>",
		"0: Old Man - 93y 💀 🩸 🐭 (",
		"1: 🎖 Young Woman - 34y 💓 (0 pt)",
		"First death:",
		"(<b>male</b>, female)",
		"(<b>Italy</b>, France)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("team text %q does not contain %q", text, want)
		}
	}
}

func TestAthletText(t *testing.T) {
	a := &models.Athlet{WID: "Q7", Name: "Mario & Co", DateOfBirth: date(1950, 8, 1),
		Genders: []string{"male"}, Occupations: []string{"plumber", "hero"}, IsBanned: true}
	text := athletText(a, now)
	for _, want := range []string{
		`<a href="http://www.wikidata.org/entity/Q7">Mario &amp; Co</a>`,
		"<u>plumber</u>, hero",
		"Citizenship: none.",
		"73 years old",
		"if it were not banned",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("athlet text %q does not contain %q", text, want)
		}
	}
}

func TestCandidatesText(t *testing.T) {
	text := candidatesText("mario", []*models.Athlet{
		{WID: "Q10", DateOfBirth: date(1950, 8, 1)},
		{WID: "Q11", DateOfBirth: date(1980, 8, 1)},
	}, now)
	if !strings.Contains(text, "1: <a href=\"http://www.wikidata.org/entity/Q10\">Q10</a>\t73y") ||
		!strings.Contains(text, "2: <a href=\"http://www.wikidata.org/entity/Q11\">Q11</a>\t43y") {
		t.Fatalf("candidates text = %q", text)
	}
}

func TestAnnouncementTexts(t *testing.T) {
	death := deathText(application.DeathEvent{Athlet: &models.Athlet{Name: "Old Man"}, TeamName: "Reapers", Points: 7})
	if !strings.Contains(death, "+++ DEAD +++") || !strings.Contains(death, "<b>Reapers</b> rejoice: this death brings them 7 points") {
		t.Fatalf("death text = %q", death)
	}
	first := firstDeathText(application.FirstDeathEvent{Teams: []*models.Team{{Name: "A"}, {Name: "B"}}})
	if !strings.Contains(first, "FIRST DEATH!") || !strings.Contains(first, "<b>A</b>, <b>B</b>") {
		t.Fatalf("first death text = %q", first)
	}
}

func TestParseChatID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"tg:-1001234", -1001234, false},
		{"tg:42", 42, false},
		{"dc:42", 0, true},
		{"tg:", 0, true},
		{"tg:abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseChatID(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("parseChatID(%q) = %d, %v, want %d (error %v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
	if key := chatKey(-1001234); key != "tg:-1001234" {
		t.Fatalf("chatKey = %q", key)
	}
}

func TestParseSendArgs(t *testing.T) {
	tests := []struct {
		in       string
		wantChat int64
		wantText string
		wantErr  bool
	}{
		{"-1001234 hello there", -1001234, "hello there", false},
		{"tg:42   ciao ", 42, "ciao", false},
		{"42", 0, "", true},
		{"", 0, "", true},
		{"dc:42 hi", 0, "", true},
	}
	for _, tt := range tests {
		chat, text, err := parseSendArgs(tt.in)
		if (err != nil) != tt.wantErr || chat != tt.wantChat || text != tt.wantText {
			t.Fatalf("parseSendArgs(%q) = %d, %q, %v, want %d, %q (error %v)", tt.in, chat, text, err, tt.wantChat, tt.wantText, tt.wantErr)
		}
	}
}

func TestDefaultTeamName(t *testing.T) {
	if got := defaultTeamName(models.User{Name: "Ann", Username: "ann_88"}); got != "Team ann_88" {
		t.Fatalf("defaultTeamName = %q, want %q", got, "Team ann_88")
	}
	if got := defaultTeamName(models.User{Name: "Ann"}); got != "Team Ann" {
		t.Fatalf("defaultTeamName = %q, want %q", got, "Team Ann")
	}
}
