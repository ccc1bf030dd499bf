package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"fantamorto/internal/models"
)

func runningSession(rosters map[string][]string, order []string) *Session {
	g := &models.Game{ID: uuid.New(), TeamSize: 2, Status: models.GameStatusRun, Athlets: map[string]*models.Athlet{}}
	for _, name := range order {
		team := &models.Team{ID: uuid.New(), Name: name, OwnerID: name}
		for _, wid := range rosters[name] {
			team.AthletIDs = append(team.AthletIDs, wid)
			g.Athlets[wid] = alive(wid)
		}
		g.Teams = append(g.Teams, team)
	}
	return NewSession(g, WithClock(clockwork.NewFakeClockAt(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))))
}

func TestFirstDeathTiesAndIdempotence(t *testing.T) {
	s := runningSession(map[string][]string{
		"a": {"Q1", "Q2"},
		"b": {"Q3", "Q4"},
		"c": {"Q5", "Q6"},
	}, []string{"a", "b", "c"})

	march := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	batch := []*models.Athlet{dead("Q2", march), dead("Q3", march), dead("Q5", april), dead("Q99", time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC))}

	updated := s.ApplyMortality(batch)
	if len(updated) != 3 {
		t.Fatalf("ApplyMortality updated %v, want 3 athlets", updated)
	}

	flagged := s.UpdateFirstDeath(batch)
	if len(flagged) != 2 || flagged[0].Name != "a" || flagged[1].Name != "b" {
		t.Fatalf("flagged = %v, want teams a and b", flagged)
	}
	fd := s.Game().FirstDeaths
	if len(fd) != 2 || fd[0] != "Q2" || fd[1] != "Q3" {
		t.Fatalf("first deaths = %v, want [Q2 Q3]", fd)
	}
	if s.Game().TeamByOwner("c").HasFirstDeath {
		t.Fatalf("team c flagged for a later death")
	}

	later := []*models.Athlet{dead("Q6", time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))}
	s.ApplyMortality(later)
	if got := s.UpdateFirstDeath(later); got != nil {
		t.Fatalf("second UpdateFirstDeath = %v, want nil", got)
	}
	if len(s.Game().FirstDeaths) != 2 {
		t.Fatalf("first deaths changed: %v", s.Game().FirstDeaths)
	}
}

func TestFirstDeathIgnoresAliveAndForeign(t *testing.T) {
	s := runningSession(map[string][]string{"a": {"Q1"}}, []string{"a"})

	// Q1 reported without a death date and an unknown athlet
	batch := []*models.Athlet{alive("Q1"), dead("Q7", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))}
	s.ApplyMortality(batch)
	if got := s.UpdateFirstDeath(batch); got != nil {
		t.Fatalf("UpdateFirstDeath = %v, want nil", got)
	}
	if len(s.Game().FirstDeaths) != 0 {
		t.Fatalf("first deaths = %v, want empty", s.Game().FirstDeaths)
	}
}

func TestFirstDeathScoresBonus(t *testing.T) {
	s := runningSession(map[string][]string{"a": {"Q1"}, "b": {"Q2"}}, []string{"a", "b"})
	batch := []*models.Athlet{dead("Q1", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))}
	s.ApplyMortality(batch)
	s.UpdateFirstDeath(batch)

	a := s.Game().TeamByOwner("a")
	score := s.TeamScore(a)
	if score.FirstDeath != BonusFirstDeath {
		t.Fatalf("first death bonus = %d, want %d", score.FirstDeath, BonusFirstDeath)
	}

	report := s.Report(a)
	if len(report.Lines) != 1 || !report.Lines[0].FirstDeath || report.Lines[0].Score == 0 {
		t.Fatalf("report line = %+v", report.Lines)
	}
	if ranking := s.Ranking(); ranking[0].TeamName != "a" {
		t.Fatalf("leader = %s, want a", ranking[0].TeamName)
	}
}

func TestFirstDeathNoopWhenEnded(t *testing.T) {
	s := runningSession(map[string][]string{"a": {"Q1"}}, []string{"a"})
	s.Game().Status = models.GameStatusEnd
	batch := []*models.Athlet{dead("Q1", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))}
	s.ApplyMortality(batch)
	if got := s.UpdateFirstDeath(batch); got != nil {
		t.Fatalf("UpdateFirstDeath after END = %v, want nil", got)
	}
}
