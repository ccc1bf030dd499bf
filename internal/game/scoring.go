package game

import (
	"slices"
	"time"

	"fantamorto/internal/models"
)

// TeamScore is the breakdown of a team's total.
type TeamScore struct {
	Athlets         int `json:"athlets"`
	Globetrotter    int `json:"globetrotter"`
	Inclusivity     int `json:"inclusivity"`
	JackOfAllTrades int `json:"jack_of_all_trades"`
	Captain         int `json:"captain"`
	FirstDeath      int `json:"first_death"`
	Total           int `json:"total"`

	// Distinct primary values among dead members.
	Citizenships []string `json:"citizenships"`
	Genders      []string `json:"genders"`
	Occupations  []string `json:"occupations"`
}

// TheoreticalScore is what the athlet would be worth if dead now.
func TheoreticalScore(a *models.Athlet, now time.Time) int {
	score := BaseScore - a.Age(now)
	if a.SpeedyGonzales() {
		score += BonusSpeedyGonzales
	}
	if a.ZonaCesarini() {
		score += BonusZonaCesarini
	}
	if a.Club27(now) {
		score += BonusClub27
	}
	if a.HappyBirthday() {
		score += BonusHappyBirthday
	}
	return score
}

// Score is zero for the living and the banned.
func Score(a *models.Athlet, now time.Time) int {
	if a == nil || a.IsBanned || !a.IsDead() {
		return 0
	}
	return TheoreticalScore(a, now)
}

// ScoreTeam recomputes the team total from the current arena state.
func ScoreTeam(g *models.Game, t *models.Team, now time.Time) TeamScore {
	var s TeamScore
	var dead []*models.Athlet
	for _, a := range g.TeamAthlets(t) {
		if !a.IsDead() {
			continue
		}
		dead = append(dead, a)
		s.Athlets += Score(a, now)
	}

	s.Citizenships = distinct(dead, (*models.Athlet).PrimaryCitizenship)
	s.Genders = distinct(dead, (*models.Athlet).PrimaryGender)
	s.Occupations = distinct(dead, (*models.Athlet).PrimaryOccupation)

	s.Globetrotter = beyondFirst(len(s.Citizenships)) * GlobetrotterMult
	s.Inclusivity = beyondFirst(len(s.Genders)) * InclusivityMult
	s.JackOfAllTrades = beyondFirst(len(s.Occupations)) * JackOfAllTradesMult

	if t.HasCaptain() {
		s.Captain = (CaptainMult - 1) * Score(g.Athlet(t.CaptainID), now)
	}
	if t.HasFirstDeath {
		s.FirstDeath = BonusFirstDeath
	}

	s.Total = s.Athlets + s.Globetrotter + s.Inclusivity + s.JackOfAllTrades + s.Captain + s.FirstDeath
	return s
}

// Ranking orders teams by total score. Ties keep join order.
func Ranking(g *models.Game, now time.Time) []models.Standing {
	standings := make([]models.Standing, 0, len(g.Teams))
	for _, t := range g.Teams {
		standings = append(standings, models.Standing{
			TeamID:    t.ID.String(),
			TeamName:  t.Name,
			OwnerName: t.OwnerName,
			Score:     ScoreTeam(g, t, now).Total,
		})
	}
	slices.SortStableFunc(standings, func(a, b models.Standing) int {
		return b.Score - a.Score
	})
	for i := range standings {
		standings[i].Position = i + 1
	}
	return standings
}

func distinct(athlets []*models.Athlet, primary func(*models.Athlet) string) []string {
	var values []string
	for _, a := range athlets {
		v := primary(a)
		if v == "" || slices.Contains(values, v) {
			continue
		}
		values = append(values, v)
	}
	slices.Sort(values)
	return values
}

func beyondFirst(n int) int {
	return max(0, n-1)
}
