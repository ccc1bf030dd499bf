package game

import (
	"time"

	"fantamorto/internal/models"
)

// AthletLine is one roster row of a team report.
type AthletLine struct {
	Index       int            `json:"index"`
	Athlet      *models.Athlet `json:"athlet"`
	Age         int            `json:"age"`
	Score       int            `json:"score"`
	Theoretical int            `json:"theoretical"`
	Captain     bool           `json:"captain"`
	FirstDeath  bool           `json:"first_death"`
	Gonzales    bool           `json:"gonzales"`
	Cesarini    bool           `json:"cesarini"`
	Club27      bool           `json:"club27"`
	Birthday    bool           `json:"birthday"`
}

type TeamReport struct {
	Team  *models.Team `json:"team"`
	Lines []AthletLine `json:"lines"`
	Score TeamScore    `json:"score"`

	// Distinct primary values over the whole roster, dead or alive.
	Citizenships []string `json:"citizenships"`
	Genders      []string `json:"genders"`
	Occupations  []string `json:"occupations"`
}

func BuildReport(g *models.Game, t *models.Team, now time.Time) TeamReport {
	athlets := g.TeamAthlets(t)
	r := TeamReport{
		Team:         t,
		Score:        ScoreTeam(g, t, now),
		Citizenships: distinct(athlets, (*models.Athlet).PrimaryCitizenship),
		Genders:      distinct(athlets, (*models.Athlet).PrimaryGender),
		Occupations:  distinct(athlets, (*models.Athlet).PrimaryOccupation),
	}
	for i, a := range athlets {
		r.Lines = append(r.Lines, AthletLine{
			Index:       i,
			Athlet:      a,
			Age:         a.Age(now),
			Score:       Score(a, now),
			Theoretical: TheoreticalScore(a, now),
			Captain:     t.IsCaptain(a.WID),
			FirstDeath:  g.IsFirstDeath(a.WID),
			Gonzales:    a.SpeedyGonzales(),
			Cesarini:    a.ZonaCesarini(),
			Club27:      a.Club27(now),
			Birthday:    a.HappyBirthday(),
		})
	}
	return r
}
