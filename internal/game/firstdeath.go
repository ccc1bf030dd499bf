package game

import (
	"slices"
	"time"

	"fantamorto/internal/models"
)

// ApplyMortality merges refreshed facts into the rostered athlets and
// returns the WIDs that changed.
func (s *Session) ApplyMortality(batch []*models.Athlet) []string {
	var updated []string
	now := s.clock.Now()
	for _, fresh := range batch {
		a, ok := s.game.Athlets[fresh.WID]
		if !ok {
			continue
		}
		if a.UpdateFrom(fresh) {
			a.UpdatedAt = now
			updated = append(updated, a.WID)
		}
	}
	if len(updated) > 0 {
		s.touch()
	}
	return updated
}

// UpdateFirstDeath freezes the first-death set from a batch of deaths and
// flags the teams holding them. Once the set is known further calls do nothing.
func (s *Session) UpdateFirstDeath(batch []*models.Athlet) []*models.Team {
	if !s.game.IsActive() || len(s.game.FirstDeaths) > 0 {
		return nil
	}

	var candidates []*models.Athlet
	for _, b := range batch {
		a, ok := s.game.Athlets[b.WID]
		if !ok || !a.IsDead() || s.game.DraftedBy(a.WID) == nil {
			continue
		}
		if !slices.ContainsFunc(candidates, func(c *models.Athlet) bool { return c.WID == a.WID }) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	earliest := day(*candidates[0].DateOfDeath)
	for _, a := range candidates[1:] {
		if d := day(*a.DateOfDeath); d.Before(earliest) {
			earliest = d
		}
	}

	var first []string
	for _, a := range candidates {
		if day(*a.DateOfDeath).Equal(earliest) {
			first = append(first, a.WID)
		}
	}
	slices.Sort(first)
	s.game.FirstDeaths = first

	var flagged []*models.Team
	for _, t := range s.game.Teams {
		if slices.ContainsFunc(first, t.Has) {
			t.HasFirstDeath = true
			flagged = append(flagged, t)
		}
	}
	s.touch()
	return flagged
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
