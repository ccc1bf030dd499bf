package game

import (
	"slices"

	domainerrors "fantamorto/internal/errors"
	"fantamorto/internal/models"
)

// AddAthlet appends a to the team roster.
func AddAthlet(t *models.Team, a *models.Athlet, capacity int, allowDead bool) error {
	if t.IsFull(capacity) {
		return domainerrors.Newf(domainerrors.KindRosterFull, "team %s already has %d athlets", t.Name, capacity)
	}
	if t.Has(a.WID) {
		return domainerrors.Newf(domainerrors.KindAlreadyDrafted, "%s is already in team %s", a.Name, t.Name)
	}
	if a.IsDead() && !allowDead {
		return domainerrors.Newf(domainerrors.KindDeadEntityRejected, "%s is already dead", a.Name)
	}
	t.AthletIDs = append(t.AthletIDs, a.WID)
	return nil
}

// RemoveAthlet drops wid from the roster, clearing the captain if needed.
func RemoveAthlet(t *models.Team, wid string) error {
	idx := slices.Index(t.AthletIDs, wid)
	if idx < 0 {
		return domainerrors.Newf(domainerrors.KindNotAMember, "%s is not in team %s", wid, t.Name)
	}
	t.AthletIDs = slices.Delete(t.AthletIDs, idx, idx+1)
	if t.CaptainID == wid {
		t.CaptainID = ""
	}
	return nil
}

// SetCaptainByIndex makes the athlet at idx (draft order, 0-based) captain.
func SetCaptainByIndex(t *models.Team, idx int) error {
	if idx < 0 || idx >= len(t.AthletIDs) {
		return domainerrors.Newf(domainerrors.KindNotAMember, "team %s has no athlet number %d", t.Name, idx+1)
	}
	t.CaptainID = t.AthletIDs[idx]
	return nil
}
