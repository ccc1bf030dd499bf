package models

import (
	"slices"
	"time"
)

const wikidataEntityURL = "http://www.wikidata.org/entity/"

// Athlet is a real person tracked for mortality-based scoring. WID is the merge key.
type Athlet struct {
	WID          string     `json:"wid" db:"wid"`
	Name         string     `json:"name" db:"name"`
	DateOfBirth  time.Time  `json:"date_of_birth" db:"date_of_birth"`
	DateOfDeath  *time.Time `json:"date_of_death,omitempty" db:"date_of_death"`
	Genders      []string   `json:"genders" db:"genders"`
	Citizenships []string   `json:"citizenships" db:"citizenships"`
	Occupations  []string   `json:"occupations" db:"occupations"`
	IsBanned     bool       `json:"is_banned" db:"is_banned"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

func (a *Athlet) IsDead() bool {
	return a.DateOfDeath != nil
}

// Age is measured at the date of death, or at now for the living.
func (a *Athlet) Age(now time.Time) int {
	ref := now
	if a.IsDead() {
		ref = *a.DateOfDeath
	}
	return CalculateAge(a.DateOfBirth, ref)
}

// CalculateAge counts whole years between birth and ref. The extra year is
// granted only when both the month and the day of ref are not behind birth.
func CalculateAge(birth, ref time.Time) int {
	years := ref.Year() - birth.Year()
	months := int(ref.Month()) - int(birth.Month())
	days := ref.Day() - birth.Day()

	age := years - 1
	if months >= 0 && days >= 0 {
		age++
	}
	return age
}

func (a *Athlet) URL() string {
	return wikidataEntityURL + a.WID
}

// SpeedyGonzales is set for deaths in January.
func (a *Athlet) SpeedyGonzales() bool {
	return a.IsDead() && a.DateOfDeath.Month() == time.January
}

// ZonaCesarini is set for deaths from December 25 on.
func (a *Athlet) ZonaCesarini() bool {
	return a.IsDead() && a.DateOfDeath.Month() == time.December && a.DateOfDeath.Day() >= 25
}

func (a *Athlet) Club27(now time.Time) bool {
	return a.Age(now) == 27
}

// HappyBirthday is set when the person died on their birthday.
func (a *Athlet) HappyBirthday() bool {
	return a.IsDead() &&
		a.DateOfDeath.Month() == a.DateOfBirth.Month() &&
		a.DateOfDeath.Day() == a.DateOfBirth.Day()
}

func (a *Athlet) PrimaryGender() string {
	return first(a.Genders)
}

func (a *Athlet) PrimaryCitizenship() string {
	return first(a.Citizenships)
}

func (a *Athlet) PrimaryOccupation() string {
	return first(a.Occupations)
}

// UpdateFrom merges refreshed biographical facts from other. Records for a
// different WID are ignored. Empty label lists never wipe known values.
func (a *Athlet) UpdateFrom(other *Athlet) bool {
	if other == nil || other.WID != a.WID {
		return false
	}

	changed := false
	if other.Name != "" && other.Name != a.Name {
		a.Name = other.Name
		changed = true
	}
	if !other.DateOfBirth.IsZero() && !other.DateOfBirth.Equal(a.DateOfBirth) {
		a.DateOfBirth = other.DateOfBirth
		changed = true
	}
	if other.DateOfDeath != nil && (a.DateOfDeath == nil || !other.DateOfDeath.Equal(*a.DateOfDeath)) {
		d := *other.DateOfDeath
		a.DateOfDeath = &d
		changed = true
	}
	changed = mergeLabels(&a.Genders, other.Genders) || changed
	changed = mergeLabels(&a.Citizenships, other.Citizenships) || changed
	changed = mergeLabels(&a.Occupations, other.Occupations) || changed
	if other.IsBanned && !a.IsBanned {
		a.IsBanned = true
		changed = true
	}
	if changed && !other.UpdatedAt.IsZero() {
		a.UpdatedAt = other.UpdatedAt
	}
	return changed
}

// Clone returns a deep copy.
func (a *Athlet) Clone() *Athlet {
	if a == nil {
		return nil
	}
	c := *a
	if a.DateOfDeath != nil {
		d := *a.DateOfDeath
		c.DateOfDeath = &d
	}
	c.Genders = slices.Clone(a.Genders)
	c.Citizenships = slices.Clone(a.Citizenships)
	c.Occupations = slices.Clone(a.Occupations)
	return &c
}

func mergeLabels(dst *[]string, src []string) bool {
	if len(src) == 0 || slices.Equal(*dst, src) {
		return false
	}
	*dst = slices.Clone(src)
	return true
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
