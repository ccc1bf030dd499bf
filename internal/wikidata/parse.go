package wikidata

import (
	"slices"
	"strings"
	"time"

	"fantamorto/internal/models"
)

// Wikidata properties behind the label lists.
const (
	propGender      = "P21"
	propCitizenship = "P27"
	propOccupation  = "P106"
)

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type entitiesResponse struct {
	Entities map[string]struct {
		Claims map[string][]claim `json:"claims"`
	} `json:"entities"`
}

type claim struct {
	Rank     string `json:"rank"`
	Mainsnak struct {
		Datavalue struct {
			Value struct {
				ID string `json:"id"`
			} `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

// claimOrder maps a property to its value IDs, most relevant first.
type claimOrder map[string][]string

// rankedClaims lists preferred values, then normal ones in statement order.
// Deprecated and valueless statements are dropped.
func rankedClaims(claims map[string][]claim) claimOrder {
	order := make(claimOrder, 3)
	for _, prop := range []string{propGender, propCitizenship, propOccupation} {
		var preferred, normal []string
		for _, c := range claims[prop] {
			id := c.Mainsnak.Datavalue.Value.ID
			if id == "" {
				continue
			}
			switch c.Rank {
			case "deprecated":
			case "preferred":
				preferred = append(preferred, id)
			default:
				normal = append(normal, id)
			}
		}
		order[prop] = append(preferred, normal...)
	}
	return order
}

type groupKey struct {
	person string
	birth  string
	label  string
	death  string
}

type fact struct {
	id    string
	label string
}

type group struct {
	key          groupKey
	genders      []fact
	citizenships []fact
	occupations  []fact
}

func (g *group) wid() string {
	return entityID(g.key.person)
}

// groupBindings folds the per-fact rows of a SPARQL result into one group
// per (person, birth, label, death), keeping the first-seen order of facts.
// Rows without a birth date are dropped.
func groupBindings(bindings []map[string]sparqlValue) []*group {
	var groups []*group
	byKey := make(map[groupKey]*group)

	for _, b := range bindings {
		key := groupKey{
			person: b["person"].Value,
			birth:  b["dateOfBirth"].Value,
			label:  b["personLabel"].Value,
			death:  b["dateOfDeath"].Value,
		}
		if key.person == "" || key.birth == "" {
			continue
		}
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.genders = appendFact(g.genders, b["gender"].Value, b["genderLabel"].Value)
		g.citizenships = appendFact(g.citizenships, b["citizenship"].Value, b["citizenshipLabel"].Value)
		g.occupations = appendFact(g.occupations, b["occupation"].Value, b["occupationLabel"].Value)
	}
	return groups
}

// athletsFromGroups builds one athlet per group, oldest first. Label lists
// follow orders when the person has one, binding order otherwise.
func athletsFromGroups(groups []*group, orders map[string]claimOrder, now time.Time) []*models.Athlet {
	athlets := make([]*models.Athlet, 0, len(groups))
	for _, g := range groups {
		birth, ok := parseDate(g.key.birth)
		if !ok {
			continue
		}
		wid := g.wid()
		order := orders[wid]

		a := &models.Athlet{
			WID:          wid,
			Name:         g.key.label,
			DateOfBirth:  birth,
			Genders:      orderedLabels(g.genders, order[propGender]),
			Citizenships: orderedLabels(g.citizenships, order[propCitizenship]),
			Occupations:  orderedLabels(g.occupations, order[propOccupation]),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if death, ok := parseDate(g.key.death); ok {
			a.DateOfDeath = &death
		}
		athlets = append(athlets, a)
	}

	slices.SortStableFunc(athlets, func(a, b *models.Athlet) int {
		if c := a.DateOfBirth.Compare(b.DateOfBirth); c != 0 {
			return c
		}
		return strings.Compare(a.WID, b.WID)
	})
	return athlets
}

func appendFact(facts []fact, uri, label string) []fact {
	if label == "" {
		return facts
	}
	f := fact{id: entityID(uri), label: label}
	if slices.ContainsFunc(facts, func(o fact) bool { return o.label == f.label || (f.id != "" && o.id == f.id) }) {
		return facts
	}
	return append(facts, f)
}

// orderedLabels lists the labels of facts in the order of ids. Facts missing
// from ids keep their binding order at the end.
func orderedLabels(facts []fact, ids []string) []string {
	labels := make([]string, 0, len(facts))
	for _, id := range ids {
		if i := slices.IndexFunc(facts, func(f fact) bool { return f.id == id }); i >= 0 && !slices.Contains(labels, facts[i].label) {
			labels = append(labels, facts[i].label)
		}
	}
	for _, f := range facts {
		if !slices.Contains(labels, f.label) {
			labels = append(labels, f.label)
		}
	}
	if len(labels) == 0 {
		return nil
	}
	return labels
}

func entityID(uri string) string {
	return uri[strings.LastIndex(uri, "/")+1:]
}

// parseDate keeps the calendar day of a Wikidata timestamp.
func parseDate(v string) (time.Time, bool) {
	if len(v) < len(time.DateOnly) {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, v[:len(time.DateOnly)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
