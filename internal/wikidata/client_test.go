package wikidata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	domainerrors "fantamorto/internal/errors"
)

const adamsResponse = `{"results":{"bindings":[
 {"person":{"type":"uri","value":"http://www.wikidata.org/entity/Q42"},"personLabel":{"value":"Douglas Adams"},
  "dateOfBirth":{"value":"1952-03-11T00:00:00Z"},"dateOfDeath":{"value":"2001-05-11T00:00:00Z"},
  "gender":{"value":"http://www.wikidata.org/entity/Q6581097"},"genderLabel":{"value":"male"},
  "citizenship":{"value":"http://www.wikidata.org/entity/Q145"},"citizenshipLabel":{"value":"United Kingdom"},
  "occupation":{"value":"http://www.wikidata.org/entity/Q28389"},"occupationLabel":{"value":"screenwriter"}},
 {"person":{"type":"uri","value":"http://www.wikidata.org/entity/Q42"},"personLabel":{"value":"Douglas Adams"},
  "dateOfBirth":{"value":"1952-03-11T00:00:00Z"},"dateOfDeath":{"value":"2001-05-11T00:00:00Z"},
  "gender":{"value":"http://www.wikidata.org/entity/Q6581097"},"genderLabel":{"value":"male"},
  "citizenship":{"value":"http://www.wikidata.org/entity/Q145"},"citizenshipLabel":{"value":"United Kingdom"},
  "occupation":{"value":"http://www.wikidata.org/entity/Q6625963"},"occupationLabel":{"value":"novelist"}},
 {"person":{"type":"uri","value":"http://www.wikidata.org/entity/Q7"},"personLabel":{"value":"No Birth"}}
]}}`

const adamsEntities = `{"entities":{"Q42":{"claims":{
 "P21":[{"rank":"normal","mainsnak":{"datavalue":{"value":{"id":"Q6581097"}}}}],
 "P106":[
  {"rank":"normal","mainsnak":{"datavalue":{"value":{"id":"Q28389"}}}},
  {"rank":"preferred","mainsnak":{"datavalue":{"value":{"id":"Q6625963"}}}},
  {"rank":"deprecated","mainsnak":{"datavalue":{"value":{"id":"Q36180"}}}}
 ]
}}}}`

const (
	sparqlPath   = "/sparql"
	entitiesPath = "/w/api.php"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&Config{
		Endpoint:         srv.URL + sparqlPath,
		EntitiesEndpoint: srv.URL + entitiesPath,
		Language:         "it",
		Timeout:          time.Second,
	}, clockwork.NewFakeClock())
}

func TestSearchByIDGroupsBindings(t *testing.T) {
	var gotQuery, gotIDs string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q, want json", r.URL.Query().Get("format"))
		}
		if r.URL.Path == entitiesPath {
			gotIDs = r.URL.Query().Get("ids")
			fmt.Fprint(w, adamsEntities)
			return
		}
		gotQuery = r.URL.Query().Get("query")
		fmt.Fprint(w, adamsResponse)
	})

	athlets, err := c.Search(context.Background(), "q42")
	if err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if !strings.Contains(gotQuery, "FILTER (?person = wd:Q42)") {
		t.Fatalf("query does not filter by id:\n%s", gotQuery)
	}
	if !strings.Contains(gotQuery, `wikibase:language "it,en"`) {
		t.Fatalf("query does not use the configured language")
	}
	if !strings.Contains(gotQuery, "MINUS { ?stC wikibase:rank wikibase:DeprecatedRank . }") {
		t.Fatalf("query does not drop deprecated statements:\n%s", gotQuery)
	}
	if gotIDs != "Q42" {
		t.Fatalf("entities ids = %q, want Q42", gotIDs)
	}
	if len(athlets) != 1 {
		t.Fatalf("len(athlets) = %d, want 1", len(athlets))
	}
	a := athlets[0]
	if a.WID != "Q42" || a.Name != "Douglas Adams" || !a.IsDead() {
		t.Fatalf("athlet = %+v", a)
	}
	if len(a.Occupations) != 2 || a.PrimaryOccupation() != "novelist" {
		t.Fatalf("occupations = %v, want the preferred one first", a.Occupations)
	}
	if len(a.Genders) != 1 || a.PrimaryCitizenship() != "United Kingdom" {
		t.Fatalf("labels = %v %v", a.Genders, a.Citizenships)
	}
	if a.DateOfBirth.Format(time.DateOnly) != "1952-03-11" {
		t.Fatalf("DateOfBirth = %v", a.DateOfBirth)
	}
}

func citizenshipRow(id, label string) map[string]sparqlValue {
	return map[string]sparqlValue{
		"person":           {Value: "http://www.wikidata.org/entity/Q1"},
		"personLabel":      {Value: "Someone"},
		"dateOfBirth":      {Value: "1940-01-01T00:00:00Z"},
		"citizenship":      {Value: "http://www.wikidata.org/entity/" + id},
		"citizenshipLabel": {Value: label},
	}
}

func TestLabelOrder(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []map[string]sparqlValue{
		citizenshipRow("Q38", "Italy"),
		citizenshipRow("Q414", "Argentina"),
		citizenshipRow("Q38", "Italy"),
	}

	tests := []struct {
		name   string
		orders map[string]claimOrder
		want   []string
	}{
		{
			name: "binding order without ranks",
			want: []string{"Italy", "Argentina"},
		},
		{
			name:   "preferred rank first",
			orders: map[string]claimOrder{"Q1": {propCitizenship: {"Q414", "Q38"}}},
			want:   []string{"Argentina", "Italy"},
		},
		{
			name:   "values without a statement go last",
			orders: map[string]claimOrder{"Q1": {propCitizenship: {"Q414"}}},
			want:   []string{"Argentina", "Italy"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			athlets := athletsFromGroups(groupBindings(rows), tt.orders, now)
			if len(athlets) != 1 {
				t.Fatalf("len(athlets) = %d, want 1", len(athlets))
			}
			got := athlets[0].Citizenships
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("citizenships = %v, want %v", got, tt.want)
			}
			if athlets[0].PrimaryCitizenship() != tt.want[0] {
				t.Fatalf("PrimaryCitizenship = %q, want %q", athlets[0].PrimaryCitizenship(), tt.want[0])
			}
		})
	}
}

func TestRankedClaims(t *testing.T) {
	claims := map[string][]claim{}
	for _, c := range []struct{ rank, id string }{
		{"normal", "Q38"},
		{"deprecated", "Q183"},
		{"preferred", "Q414"},
		{"normal", ""},
		{"preferred", "Q142"},
	} {
		var cl claim
		cl.Rank = c.rank
		cl.Mainsnak.Datavalue.Value.ID = c.id
		claims[propCitizenship] = append(claims[propCitizenship], cl)
	}

	order := rankedClaims(claims)
	if got := strings.Join(order[propCitizenship], ","); got != "Q414,Q142,Q38" {
		t.Fatalf("citizenship order = %s, want Q414,Q142,Q38", got)
	}
	if len(order[propGender]) != 0 {
		t.Fatalf("gender order = %v, want empty", order[propGender])
	}
}

func TestSearchByNameTitleCases(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		fmt.Fprint(w, `{"results":{"bindings":[]}}`)
	})

	athlets, err := c.Search(context.Background(), `silvio berlusconi`)
	if err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if len(athlets) != 0 {
		t.Fatalf("len(athlets) = %d, want 0", len(athlets))
	}
	if !strings.Contains(gotQuery, `rdfs:label "Silvio Berlusconi"@en`) {
		t.Fatalf("query label not title-cased:\n%s", gotQuery)
	}
}

func TestNameQueryMatchesBothLanguages(t *testing.T) {
	q := nameQuery("papa francesco", "it")
	for _, want := range []string{`{ ?person rdfs:label "Papa Francesco"@it . }`, "UNION", `{ ?person rdfs:label "Papa Francesco"@en . }`} {
		if !strings.Contains(q, want) {
			t.Fatalf("query does not contain %q:\n%s", want, q)
		}
	}
	if q := nameQuery("papa francesco", "en"); strings.Contains(q, "UNION") {
		t.Fatalf("english query has a redundant branch:\n%s", q)
	}
}

func TestSearchEscapesQuotes(t *testing.T) {
	q := nameQuery(`a" } DROP`, "it")
	if !strings.Contains(q, `"A\" } Drop"@en`) {
		t.Fatalf("literal not escaped:\n%s", q)
	}
}

func TestFindDeadChunksIDs(t *testing.T) {
	var mu sync.Mutex
	var sizes []int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		mu.Lock()
		sizes = append(sizes, strings.Count(q, "wd:Q"))
		mu.Unlock()
		if !strings.Contains(q, "?person wdt:P570 ?dateOfDeath .\n") {
			t.Errorf("dead query does not require a death date")
		}
		fmt.Fprint(w, `{"results":{"bindings":[]}}`)
	})

	ids := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		ids = append(ids, fmt.Sprintf("Q%d", i+1))
	}
	ids = append(ids, "Q1", "not-an-id")

	if _, err := c.FindDead(context.Background(), ids); err != nil {
		t.Fatalf("FindDead error = %v", err)
	}
	// each query also references wd:Q5 (human)
	want := []int{101, 101, 51}
	if len(sizes) != len(want) {
		t.Fatalf("requests = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("requests = %v, want %v", sizes, want)
		}
	}
}

func TestUpstreamErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})
	_, err := c.Search(context.Background(), "Q42")
	if domainerrors.KindOf(err) != domainerrors.KindUpstreamUnavailable {
		t.Fatalf("error = %v, want UPSTREAM_UNAVAILABLE", err)
	}

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>")
	})
	_, err = c.FindDead(context.Background(), []string{"Q42"})
	if domainerrors.KindOf(err) != domainerrors.KindUpstreamUnavailable {
		t.Fatalf("error = %v, want UPSTREAM_UNAVAILABLE", err)
	}
}

func TestIsID(t *testing.T) {
	tests := map[string]bool{
		"Q11860":  true,
		"Q":       false,
		"Q12a":    false,
		" Q1":     false,
		"Douglas": false,
	}
	for in, want := range tests {
		if got := IsID(in); got != want {
			t.Fatalf("IsID(%q) = %v, want %v", in, got, want)
		}
	}
}
