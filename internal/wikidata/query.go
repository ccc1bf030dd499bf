package wikidata

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var idPattern = regexp.MustCompile(`^Q\d+$`)

// IsID reports whether s looks like a Wikidata item identifier.
func IsID(s string) bool {
	return idPattern.MatchString(s)
}

const selectClause = `SELECT DISTINCT ?person ?personLabel ?dateOfBirth ?dateOfDeath ?gender ?genderLabel ?citizenship ?citizenshipLabel ?occupation ?occupationLabel`

// Deprecated statements never count.
const optionalFacts = `
  OPTIONAL {
    ?person p:P21 ?stG .
    ?stG ps:P21 ?gender .
    MINUS { ?stG wikibase:rank wikibase:DeprecatedRank . }
  }
  OPTIONAL {
    ?person p:P27 ?stC .
    ?stC ps:P27 ?citizenship .
    MINUS { ?stC wikibase:rank wikibase:DeprecatedRank . }
  }
  OPTIONAL {
    ?person p:P106 ?stO .
    ?stO ps:P106 ?occupation .
    MINUS { ?stO wikibase:rank wikibase:DeprecatedRank . }
  }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "%s,en". }`

func idQuery(id, lang string) string {
	return selectClause + `
WHERE {
  ?person wdt:P31 wd:Q5 .
  ?person wdt:P569 ?dateOfBirth .
  OPTIONAL { ?person wdt:P570 ?dateOfDeath . }` +
		fmt.Sprintf(optionalFacts, lang) + `
  FILTER (?person = wd:` + id + `)
}`
}

func nameQuery(name, lang string) string {
	return selectClause + `
WHERE {
  ?person wdt:P31 wd:Q5 .
` + labelMatch(escapeLiteral(titleCase(name)), lang) + `
  ?person wdt:P569 ?dateOfBirth .
  OPTIONAL { ?person wdt:P570 ?dateOfDeath . }` +
		fmt.Sprintf(optionalFacts, lang) + `
}`
}

// deadQuery only matches items that carry a date of death.
func deadQuery(ids []string, lang string) string {
	refs := make([]string, len(ids))
	for i, id := range ids {
		refs[i] = "wd:" + id
	}
	return selectClause + `
WHERE {
  ?person wdt:P31 wd:Q5 .
  ?person wdt:P569 ?dateOfBirth .
  ?person wdt:P570 ?dateOfDeath .` +
		fmt.Sprintf(optionalFacts, lang) + `
  FILTER (?person IN (` + strings.Join(refs, ", ") + `))
}`
}

// labelMatch matches the label in the configured language or in English.
func labelMatch(literal, lang string) string {
	en := `  { ?person rdfs:label "` + literal + `"@en . }`
	if lang == "" || lang == "en" {
		return en
	}
	return `  { ?person rdfs:label "` + literal + `"@` + lang + ` . }
  UNION
` + en
}

func titleCase(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

func escapeLiteral(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ", "\r", " ").Replace(s)
}
