package leads

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.BrazilianPortuguese)

// Record is the campaign's knowledge of one targeted contact. Phones holds
// every canonical candidate number supplied for the lead, in the order they
// should be tried; the active index is owned by the Registry and advances
// when a send fails or a reply points at the wrong person.
type Record struct {
	ID          string
	DisplayName string
	CaseRef     string
	Phones      []string

	activeIndex int
}

// ActivePhone returns the candidate currently being tried, or "" when the
// list is exhausted.
func (r *Record) ActivePhone() string {
	if r == nil || r.activeIndex >= len(r.Phones) {
		return ""
	}
	return r.Phones[r.activeIndex]
}

// FirstName returns the lead's title-cased first name, or "Contato" when
// no name is on file. Used as the template body parameter.
func (r *Record) FirstName() string {
	if r == nil {
		return "Contato"
	}
	parts := strings.Fields(r.DisplayName)
	if len(parts) == 0 {
		return "Contato"
	}
	return titleCaser.String(strings.ToLower(parts[0]))
}
