// Package intent classifies free-text replies into the closed set of
// intents the conversation engine understands.
package intent

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Intent is the classification of an inbound reply body.
type Intent int

const (
	// Unrecognized covers anything outside the fixed token sets,
	// including empty bodies.
	Unrecognized Intent = iota
	// Affirmative means the lead agreed ("sim", "pode enviar", ...).
	Affirmative
	// Negative means the lead refused ("não", "sem interesse", ...).
	Negative
)

func (i Intent) String() string {
	switch i {
	case Affirmative:
		return "affirmative"
	case Negative:
		return "negative"
	default:
		return "unrecognized"
	}
}

var affirmatives = map[string]struct{}{
	"SIM":            {},
	"S":              {},
	"OK":             {},
	"CLARO":          {},
	"POSSO":          {},
	"QUERO":          {},
	"VAMOS":          {},
	"SIM POR FAVOR":  {},
	"SIM, POR FAVOR": {},
	"POSITIVO":       {},
	"TA":             {},
	"BORA":           {},
	"ENVIA":          {},
	"PODE ENVIAR":    {},
}

var negatives = map[string]struct{}{
	"NAO":                 {},
	"N":                   {},
	"NAO QUERO":           {},
	"NAO, OBRIGADO":       {},
	"NAO OBRIGADO":        {},
	"NAO, OBRIGADA":       {},
	"NAO OBRIGADA":        {},
	"NAO TENHO INTERESSE": {},
	"SEM INTERESSE":       {},
	"PARE":                {},
	"PARAR":               {},
	"SAIR":                {},
	"REMOVER":             {},
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Classify maps a reply body to an intent. Matching is whole-message
// against the fixed token sets after case folding and diacritic
// stripping. Affirmative is checked before negative on purpose: mixed
// replies that could match both lean affirmative.
func Classify(body string) Intent {
	t := normalizeText(body)
	if t == "" {
		return Unrecognized
	}
	if _, ok := affirmatives[t]; ok {
		return Affirmative
	}
	if _, ok := negatives[t]; ok {
		return Negative
	}
	return Unrecognized
}

func normalizeText(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(strings.TrimSpace(folded))
}
