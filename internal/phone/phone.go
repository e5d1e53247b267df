// Package phone normalizes Brazilian phone numbers into the canonical
// digit-only form used as the lookup key everywhere else, and enumerates
// the ninth-digit variants of a canonical number. WhatsApp sometimes
// requires the 13-digit form on the way out and reports the 12-digit form
// on the way back, so every lookup has to try both.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// CountryCode is the Brazilian DDI prepended to every canonical number.
const CountryCode = "55"

const region = "BR"

// Lengths of the two valid canonical forms: 55 + 2-digit area code + 8
// digits, with or without the mobile ninth digit.
const (
	lenWithNinth    = 13
	lenWithoutNinth = 12
	ninthDigitPos   = 4
)

// Normalize strips everything but digits and guarantees the 55 prefix.
// Duplicated leading country codes and leading zeros left over from
// double-prepending are collapsed. Empty input normalizes to "".
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n := b.String()
	if n == "" {
		return ""
	}
	if !strings.HasPrefix(n, CountryCode) {
		n = CountryCode + n
	}
	// Collapse "5555…" and "550…" into a single clean prefix.
	rest := strings.TrimLeft(n[1:], "5")
	rest = strings.TrimLeft(rest, "0")
	return CountryCode + rest
}

// Variants returns the canonical number plus its ninth-digit counterpart
// when one exists. The relation is symmetric: for any b in Variants(a),
// a is in Variants(b).
func Variants(canonical string) []string {
	out := []string{canonical}
	switch {
	case len(canonical) == lenWithNinth && canonical[ninthDigitPos] == '9':
		out = append(out, canonical[:ninthDigitPos]+canonical[ninthDigitPos+1:])
	case len(canonical) == lenWithoutNinth:
		out = append(out, canonical[:ninthDigitPos]+"9"+canonical[ninthDigitPos:])
	}
	return out
}

// IsValid reports whether the canonical number parses as a valid Brazilian
// number. The campaign scheduler uses this to skip garbage candidates
// before wasting a provider send on them.
func IsValid(canonical string) bool {
	if canonical == "" {
		return false
	}
	num, err := phonenumbers.Parse("+"+canonical, region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}
