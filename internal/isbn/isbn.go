// Package isbn normalizes and validates ISBN input coming from forms and barcode scanners.
package isbn

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalid is returned when no plausible ISBN can be extracted from the input.
var ErrInvalid = errors.New("invalid ISBN")

var (
	isbn10Pattern = regexp.MustCompile(`^\d{9}[\dX]$`)
	isbn13Pattern = regexp.MustCompile(`^97[89]\d{10}$`)
	leading13     = regexp.MustCompile(`^(97[89]\d{10})`)
	nonDigit      = regexp.MustCompile(`\D`)
)

// Normalize strips hyphens and whitespace and uppercases the check character.
// It does not validate.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(raw) {
		if r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Extract returns a normalized ISBN from raw input.
//
// Valid ISBN-10 and ISBN-13 values are returned as-is after normalization.
// Scanner output carrying a price add-on (e.g. "9781234567890 59099") yields
// the leading ISBN-13. Anything else between 10 and 13 characters is passed
// through so the catalog can make the final call.
func Extract(raw string) (string, error) {
	n := Normalize(raw)

	switch len(n) {
	case 10:
		if isbn10Pattern.MatchString(n) {
			return n, nil
		}
	case 13:
		if isbn13Pattern.MatchString(n) {
			return n, nil
		}
	}

	digits := nonDigit.ReplaceAllString(n, "")
	if len(digits) >= 13 {
		if m := leading13.FindStringSubmatch(digits); m != nil {
			return m[1], nil
		}
	}

	if len(n) >= 10 && len(n) <= 13 {
		return n, nil
	}
	return "", ErrInvalid
}

// Valid reports whether s is a well-formed ISBN-10 or ISBN-13 (978/979 prefix).
// Check digits are not verified.
func Valid(s string) bool {
	n := Normalize(s)
	return isbn10Pattern.MatchString(n) || isbn13Pattern.MatchString(n)
}
