// Package normalize turns raw extracted fields into stable display values and ids.
package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// NBSP keeps phone numbers and captions from wrapping.
const NBSP = "\u00a0"

var (
	titlePrefixes = []string{"Факультет ", "Кафедра "}
	titleReplacer = strings.NewReplacer("інформаційних технологій", "ІТ")

	phonePrefix   = regexp.MustCompile(`(?i)^(тел\.|тел|tel\.|tel|факс)\s*:?\s*`)
	datePattern   = regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4})`)
	spaceRun      = regexp.MustCompile(`[\s\x{00a0}]+`)
	wrappingParen = regexp.MustCompile(`^[()]+|[()]+$`)
)

// CardID derives the content-addressed id "<prefix>_<sha1(key)>". An empty key
// hashes as "unknown".
func CardID(prefix, naturalKey string) string {
	if naturalKey == "" {
		naturalKey = "unknown"
	}
	sum := sha1.Sum([]byte(naturalKey))
	return prefix + "_" + hex.EncodeToString(sum[:])
}

// Title trims s, strips faculty/chair boilerplate and capitalizes the first letter.
func Title(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range titlePrefixes {
		s = strings.Replace(s, p, "", 1)
	}
	s = titleReplacer.Replace(s)
	return Capitalize(strings.TrimSpace(s))
}

// Capitalize upper-cases the first rune.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Text trims s and collapses whitespace runs, including NBSP, to single spaces.
func Text(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Role strips parentheses wrapping a position caption.
func Role(s string) string {
	return strings.TrimSpace(wrappingParen.ReplaceAllString(strings.TrimSpace(s), ""))
}

// Phone strips "тел."/"tel."/"факс" style prefixes and binds the number with
// non-breaking spaces.
func Phone(s string) string {
	s = strings.TrimSpace(phonePrefix.ReplaceAllString(strings.TrimSpace(s), ""))
	s = strings.ReplaceAll(s, " ", NBSP)
	return strings.ReplaceAll(s, "-", "-"+NBSP)
}

// IsPhoneLine reports whether a text line carries a phone number.
func IsPhoneLine(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "тел")
}

// Date finds the first DD.MM.YYYY token in s, falling back to now.
func Date(s string, now time.Time) time.Time {
	m := datePattern.FindString(s)
	if m == "" {
		return now
	}
	t, err := time.ParseInLocation("02.01.2006", m, now.Location())
	if err != nil {
		return now
	}
	return t
}
