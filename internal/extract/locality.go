package extract

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Regions are the Costa Rican provinces recognized as locality tokens,
// in their canonical spelling.
var Regions = []string{
	"San José",
	"Heredia",
	"Cartago",
	"Alajuela",
	"Guanacaste",
	"Puntarenas",
	"Limón",
}

// regionText matches a region name inside raw page text, with or without
// accents. \b only knows ASCII word characters, so the boundaries are
// spelled out with Unicode classes.
var regionText = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(san jos[eé]|heredia|cartago|alajuela|guanacaste|puntarenas|lim[oó]n)(?:[^\p{L}\p{N}]|$)`)

// regionFolded matches region names in folded (lowercase, unaccented) text.
var regionFolded = func() *regexp.Regexp {
	names := make([]string, len(Regions))
	for i, r := range Regions {
		names[i] = regexp.QuoteMeta(fold(r))
	}
	return regexp.MustCompile(`\b(` + strings.Join(names, "|") + `)\b`)
}()

// connectorWords mark a sentence rather than a place name.
var connectorWords = regexp.MustCompile(`(?i)\b(para|de|en|con|por|sector|for|of|in|with|by)\b`)

// maxLocalityWords is the longest text still treated as a place name.
const maxLocalityWords = 6

// fold lowercases s and removes diacritics so "JOSÉ" and "jose" compare
// equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// containsFold reports whether s contains any of the substrings,
// ignoring case and accents.
func containsFold(s string, subs ...string) bool {
	f := fold(s)
	for _, sub := range subs {
		if strings.Contains(f, fold(sub)) {
			return true
		}
	}
	return false
}

// MatchRegion returns the canonical name of the first region mentioned in
// text, or "".
func MatchRegion(text string) string {
	m := regionFolded.FindStringSubmatch(fold(text))
	if m == nil {
		return ""
	}
	for _, r := range Regions {
		if fold(r) == m[1] {
			return r
		}
	}
	return ""
}

// NormalizeLocality reduces free text to a single locality token.
//
// Long text or text with connector words is a sentence; only the region
// token is kept, or "" when none is mentioned. Otherwise the part before the
// first comma is returned.
func NormalizeLocality(text string) string {
	text = Trim(text)
	if text == "" {
		return ""
	}
	if len(strings.Fields(text)) > maxLocalityWords || connectorWords.MatchString(text) {
		return MatchRegion(text)
	}
	if i := strings.Index(text, ","); i >= 0 {
		return Trim(text[:i])
	}
	return text
}
