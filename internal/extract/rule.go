package extract

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/jobcrawl/internal/document"
)

// Input is what every rule reads from.
type Input struct {
	// Doc is the parsed detail page.
	Doc *document.Document

	// Card is the listing-page card that linked to the detail page.
	// It is the zero Node when no listing context is available.
	Card document.Node

	// PageURL is the detail page address, used to resolve relative links.
	PageURL *url.URL
}

// Resolve turns a possibly relative reference into an absolute URL.
// It returns the reference unchanged when it cannot be resolved.
func (in Input) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || in.PageURL == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return in.PageURL.ResolveReference(u).String()
}

// Rule is one named candidate strategy for a field.
//
// Apply reports ok only for a usable, non-empty value.
type Rule[T any] struct {
	Name  string
	Apply func(in Input) (T, bool)
}

// try runs the rule, converting a panic into a ParseError.
func (r Rule[T]) try(field string, in Input) (v T, ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero T
			v, ok = zero, false
			err = &ParseError{Field: field, Rule: r.Name, Cause: p}
		}
	}()
	v, ok = r.Apply(in)
	return v, ok, nil
}

// Field is an ordered list of rules producing one record field.
type Field[T any] struct {
	Name  string
	Rules []Rule[T]
}

// Extract returns the value of the first rule that succeeds, or the zero
// value when none does.
func (f Field[T]) Extract(in Input, logger *slog.Logger) T {
	for _, r := range f.Rules {
		v, ok, err := r.try(f.Name, in)
		if err != nil {
			if logger != nil {
				logger.Debug("extraction rule failed", "field", f.Name, "rule", r.Name, "error", err)
			}
			continue
		}
		if ok {
			return v
		}
	}
	var zero T
	return zero
}

// Transform post-processes a raw string picked by a rule.
type Transform func(string) string

// Trim collapses internal whitespace and trims both ends.
func Trim(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Strip returns a Transform removing every match of re.
func Strip(re *regexp.Regexp) Transform {
	return func(s string) string {
		return re.ReplaceAllString(s, "")
	}
}

// Before returns a Transform keeping only the text before the first match
// of re.
func Before(re *regexp.Regexp) Transform {
	return func(s string) string {
		if loc := re.FindStringIndex(s); loc != nil {
			return s[:loc[0]]
		}
		return s
	}
}

// MaxLen returns a Transform discarding values of n runes or more.
func MaxLen(n int) Transform {
	return func(s string) string {
		if len([]rune(s)) >= n {
			return ""
		}
		return s
	}
}

// Text builds a string rule from a selector and transforms. Trim is always
// applied last, and an empty result means no match.
func Text(name string, pick func(in Input) (string, bool), transforms ...Transform) Rule[string] {
	return Rule[string]{
		Name: name,
		Apply: func(in Input) (string, bool) {
			s, ok := pick(in)
			if !ok {
				return "", false
			}
			for _, t := range transforms {
				s = t(s)
			}
			s = Trim(s)
			return s, s != ""
		},
	}
}

// Flag builds a boolean rule that matches when pick reports true.
func Flag(name string, pick func(in Input) bool) Rule[bool] {
	return Rule[bool]{
		Name: name,
		Apply: func(in Input) (bool, bool) {
			if pick(in) {
				return true, true
			}
			return false, false
		},
	}
}
