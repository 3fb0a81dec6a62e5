package document

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Criteria describes which elements a lookup matches. All set conditions
// must hold; an empty Criteria matches every element.
type Criteria struct {
	// Tags restricts the match to the given element names.
	Tags []string

	// Class requires the element to carry this exact class token.
	Class string

	// ClassPattern requires at least one class token to match.
	ClassPattern *regexp.Regexp

	// Attr requires the attribute to be present. When AttrPattern is set
	// the attribute value must also match it.
	Attr        string
	AttrPattern *regexp.Regexp

	// Text requires the element's own text (its direct text children) to
	// match.
	Text *regexp.Regexp
}

// Tag is shorthand for a Criteria matching any of the given tags.
func Tag(tags ...string) Criteria {
	return Criteria{Tags: tags}
}

// selector returns the CSS selector used to preselect candidates.
func (c Criteria) selector() string {
	if len(c.Tags) == 0 {
		return "*"
	}
	return strings.Join(c.Tags, ",")
}

// match reports whether the element satisfies every condition except
// the tag, which the selector already enforced.
func (c Criteria) match(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(c.Tags) > 0 && !slices.Contains(c.Tags, n.Data) {
		return false
	}
	if c.Class != "" || c.ClassPattern != nil {
		classes := strings.Fields(attr(n, "class"))
		if c.Class != "" && !slices.Contains(classes, c.Class) {
			return false
		}
		if c.ClassPattern != nil && !slices.ContainsFunc(classes, c.ClassPattern.MatchString) {
			return false
		}
	}
	if c.Attr != "" {
		v, ok := lookupAttr(n, c.Attr)
		if !ok {
			return false
		}
		if c.AttrPattern != nil && !c.AttrPattern.MatchString(v) {
			return false
		}
	}
	if c.Text != nil && !c.Text.MatchString(ownText(n)) {
		return false
	}
	return true
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}
