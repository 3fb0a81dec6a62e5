package extract

import (
	"regexp"
	"strings"

	"github.com/nao1215/jobcrawl/internal/document"
)

// detailBox marks the label/value containers used on detail pages.
var detailBox = document.Criteria{Class: "box_detail"}

var labelCandidates = document.Tag("p", "span", "li", "dt", "strong", "b", "h3", "h4", "div")

// labelPattern builds a matcher for "Label: value" where label is any of
// the given alternatives.
func labelPattern(labels ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*(?:` + strings.Join(labels, "|") + `)(?:[^:]{0,20}:|\s*:?)\s*(.*)$`)
}

// labeled returns a picker reading the value that follows label inside a
// detail box. The value is the text after the label on the same element,
// else the next sibling element, else the parent's own text.
func labeled(label *regexp.Regexp) func(in Input) (string, bool) {
	return func(in Input) (string, bool) {
		for _, box := range in.Doc.FindAll(detailBox) {
			for _, el := range box.FindAll(labelCandidates) {
				m := label.FindStringSubmatch(el.OwnText())
				if m == nil {
					continue
				}
				if v := Trim(m[1]); v != "" {
					return v, true
				}
				if next, ok := el.NextSibling(""); ok {
					if v := next.Text(); v != "" {
						return v, true
					}
				}
				if parent, ok := el.Parent(); ok {
					if v := parent.OwnText(); v != "" {
						return v, true
					}
				}
			}
		}
		return "", false
	}
}
