package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNilReader is returned when Parse is called without input.
var ErrNilReader = errors.New("document: nil reader")

// Document is one parsed HTML page.
type Document struct {
	Node
}

// Parse reads HTML from r and builds a Document.
//
// The HTML5 parsing algorithm recovers from malformed markup, so an error
// here means the reader itself failed.
func Parse(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, ErrNilReader
	}
	gq, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	root := gq.Nodes[0]
	return &Document{Node: Node{node: root}}, nil
}

// ParseBytes is Parse over an in-memory body.
func ParseBytes(body []byte) (*Document, error) {
	return Parse(bytes.NewReader(body))
}

// ParseString is Parse over a string, convenient for tests and fixtures.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Node is a single element (or the document root). The zero Node is
// "absent": every lookup on it returns nothing.
type Node struct {
	node *html.Node
}

// IsZero reports whether the node is absent.
func (n Node) IsZero() bool {
	return n.node == nil
}

// Tag returns the element name, or "" for the document root.
func (n Node) Tag() string {
	if n.node == nil || n.node.Type != html.ElementNode {
		return ""
	}
	return n.node.Data
}

func (n Node) selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(n.node).Selection
}

// FindAll returns every descendant matching c in document order.
func (n Node) FindAll(c Criteria) []Node {
	if n.node == nil {
		return nil
	}
	var out []Node
	n.selection().Find(c.selector()).Each(func(_ int, s *goquery.Selection) {
		if c.match(s.Nodes[0]) {
			out = append(out, Node{node: s.Nodes[0]})
		}
	})
	return out
}

// Find returns the first descendant matching c.
func (n Node) Find(c Criteria) (Node, bool) {
	if n.node == nil {
		return Node{}, false
	}
	s := n.selection().Find(c.selector()).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return c.match(s.Nodes[0])
	}).First()
	if s.Length() == 0 {
		return Node{}, false
	}
	return Node{node: s.Nodes[0]}, true
}

// Matches reports whether n itself satisfies c.
func (n Node) Matches(c Criteria) bool {
	return c.match(n.node)
}

// Text returns the node's text with whitespace collapsed and trimmed.
// Block-level boundaries are separated by a space so adjacent paragraphs do
// not run together.
func (n Node) Text() string {
	if n.node == nil {
		return ""
	}
	var b strings.Builder
	collectText(n.node, &b)
	return collapse(b.String())
}

// OwnText returns only the node's direct text children, collapsed.
func (n Node) OwnText() string {
	if n.node == nil {
		return ""
	}
	return ownText(n.node)
}

// Attr returns the attribute value and whether it is present.
func (n Node) Attr(name string) (string, bool) {
	if n.node == nil {
		return "", false
	}
	return n.selection().Attr(name)
}

// HTML returns the outer HTML of the node.
func (n Node) HTML() string {
	if n.node == nil {
		return ""
	}
	s, err := goquery.OuterHtml(n.selection())
	if err != nil {
		return ""
	}
	return s
}

// Parent returns the parent element.
func (n Node) Parent() (Node, bool) {
	if n.node == nil || n.node.Parent == nil || n.node.Parent.Type != html.ElementNode {
		return Node{}, false
	}
	return Node{node: n.node.Parent}, true
}

// Ancestor returns the nearest enclosing element with one of the given
// tags. With no tags, the direct parent element is returned.
func (n Node) Ancestor(tags ...string) (Node, bool) {
	if n.node == nil {
		return Node{}, false
	}
	c := Criteria{Tags: tags}
	for p := n.node.Parent; p != nil; p = p.Parent {
		if c.match(p) {
			return Node{node: p}, true
		}
	}
	return Node{}, false
}

// NextSibling returns the nearest following sibling element with the tag.
// An empty tag matches any element.
func (n Node) NextSibling(tag string) (Node, bool) {
	if n.node == nil {
		return Node{}, false
	}
	for s := n.node.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && (tag == "" || s.Data == tag) {
			return Node{node: s}, true
		}
	}
	return Node{}, false
}

// Following returns the first element after n in document order that
// matches c. Descendants of n count as following it.
func (n Node) Following(c Criteria) (Node, bool) {
	if n.node == nil {
		return Node{}, false
	}
	for cur := nextInOrder(n.node); cur != nil; cur = nextInOrder(cur) {
		if c.match(cur) {
			return Node{node: cur}, true
		}
	}
	return Node{}, false
}

// Preceding returns the nearest element before n in document order that
// matches c. Ancestors of n count as preceding it.
func (n Node) Preceding(c Criteria) (Node, bool) {
	if n.node == nil {
		return Node{}, false
	}
	for cur := prevInOrder(n.node); cur != nil; cur = prevInOrder(cur) {
		if c.match(cur) {
			return Node{node: cur}, true
		}
	}
	return Node{}, false
}

// TextMatch is a text node found by FindText.
type TextMatch struct {
	// Text is the trimmed content of the text node.
	Text string

	// Parent is the element that directly contains the text.
	Parent Node
}

// FindText returns the first text node under n whose content matches re.
// Script and style contents are not searched.
func (n Node) FindText(re *regexp.Regexp) (TextMatch, bool) {
	all := n.findTexts(re, 1)
	if len(all) == 0 {
		return TextMatch{}, false
	}
	return all[0], true
}

// FindAllText returns every text node under n whose content matches re.
func (n Node) FindAllText(re *regexp.Regexp) []TextMatch {
	return n.findTexts(re, -1)
}

func (n Node) findTexts(re *regexp.Regexp, limit int) []TextMatch {
	if n.node == nil {
		return nil
	}
	var out []TextMatch
	var walk func(*html.Node) bool
	walk = func(cur *html.Node) bool {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if re.MatchString(c.Data) {
					out = append(out, TextMatch{Text: collapse(c.Data), Parent: Node{node: cur}})
					if limit > 0 && len(out) >= limit {
						return false
					}
				}
			case html.ElementNode:
				if skipText(c) {
					continue
				}
				if !walk(c) {
					return false
				}
			}
		}
		return true
	}
	walk(n.node)
	return out
}

// Clone returns a detached deep copy of n. Mutations on the copy never
// affect the original document.
func (n Node) Clone() Node {
	if n.node == nil {
		return Node{}
	}
	return Node{node: n.selection().Clone().Nodes[0]}
}

// Remove detaches n from its parent. Only call it on nodes that belong to
// a copy obtained from Clone.
func (n Node) Remove() {
	if n.node == nil || n.node.Parent == nil {
		return
	}
	n.selection().Remove()
}

// nextInOrder returns the node after cur in a preorder walk.
func nextInOrder(cur *html.Node) *html.Node {
	if cur.FirstChild != nil {
		return cur.FirstChild
	}
	for cur != nil {
		if cur.NextSibling != nil {
			return cur.NextSibling
		}
		cur = cur.Parent
	}
	return nil
}

// prevInOrder returns the node before cur in a preorder walk.
func prevInOrder(cur *html.Node) *html.Node {
	if cur.PrevSibling == nil {
		return cur.Parent
	}
	p := cur.PrevSibling
	for p.LastChild != nil {
		p = p.LastChild
	}
	return p
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true,
	"section": true, "table": true, "td": true, "th": true, "tr": true,
	"ul": true,
}

func skipText(n *html.Node) bool {
	switch n.Data {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipText(n) {
			return
		}
	case html.DocumentNode:
	default:
		return
	}
	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
	if block {
		b.WriteByte(' ')
	}
}

func ownText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return collapse(b.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
