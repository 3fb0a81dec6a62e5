package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/jobcrawl/internal/document"
)

// Link is a detail page discovered on a listing page, together with the
// card it came from.
type Link struct {
	URL  string
	Card document.Node
}

var (
	// detailPath is the path segment of detail page URLs.
	detailPath = regexp.MustCompile(`/ofertas-de-trabajo/`)

	// looseDetail matches hrefs that probably lead to a posting.
	looseDetail = regexp.MustCompile(`(?i)oferta|trabajo`)

	cardClass = regexp.MustCompile(`(?i)job|offer|card|listing`)
)

var (
	articleCards   = document.Tag("article")
	classCards     = document.Criteria{Tags: []string{"div", "li", "section"}, ClassPattern: cardClass}
	detailAnchor   = document.Criteria{Tags: []string{"a"}, Attr: "href", AttrPattern: detailPath}
	anyAnchor      = document.Criteria{Tags: []string{"a"}, Attr: "href"}
	cardContainers = []string{"article", "div", "li"}
)

// Discoverer extracts detail page links from listing pages.
type Discoverer struct {
	origin *url.URL
}

// NewDiscoverer creates a Discoverer resolving relative links against the
// origin of baseURL.
func NewDiscoverer(baseURL string) (*Discoverer, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Discoverer{origin: &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}}, nil
}

// Discover returns the detail links of a listing page in document order,
// absolute, without fragments and without duplicates.
//
// Strategies are tried in order and the first one yielding links wins:
//  1. article cards
//  2. div/li/section containers whose class names a job, offer, card or listing
//  3. detail anchors anywhere, with their nearest container as the card
//
// A container holding other cards is skipped in favor of those cards.
func (d *Discoverer) Discover(doc *document.Document) []Link {
	if doc == nil {
		return nil
	}
	if links := d.fromCards(doc, articleCards); len(links) > 0 {
		return links
	}
	if links := d.fromCards(doc, classCards); len(links) > 0 {
		return links
	}
	return d.fromAnchors(doc.FindAll(detailAnchor))
}

func (d *Discoverer) fromCards(doc *document.Document, c document.Criteria) []Link {
	seen := make(map[string]bool)
	var out []Link
	for _, card := range doc.FindAll(c) {
		if d.wrapsCards(card, c) {
			continue
		}
		u := d.cardURL(card)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, Link{URL: u, Card: card})
	}
	return out
}

func (d *Discoverer) fromAnchors(anchors []document.Node) []Link {
	seen := make(map[string]bool)
	var out []Link
	for _, a := range anchors {
		href, _ := a.Attr("href")
		u := d.resolveURL(href)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		card, ok := a.Ancestor(cardContainers...)
		if !ok {
			card = a
		}
		out = append(out, Link{URL: u, Card: card})
	}
	return out
}

// wrapsCards reports whether card contains another card with a detail link
// of its own. Such a container is a list wrapper, not a card.
func (d *Discoverer) wrapsCards(card document.Node, c document.Criteria) bool {
	for _, inner := range card.FindAll(c) {
		if d.cardURL(inner) != "" {
			return true
		}
	}
	return false
}

// cardURL returns the detail URL of a card: the first detail anchor, else
// the first anchor whose href mentions an offer.
func (d *Discoverer) cardURL(card document.Node) string {
	if a, ok := card.Find(detailAnchor); ok {
		href, _ := a.Attr("href")
		if u := d.resolveURL(href); u != "" {
			return u
		}
	}
	for _, a := range card.FindAll(anyAnchor) {
		href, _ := a.Attr("href")
		if looseDetail.MatchString(href) {
			if u := d.resolveURL(href); u != "" {
				return u
			}
		}
	}
	return ""
}

// resolveURL resolves href against the site origin and normalizes it.
// Non-navigable references yield "".
func (d *Discoverer) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := d.origin.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return normalizeURL(resolved)
}

// normalizeURL removes the fragment and lowercases scheme and host so the
// same page has a single representation.
func normalizeURL(u *url.URL) string {
	n := *u
	n.Fragment, n.RawFragment = "", ""
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)
	if n.Path == "" {
		n.Path = "/"
	}
	return n.String()
}
