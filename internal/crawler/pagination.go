package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPageParam is the query parameter carrying the page number.
const DefaultPageParam = "p"

var (
	// ErrInvalidBaseURL is returned when the listing URL is not an absolute
	// http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http or https URL")

	// ErrInvalidPage is returned for page numbers below 1.
	ErrInvalidPage = errors.New("invalid page number: must be at least 1")
)

// parseBaseURL validates a listing URL.
func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidBaseURL
	}
	return u, nil
}

// PageURL returns the address of listing page number page.
//
// Page 1 is the base URL itself. Later pages append param=page, joined with
// "&" when the base already has a query and "?" otherwise. Any fragment is
// dropped.
func PageURL(base string, page int, param string) (string, error) {
	if page < 1 {
		return "", ErrInvalidPage
	}
	u, err := parseBaseURL(base)
	if err != nil {
		return "", err
	}
	u.Fragment, u.RawFragment = "", ""
	if u.RawQuery == "" {
		u.ForceQuery = false
	}
	if page == 1 {
		return u.String(), nil
	}
	if param == "" {
		param = DefaultPageParam
	}
	sep := "?"
	if u.RawQuery != "" {
		sep = "&"
	}
	return u.String() + sep + url.QueryEscape(param) + "=" + strconv.Itoa(page), nil
}
