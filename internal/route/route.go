// Package route describes where the user is sent after a search action.
package route

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Kind identifies a destination.
type Kind int

const (
	// Results is the repository results view for a search term.
	Results Kind = iota + 1
	// WebPage is an external page, usually a repository's HTML URL.
	WebPage
)

func (k Kind) String() string {
	switch k {
	case Results:
		return "results"
	case WebPage:
		return "web"
	default:
		return "unknown"
	}
}

var (
	// ErrBlankTerm is returned when a results route is built from blank input.
	ErrBlankTerm = errors.New("search term is blank")
	// ErrInvalidURL is returned when a web route has no absolute http(s) URL.
	ErrInvalidURL = errors.New("not an absolute http(s) URL")
)

// Route is a navigation target. The zero value goes nowhere.
type Route struct {
	Kind  Kind   `json:"kind"`
	Term  string `json:"term,omitempty"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

// ToResults returns a route to the results view for term.
func ToResults(term string) (Route, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Route{}, ErrBlankTerm
	}
	return Route{Kind: Results, Term: term}, nil
}

// ToWebPage returns a route to an external page.
func ToWebPage(rawURL, title string) (Route, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Route{}, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return Route{Kind: WebPage, URL: u.String(), Title: strings.TrimSpace(title)}, nil
}

// IsZero reports whether r is the zero route.
func (r Route) IsZero() bool {
	return r.Kind == 0
}

func (r Route) String() string {
	switch r.Kind {
	case Results:
		return fmt.Sprintf("results for %q", r.Term)
	case WebPage:
		if r.Title == "" {
			return r.URL
		}
		return fmt.Sprintf("%s <%s>", r.Title, r.URL)
	default:
		return "nowhere"
	}
}
