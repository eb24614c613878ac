package markup

import (
	"errors"
	"fmt"
	"strings"
)

const (
	unsupportedMatcherTemplateConstant = "%w: %q"
)

// MatcherKind names a Matcher implementation selectable from configuration.
type MatcherKind string

// Supported matcher kinds.
const (
	MatcherKindRegex    MatcherKind = "regex"
	MatcherKindDocument MatcherKind = "document"
)

// ErrUnsupportedMatcher indicates an unknown matcher kind was requested.
var ErrUnsupportedMatcher = errors.New("unsupported matcher")

// Matcher locates the SEO tags inspected by the guard in a page's text.
type Matcher interface {
	// Canonical returns the href of the first canonical link tag.
	Canonical(pageText string) (string, bool)
	// HasOpenGraph reports whether any <meta property="og:..."> tag is present.
	HasOpenGraph(pageText string) bool
	// HasTwitterCard reports whether any <meta name="twitter:..."> tag is present.
	HasTwitterCard(pageText string) bool
}

// MatcherKinds lists the selectable kinds, default first.
func MatcherKinds() []string {
	return []string{string(MatcherKindRegex), string(MatcherKindDocument)}
}

// NewMatcher returns the Matcher for kind; an empty kind selects the regex matcher.
func NewMatcher(kind MatcherKind) (Matcher, error) {
	switch MatcherKind(strings.ToLower(strings.TrimSpace(string(kind)))) {
	case "", MatcherKindRegex:
		return NewRegexMatcher(), nil
	case MatcherKindDocument:
		return NewDocumentMatcher(), nil
	default:
		return nil, fmt.Errorf(unsupportedMatcherTemplateConstant, ErrUnsupportedMatcher, kind)
	}
}
