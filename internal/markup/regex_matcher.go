package markup

import (
	"regexp"
	"strings"
)

const canonicalHrefGroupConstant = "href"

var (
	canonicalRelFirstPattern  = regexp.MustCompile(`(?is)<link[^>]+rel=["']canonical["'][^>]*href=["'](?P<href>[^"']+)["']`)
	canonicalHrefFirstPattern = regexp.MustCompile(`(?is)<link[^>]+href=["'](?P<href>[^"']+)["'][^>]*rel=["']canonical["']`)
	openGraphPattern          = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:`)
	twitterCardPattern        = regexp.MustCompile(`(?i)<meta[^>]+name=["']twitter:`)
)

// RegexMatcher finds tags with regular expressions over the raw page text.
// It does not understand quoting, so an attribute value containing ">" ends the tag early.
type RegexMatcher struct{}

// NewRegexMatcher constructs a RegexMatcher.
func NewRegexMatcher() RegexMatcher {
	return RegexMatcher{}
}

// Canonical returns the trimmed href of the earliest canonical link tag, with rel and href in either order.
func (RegexMatcher) Canonical(pageText string) (string, bool) {
	relFirstHref, relFirstStart, relFirstFound := findCanonical(canonicalRelFirstPattern, pageText)
	hrefFirstHref, hrefFirstStart, hrefFirstFound := findCanonical(canonicalHrefFirstPattern, pageText)

	switch {
	case relFirstFound && (!hrefFirstFound || relFirstStart <= hrefFirstStart):
		return strings.TrimSpace(relFirstHref), true
	case hrefFirstFound:
		return strings.TrimSpace(hrefFirstHref), true
	default:
		return "", false
	}
}

// HasOpenGraph reports whether an Open Graph meta tag is present.
func (RegexMatcher) HasOpenGraph(pageText string) bool {
	return openGraphPattern.MatchString(pageText)
}

// HasTwitterCard reports whether a Twitter card meta tag is present.
func (RegexMatcher) HasTwitterCard(pageText string) bool {
	return twitterCardPattern.MatchString(pageText)
}

func findCanonical(pattern *regexp.Regexp, pageText string) (string, int, bool) {
	submatchIndexes := pattern.FindStringSubmatchIndex(pageText)
	if submatchIndexes == nil {
		return "", 0, false
	}
	hrefGroup := pattern.SubexpIndex(canonicalHrefGroupConstant)
	return pageText[submatchIndexes[2*hrefGroup]:submatchIndexes[2*hrefGroup+1]], submatchIndexes[0], true
}
