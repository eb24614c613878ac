package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	relAttributeConstant      = "rel"
	hrefAttributeConstant     = "href"
	propertyAttributeConstant = "property"
	nameAttributeConstant     = "name"
	canonicalRelTokenConstant = "canonical"
	openGraphPrefixConstant   = "og:"
	twitterPrefixConstant     = "twitter:"
)

// DocumentMatcher inspects the parsed HTML tree instead of raw text.
//
// It honors quoting and rel token lists, so on malformed markup its findings can differ
// from RegexMatcher.
type DocumentMatcher struct{}

// NewDocumentMatcher constructs a DocumentMatcher.
func NewDocumentMatcher() DocumentMatcher {
	return DocumentMatcher{}
}

// Canonical returns the trimmed href of the first <link> whose rel list contains "canonical".
func (DocumentMatcher) Canonical(pageText string) (string, bool) {
	var canonicalHref string
	found := false
	walkElements(pageText, func(node *html.Node) bool {
		if node.DataAtom != atom.Link || !relContainsCanonical(attributeValue(node, relAttributeConstant)) {
			return true
		}
		href, hasHref := lookupAttribute(node, hrefAttributeConstant)
		if !hasHref || len(strings.TrimSpace(href)) == 0 {
			return true
		}
		canonicalHref = strings.TrimSpace(href)
		found = true
		return false
	})
	return canonicalHref, found
}

// HasOpenGraph reports whether a <meta> element carries a property starting with "og:".
func (DocumentMatcher) HasOpenGraph(pageText string) bool {
	return hasMetaWithPrefix(pageText, propertyAttributeConstant, openGraphPrefixConstant)
}

// HasTwitterCard reports whether a <meta> element carries a name starting with "twitter:".
func (DocumentMatcher) HasTwitterCard(pageText string) bool {
	return hasMetaWithPrefix(pageText, nameAttributeConstant, twitterPrefixConstant)
}

func hasMetaWithPrefix(pageText string, attributeName string, prefix string) bool {
	found := false
	walkElements(pageText, func(node *html.Node) bool {
		if node.DataAtom != atom.Meta {
			return true
		}
		if strings.HasPrefix(strings.ToLower(attributeValue(node, attributeName)), prefix) {
			found = true
			return false
		}
		return true
	})
	return found
}

// walkElements visits element nodes in document order until visit returns false.
// html.Parse recovers from malformed input, so a parse error only leaves the tree partial.
func walkElements(pageText string, visit func(*html.Node) bool) {
	document, parseError := html.Parse(strings.NewReader(pageText))
	if parseError != nil || document == nil {
		return
	}

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if node.Type == html.ElementNode && !visit(node) {
			return false
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if !walk(child) {
				return false
			}
		}
		return true
	}
	walk(document)
}

func relContainsCanonical(relValue string) bool {
	for _, token := range strings.Fields(strings.ToLower(relValue)) {
		if token == canonicalRelTokenConstant {
			return true
		}
	}
	return false
}

func attributeValue(node *html.Node, attributeName string) string {
	value, _ := lookupAttribute(node, attributeName)
	return value
}

func lookupAttribute(node *html.Node, attributeName string) (string, bool) {
	for _, attribute := range node.Attr {
		if len(attribute.Namespace) == 0 && attribute.Key == attributeName {
			return attribute.Val, true
		}
	}
	return "", false
}
