package sitemap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	locTagSuffixConstant           = "loc"
	sitemapOpenErrorTemplate       = "unable to open sitemap: %w"
	sitemapDecodeErrorTemplate     = "unable to decode sitemap: %w"
	missingRootElementMessage      = "sitemap has no root element"
	contentOutsideRootMessage      = "sitemap has content outside the root element"
	unboundPrefixMessage           = "sitemap uses unbound namespace prefix"
	unboundPrefixErrorTemplate     = "%w %q"
	namespaceDeclarationSpace      = "xmlns"
	xmlNamespaceURIConstant        = "http://www.w3.org/XML/1998/namespace"
	byteOrderMarkConstant          = "\ufeff"
	xmlWhitespaceCharacters        = " \t\r\n"
	loadStatusAbsentLabel          = "absent"
	loadStatusParseFailedLabel     = "parse_failed"
	loadStatusParsedLabel          = "parsed"
	loadStatusUnknownLabelConstant = "unknown"
)

// ErrMissingRootElement indicates the sitemap contained no XML element at all.
var ErrMissingRootElement = errors.New(missingRootElementMessage)

// ErrContentOutsideRoot indicates text or elements before or after the document element.
var ErrContentOutsideRoot = errors.New(contentOutsideRootMessage)

// ErrUnboundPrefix indicates an element or attribute prefix with no namespace declaration in scope.
var ErrUnboundPrefix = errors.New(unboundPrefixMessage)

// LoadStatus distinguishes the outcomes of reading a sitemap.
type LoadStatus int

// Sitemap load outcomes.
const (
	StatusAbsent LoadStatus = iota
	StatusParseFailed
	StatusParsed
)

// String returns a log-friendly label.
func (status LoadStatus) String() string {
	switch status {
	case StatusAbsent:
		return loadStatusAbsentLabel
	case StatusParseFailed:
		return loadStatusParseFailedLabel
	case StatusParsed:
		return loadStatusParsedLabel
	default:
		return loadStatusUnknownLabelConstant
	}
}

// URLSet is an unordered set of sitemap locations.
type URLSet map[string]struct{}

// Contains reports whether location is listed.
func (set URLSet) Contains(location string) bool {
	_, listed := set[location]
	return listed
}

// LoadResult is the outcome of Load. URLs is never nil; it is empty unless Status is StatusParsed.
type LoadResult struct {
	Path   string
	Status LoadStatus
	URLs   URLSet
	Err    error
}

// Load reads the sitemap at sitemapPath and collects the trimmed text of every element whose
// local name ends with "loc", regardless of namespace. A missing file yields StatusAbsent and
// malformed XML yields StatusParseFailed; neither is fatal.
func Load(sitemapPath string) LoadResult {
	result := LoadResult{Path: sitemapPath, Status: StatusAbsent, URLs: URLSet{}}

	sitemapFile, openError := os.Open(sitemapPath)
	if openError != nil {
		if errors.Is(openError, fs.ErrNotExist) {
			return result
		}
		result.Status = StatusParseFailed
		result.Err = fmt.Errorf(sitemapOpenErrorTemplate, openError)
		return result
	}
	defer sitemapFile.Close()

	locations, parseError := Parse(sitemapFile)
	if parseError != nil {
		result.Status = StatusParseFailed
		result.Err = parseError
		return result
	}

	result.Status = StatusParsed
	result.URLs = locations
	return result
}

// Parse decodes a whole sitemap document. On error no locations are returned,
// so a truncated or otherwise malformed document never contributes a partial set.
// Content outside the document element and undeclared namespace prefixes are rejected.
func Parse(reader io.Reader) (URLSet, error) {
	decoder := xml.NewDecoder(reader)
	decoder.CharsetReader = charset.NewReaderLabel

	locations := URLSet{}
	rootSeen := false
	rootClosed := false
	capturing := false
	var capturedText strings.Builder
	var scopes namespaceScopes

	finishCapture := func() {
		if !capturing {
			return
		}
		capturing = false
		if trimmed := strings.TrimSpace(capturedText.String()); len(trimmed) > 0 {
			locations[trimmed] = struct{}{}
		}
		capturedText.Reset()
	}

	for {
		token, tokenError := decoder.Token()
		if errors.Is(tokenError, io.EOF) {
			break
		}
		if tokenError != nil {
			return URLSet{}, fmt.Errorf(sitemapDecodeErrorTemplate, tokenError)
		}

		switch typedToken := token.(type) {
		case xml.StartElement:
			if rootClosed {
				return URLSet{}, fmt.Errorf(sitemapDecodeErrorTemplate, ErrContentOutsideRoot)
			}
			rootSeen = true
			scopes.push(typedToken.Attr)
			if unboundError := scopes.verify(typedToken); unboundError != nil {
				return URLSet{}, fmt.Errorf(sitemapDecodeErrorTemplate, unboundError)
			}
			// Only the text before an element's first child counts as its content.
			finishCapture()
			if strings.HasSuffix(typedToken.Name.Local, locTagSuffixConstant) {
				capturing = true
			}
		case xml.EndElement:
			finishCapture()
			scopes.pop()
			if scopes.depth() == 0 {
				rootClosed = true
			}
		case xml.CharData:
			if scopes.depth() == 0 && !isMarkupWhitespace(typedToken, !rootSeen) {
				return URLSet{}, fmt.Errorf(sitemapDecodeErrorTemplate, ErrContentOutsideRoot)
			}
			if capturing {
				capturedText.Write(typedToken)
			}
		}
	}

	if !rootSeen {
		return URLSet{}, fmt.Errorf(sitemapDecodeErrorTemplate, ErrMissingRootElement)
	}

	return locations, nil
}

// isMarkupWhitespace reports whether text holds only XML whitespace. A byte order mark is
// tolerated ahead of the document element.
func isMarkupWhitespace(text []byte, beforeRoot bool) bool {
	content := string(text)
	if beforeRoot {
		content = strings.TrimPrefix(content, byteOrderMarkConstant)
	}
	return len(strings.Trim(content, xmlWhitespaceCharacters)) == 0
}

// namespaceScopes tracks the namespace names declared by each open element.
type namespaceScopes []map[string]struct{}

func (scopes *namespaceScopes) push(attributes []xml.Attr) {
	declared := map[string]struct{}{}
	for _, attribute := range attributes {
		if attribute.Name.Space == namespaceDeclarationSpace || (len(attribute.Name.Space) == 0 && attribute.Name.Local == namespaceDeclarationSpace) {
			declared[attribute.Value] = struct{}{}
		}
	}
	*scopes = append(*scopes, declared)
}

func (scopes *namespaceScopes) pop() {
	if len(*scopes) > 0 {
		*scopes = (*scopes)[:len(*scopes)-1]
	}
}

func (scopes namespaceScopes) depth() int {
	return len(scopes)
}

// verify fails when the element or one of its attributes kept an untranslated prefix.
// The decoder replaces declared prefixes with their namespace name and leaves unknown ones as-is.
func (scopes namespaceScopes) verify(element xml.StartElement) error {
	if !scopes.bound(element.Name.Space) {
		return fmt.Errorf(unboundPrefixErrorTemplate, ErrUnboundPrefix, element.Name.Space)
	}
	for _, attribute := range element.Attr {
		if attribute.Name.Space == namespaceDeclarationSpace {
			continue
		}
		if !scopes.bound(attribute.Name.Space) {
			return fmt.Errorf(unboundPrefixErrorTemplate, ErrUnboundPrefix, attribute.Name.Space)
		}
	}
	return nil
}

func (scopes namespaceScopes) bound(space string) bool {
	if len(space) == 0 || space == xmlNamespaceURIConstant {
		return true
	}
	for _, declared := range scopes {
		if _, found := declared[space]; found {
			return true
		}
	}
	return false
}
