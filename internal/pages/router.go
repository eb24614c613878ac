package pages

import (
	"errors"
	"path/filepath"
	"strings"
)

const (
	// DefaultOrigin is the site origin used when none is configured.
	DefaultOrigin              = "https://www.adgenxai.com"
	indexPageNameConstant      = "index.html"
	htmlExtensionConstant      = ".html"
	rootRouteConstant          = "/"
	originRequiredMessage      = "site origin must be provided"
	originTrailingSlashLiteral = "/"
)

// ErrOriginRequired indicates an empty site origin was supplied.
var ErrOriginRequired = errors.New(originRequiredMessage)

// Router maps page files to the absolute URLs they are published at.
type Router struct {
	origin string
}

// NewRouter constructs a Router for origin; trailing slashes are trimmed.
func NewRouter(origin string) (Router, error) {
	trimmedOrigin := strings.TrimRight(strings.TrimSpace(origin), originTrailingSlashLiteral)
	if len(trimmedOrigin) == 0 {
		return Router{}, ErrOriginRequired
	}
	return Router{origin: trimmedOrigin}, nil
}

// Origin returns the normalized site origin.
func (router Router) Origin() string {
	return router.origin
}

// ExpectedURL derives the canonical URL from the file's base name only:
// "index.html" (any case) maps to "/", any other "name.html" maps to "/name".
// Both the canonical check and the sitemap check use it.
func (router Router) ExpectedURL(pagePath string) string {
	return router.origin + Route(filepath.Base(pagePath))
}

// Route returns the site-relative route for a page file name.
func Route(fileName string) string {
	if strings.EqualFold(fileName, indexPageNameConstant) || len(fileName) <= len(htmlExtensionConstant) {
		return rootRouteConstant
	}
	return rootRouteConstant + fileName[:len(fileName)-len(htmlExtensionConstant)]
}
