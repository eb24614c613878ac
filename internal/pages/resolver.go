package pages

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/temirov/siteguard/internal/markup"
)

const (
	// DefaultFallbackPattern selects the HTML files directly under the repository root.
	DefaultFallbackPattern       = "*.html"
	listReadFailedMessage        = "page list unreadable, treating as empty"
	fallbackInvalidMessage       = "fallback pattern invalid, using default"
	fallbackGlobFailedMessage    = "fallback discovery failed"
	pagesResolvedMessage         = "pages resolved"
	logFieldListPathConstant     = "list_path"
	logFieldPatternConstant      = "pattern"
	logFieldChangedCountConstant = "changed_count"
	logFieldAddedCountConstant   = "added_count"
	logFieldFallbackConstant     = "fallback"
)

// Resolver selects the pages to check from change lists under a repository root.
type Resolver struct {
	rootDirectory   string
	fallbackPattern string
	logger          *zap.Logger
}

// NewResolver constructs a Resolver. rootDirectory should be absolute; an empty or invalid
// fallbackPattern falls back to DefaultFallbackPattern.
func NewResolver(rootDirectory string, fallbackPattern string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	pattern := strings.TrimSpace(fallbackPattern)
	if len(pattern) == 0 {
		pattern = DefaultFallbackPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		logger.Warn(fallbackInvalidMessage, zap.String(logFieldPatternConstant, pattern))
		pattern = DefaultFallbackPattern
	}

	return &Resolver{rootDirectory: filepath.Clean(rootDirectory), fallbackPattern: pattern, logger: logger}
}

// Resolve reads the changed and added lists and qualifies their entries. When both
// resulting sequences are empty, Changed is filled by fallback discovery and Added stays empty.
func (resolver *Resolver) Resolve(changedListPath string, addedListPath string) Selection {
	selection := Selection{
		Changed: resolver.Qualify(resolver.ReadList(changedListPath)),
		Added:   resolver.Qualify(resolver.ReadList(addedListPath)),
	}

	if len(selection.Changed) == 0 && len(selection.Added) == 0 {
		selection.Changed = resolver.Discover()
		selection.FromFallback = true
	}

	resolver.logger.Debug(
		pagesResolvedMessage,
		zap.Int(logFieldChangedCountConstant, len(selection.Changed)),
		zap.Int(logFieldAddedCountConstant, len(selection.Added)),
		zap.Bool(logFieldFallbackConstant, selection.FromFallback),
	)

	return selection
}

// ReadList returns the trimmed, non-empty lines of a list file. A missing or unreadable file is an empty list.
func (resolver *Resolver) ReadList(listPath string) []string {
	if len(strings.TrimSpace(listPath)) == 0 {
		return nil
	}

	contentBytes, readError := os.ReadFile(resolver.absolute(listPath))
	if readError != nil {
		if !os.IsNotExist(readError) {
			resolver.logger.Warn(listReadFailedMessage, zap.String(logFieldListPathConstant, listPath), zap.Error(readError))
		}
		return nil
	}

	var entries []string
	for _, line := range strings.FieldsFunc(markup.Decode(contentBytes), isLineBoundary) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		entries = append(entries, trimmedLine)
	}
	return entries
}

// Qualify keeps entries that are regular files on disk and carry an ".html" suffix, preserving order and duplicates.
func (resolver *Resolver) Qualify(entries []string) []Page {
	var qualified []Page
	for _, entry := range entries {
		absolutePath := resolver.absolute(entry)
		if !HasHTMLSuffix(absolutePath) {
			continue
		}
		fileInfo, statError := os.Stat(absolutePath)
		if statError != nil || fileInfo.IsDir() {
			continue
		}
		qualified = append(qualified, Page{AbsolutePath: absolutePath, RelativePath: resolver.relative(absolutePath)})
	}
	return qualified
}

// Discover returns the HTML files matching the fallback pattern in lexical order. Dotfiles such as
// ".draft.html" match like any other name.
func (resolver *Resolver) Discover() []Page {
	matches, globError := doublestar.Glob(os.DirFS(resolver.rootDirectory), resolver.fallbackPattern)
	if globError != nil {
		resolver.logger.Warn(fallbackGlobFailedMessage, zap.String(logFieldPatternConstant, resolver.fallbackPattern), zap.Error(globError))
		return nil
	}
	sort.Strings(matches)

	entries := make([]string, 0, len(matches))
	for _, match := range matches {
		entries = append(entries, filepath.FromSlash(match))
	}
	return resolver.Qualify(entries)
}

func (resolver *Resolver) absolute(candidatePath string) string {
	if filepath.IsAbs(candidatePath) {
		return filepath.Clean(candidatePath)
	}
	return filepath.Join(resolver.rootDirectory, candidatePath)
}

func (resolver *Resolver) relative(absolutePath string) string {
	relativePath, relativeError := filepath.Rel(resolver.rootDirectory, absolutePath)
	if relativeError != nil {
		return filepath.ToSlash(absolutePath)
	}
	return filepath.ToSlash(relativePath)
}

// isLineBoundary matches the separators recognized by universal line splitting.
func isLineBoundary(character rune) bool {
	switch character {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	default:
		return false
	}
}
