package pages

import (
	"path/filepath"
	"strings"
)

// Page is an HTML file selected for checking.
type Page struct {
	// AbsolutePath locates the file on disk.
	AbsolutePath string
	// RelativePath is the slash-separated path relative to the repository root, used in messages.
	RelativePath string
}

// Name returns the file's base name.
func (page Page) Name() string {
	return filepath.Base(page.AbsolutePath)
}

// Selection holds the pages to check, in list order.
type Selection struct {
	Changed []Page
	Added   []Page
	// FromFallback is true when Changed came from discovery because both lists were empty.
	FromFallback bool
}

// HasHTMLSuffix reports whether fileName ends in ".html" ignoring case.
// A dotfile such as ".html" has no suffix.
func HasHTMLSuffix(fileName string) bool {
	baseName := filepath.Base(fileName)
	extension := filepath.Ext(baseName)
	if extension == baseName {
		return false
	}
	return strings.EqualFold(extension, htmlExtensionConstant)
}
