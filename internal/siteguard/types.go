package siteguard

import (
	"github.com/temirov/siteguard/internal/markup"
	"github.com/temirov/siteguard/internal/sitemap"
)

// Severity classifies a finding.
type Severity string

// Supported finding severities.
const (
	// SeverityNudge marks advisory findings that never affect the exit status.
	SeverityNudge Severity = "nudge"
	// SeverityError marks findings that fail the run in strict mode.
	SeverityError Severity = "error"
)

// Finding is a single warning emitted for a page.
type Finding struct {
	Severity Severity
	Message  string
	PagePath string
}

// Options captures the parameters of a single guard run. RootDirectory is absolute and the
// other paths resolve against it; SharePages holds lowercase base names.
type Options struct {
	RootDirectory   string
	Origin          string
	SitemapPath     string
	ChangedListPath string
	AddedListPath   string
	SharePages      []string
	FallbackPattern string
	Matcher         markup.MatcherKind
	Strict          bool
}

// Result summarizes a completed run.
type Result struct {
	PagesChecked  int
	PagesAdded    int
	ErrorCount    int
	NudgeCount    int
	FromFallback  bool
	SitemapStatus sitemap.LoadStatus
}

// HadErrors reports whether any error-class finding was emitted.
func (result Result) HadErrors() bool {
	return result.ErrorCount > 0
}

func (result *Result) record(finding Finding) {
	switch finding.Severity {
	case SeverityError:
		result.ErrorCount++
	case SeverityNudge:
		result.NudgeCount++
	}
}
