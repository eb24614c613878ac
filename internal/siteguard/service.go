package siteguard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/siteguard/internal/markup"
	"github.com/temirov/siteguard/internal/pages"
	"github.com/temirov/siteguard/internal/sitemap"
)

const (
	missingCanonicalTemplateConstant   = "%s is missing <link rel=\"canonical\">"
	canonicalMismatchTemplateConstant  = "%s canonical href mismatch: '%s' != '%s'"
	socialMetadataTemplateConstant     = "%s: consider adding OG/Twitter meta for richer sharing cards"
	sitemapMissingTemplateConstant     = "%s missing <loc>%s</loc> for new page '%s'"
	strictViolationMessageConstant     = "strict mode: error-class warnings were reported"
	reportErrorTemplateConstant        = "unable to report finding: %w"
	configurationErrorTemplateConstant = "invalid check configuration: %w"
	pageReadFailedMessage              = "page unreadable, scanning as empty"
	sitemapLoadedMessage               = "sitemap loaded"
	runCompletedMessage                = "site guard completed"
	logFieldPagePathConstant           = "page"
	logFieldSitemapPathConstant        = "sitemap"
	logFieldSitemapStatusConstant      = "sitemap_status"
	logFieldLocationCountConstant      = "location_count"
	logFieldPagesCheckedConstant       = "pages_checked"
	logFieldPagesAddedConstant         = "pages_added"
	logFieldErrorCountConstant         = "error_count"
	logFieldNudgeCountConstant         = "nudge_count"
	logFieldFromFallbackConstant       = "from_fallback"
	logFieldStrictConstant             = "strict"
)

// ErrStrictViolation indicates strict mode was enabled and at least one error-class finding was reported.
var ErrStrictViolation = errors.New(strictViolationMessageConstant)

// Service runs the canonical, social metadata and sitemap coverage checks.
type Service struct {
	logger   *zap.Logger
	reporter Reporter
}

// NewService constructs a Service. A nil logger is replaced with a no-op logger.
func NewService(logger *zap.Logger, reporter Reporter) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, reporter: reporter}
}

// Run executes one pass over the selected pages, reporting each finding as soon as it is found.
// It returns ErrStrictViolation alongside the result when options.Strict is set and errors occurred.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	router, routerError := pages.NewRouter(options.Origin)
	if routerError != nil {
		return Result{}, fmt.Errorf(configurationErrorTemplateConstant, routerError)
	}

	matcher, matcherError := markup.NewMatcher(options.Matcher)
	if matcherError != nil {
		return Result{}, fmt.Errorf(configurationErrorTemplateConstant, matcherError)
	}

	resolver := pages.NewResolver(options.RootDirectory, options.FallbackPattern, service.logger)
	selection := resolver.Resolve(options.ChangedListPath, options.AddedListPath)

	sitemapPath := resolvePath(options.RootDirectory, options.SitemapPath)
	sitemapResult := sitemap.Load(sitemapPath)
	service.logger.Debug(
		sitemapLoadedMessage,
		zap.String(logFieldSitemapPathConstant, sitemapPath),
		zap.Stringer(logFieldSitemapStatusConstant, sitemapResult.Status),
		zap.Int(logFieldLocationCountConstant, len(sitemapResult.URLs)),
		zap.Error(sitemapResult.Err),
	)

	result := Result{FromFallback: selection.FromFallback, SitemapStatus: sitemapResult.Status}
	sharePages := make(map[string]struct{}, len(options.SharePages))
	for _, sharePage := range options.SharePages {
		sharePages[strings.ToLower(sharePage)] = struct{}{}
	}

	for _, page := range selection.Changed {
		if contextError := executionContext.Err(); contextError != nil {
			return result, contextError
		}

		findings := service.inspectPage(page, router, matcher, sharePages)
		result.PagesChecked++
		if reportError := service.report(&result, findings...); reportError != nil {
			return result, reportError
		}
	}

	sitemapDisplayPath := displayPath(options.RootDirectory, sitemapPath)
	for _, page := range selection.Added {
		if contextError := executionContext.Err(); contextError != nil {
			return result, contextError
		}

		result.PagesAdded++
		expectedURL := router.ExpectedURL(page.AbsolutePath)
		if sitemapResult.URLs.Contains(expectedURL) {
			continue
		}

		finding := Finding{
			Severity: SeverityError,
			Message:  fmt.Sprintf(sitemapMissingTemplateConstant, sitemapDisplayPath, expectedURL, page.Name()),
			PagePath: page.RelativePath,
		}
		if reportError := service.report(&result, finding); reportError != nil {
			return result, reportError
		}
	}

	service.logger.Info(
		runCompletedMessage,
		zap.Int(logFieldPagesCheckedConstant, result.PagesChecked),
		zap.Int(logFieldPagesAddedConstant, result.PagesAdded),
		zap.Int(logFieldErrorCountConstant, result.ErrorCount),
		zap.Int(logFieldNudgeCountConstant, result.NudgeCount),
		zap.Bool(logFieldFromFallbackConstant, result.FromFallback),
		zap.Bool(logFieldStrictConstant, options.Strict),
	)

	if options.Strict && result.HadErrors() {
		return result, ErrStrictViolation
	}
	return result, nil
}

func (service *Service) inspectPage(page pages.Page, router pages.Router, matcher markup.Matcher, sharePages map[string]struct{}) []Finding {
	pageText := service.readPage(page)
	var findings []Finding

	href, found := matcher.Canonical(pageText)
	expectedURL := router.ExpectedURL(page.AbsolutePath)
	switch {
	case !found:
		findings = append(findings, Finding{
			Severity: SeverityError,
			Message:  fmt.Sprintf(missingCanonicalTemplateConstant, page.RelativePath),
			PagePath: page.RelativePath,
		})
	case href != expectedURL:
		findings = append(findings, Finding{
			Severity: SeverityError,
			Message:  fmt.Sprintf(canonicalMismatchTemplateConstant, page.RelativePath, href, expectedURL),
			PagePath: page.RelativePath,
		})
	}

	if _, shareable := sharePages[strings.ToLower(page.Name())]; shareable {
		if !matcher.HasOpenGraph(pageText) || !matcher.HasTwitterCard(pageText) {
			findings = append(findings, Finding{
				Severity: SeverityNudge,
				Message:  fmt.Sprintf(socialMetadataTemplateConstant, page.RelativePath),
				PagePath: page.RelativePath,
			})
		}
	}

	return findings
}

func (service *Service) readPage(page pages.Page) string {
	contentBytes, readError := os.ReadFile(page.AbsolutePath)
	if readError != nil {
		service.logger.Warn(pageReadFailedMessage, zap.String(logFieldPagePathConstant, page.RelativePath), zap.Error(readError))
		return ""
	}
	return markup.Decode(contentBytes)
}

func (service *Service) report(result *Result, findings ...Finding) error {
	for _, finding := range findings {
		result.record(finding)
		if service.reporter == nil {
			continue
		}
		if reportError := service.reporter.Report(finding); reportError != nil {
			return fmt.Errorf(reportErrorTemplateConstant, reportError)
		}
	}
	return nil
}

func resolvePath(rootDirectory string, candidatePath string) string {
	if filepath.IsAbs(candidatePath) {
		return filepath.Clean(candidatePath)
	}
	return filepath.Join(rootDirectory, candidatePath)
}

// displayPath renders absolutePath relative to rootDirectory with forward slashes.
func displayPath(rootDirectory string, absolutePath string) string {
	relativePath, relativeError := filepath.Rel(rootDirectory, absolutePath)
	if relativeError != nil {
		return filepath.ToSlash(absolutePath)
	}
	return filepath.ToSlash(relativePath)
}
