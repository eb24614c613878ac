package siteguard_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/siteguard/internal/markup"
	"github.com/temirov/siteguard/internal/pages"
	"github.com/temirov/siteguard/internal/siteguard"
	"github.com/temirov/siteguard/internal/sitemap"
)

const (
	testServiceSubtestTemplate    = "%d_%s"
	testChangedListConstant       = "changed.txt"
	testAddedListConstant         = "added.txt"
	testSitemapPathConstant       = "public/sitemap.xml"
	testCanonicalPageTemplate     = `<html><head><link rel="canonical" href="%s"></head><body></body></html>`
	testSocialHeadConstant        = `<meta property="og:title" content="t"><meta name="twitter:card" content="summary">`
	testNoCanonicalPageConstant   = `<html><head><title>none</title></head></html>`
	testSitemapTemplate           = `<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">%s</urlset>`
	testSitemapEntryTemplate      = `<url><loc>%s</loc></url>`
	testPricingCanonicalConstant  = "https://www.adgenxai.com/pricing"
	testIndexCanonicalConstant    = "https://www.adgenxai.com/"
	testNewPageCanonicalConstant  = "https://www.adgenxai.com/new-page"
	testFailingWriterMessage      = "write refused"
	testMissingCanonicalTemplate  = "::warning::%s is missing <link rel=\"canonical\">\n"
	testSocialNudgeTemplate       = "::warning::%s: consider adding OG/Twitter meta for richer sharing cards\n"
	testSitemapMissingTemplate    = "::warning::public/sitemap.xml missing <loc>%s</loc> for new page '%s'\n"
	testCanonicalMismatchTemplate = "::warning::%s canonical href mismatch: '%s' != '%s'\n"
)

type recordingReporter struct {
	findings []siteguard.Finding
}

func (reporter *recordingReporter) Report(finding siteguard.Finding) error {
	reporter.findings = append(reporter.findings, finding)
	return nil
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New(testFailingWriterMessage)
}

func canonicalPage(href string, extraHead string) string {
	return strings.Replace(fmt.Sprintf(testCanonicalPageTemplate, href), "</head>", extraHead+"</head>", 1)
}

func sitemapDocument(locations ...string) string {
	var entries strings.Builder
	for _, location := range locations {
		entries.WriteString(fmt.Sprintf(testSitemapEntryTemplate, location))
	}
	return fmt.Sprintf(testSitemapTemplate, entries.String())
}

func writeSiteFiles(testInstance *testing.T, rootDirectory string, files map[string]string) {
	testInstance.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), 0o600))
	}
}

func defaultOptions(rootDirectory string, strict bool) siteguard.Options {
	return siteguard.Options{
		RootDirectory:   rootDirectory,
		Origin:          pages.DefaultOrigin,
		SitemapPath:     testSitemapPathConstant,
		ChangedListPath: testChangedListConstant,
		AddedListPath:   testAddedListConstant,
		SharePages:      []string{"index.html", "compare.html", "pricing.html"},
		FallbackPattern: pages.DefaultFallbackPattern,
		Matcher:         markup.MatcherKindRegex,
		Strict:          strict,
	}
}

func TestServiceRun(testInstance *testing.T) {
	testCases := []struct {
		name           string
		files          map[string]string
		strict         bool
		expectedOutput string
		expectedErrors int
		expectedNudges int
		expectStrict   bool
	}{
		{
			name: "missing_canonical",
			files: map[string]string{
				"about.html":            testNoCanonicalPageConstant,
				testChangedListConstant: "about.html\n",
			},
			expectedOutput: fmt.Sprintf(testMissingCanonicalTemplate, "about.html"),
			expectedErrors: 1,
		},
		{
			name: "matching_canonical_on_share_page",
			files: map[string]string{
				"pricing.html":          canonicalPage(testPricingCanonicalConstant, testSocialHeadConstant),
				testChangedListConstant: "pricing.html\n",
			},
			strict: true,
		},
		{
			name: "mismatching_canonical",
			files: map[string]string{
				"about.html":            canonicalPage("  https://example.test/about  ", ""),
				testChangedListConstant: "about.html\n",
			},
			expectedOutput: fmt.Sprintf(testCanonicalMismatchTemplate, "about.html", "https://example.test/about", "https://www.adgenxai.com/about"),
			expectedErrors: 1,
		},
		{
			name: "index_without_social_metadata_is_nudge_only",
			files: map[string]string{
				"index.html":            canonicalPage(testIndexCanonicalConstant, `<meta property="og:title" content="t">`),
				testChangedListConstant: "index.html\n",
			},
			strict:         true,
			expectedOutput: fmt.Sprintf(testSocialNudgeTemplate, "index.html"),
			expectedNudges: 1,
		},
		{
			name: "missing_canonical_and_social_metadata",
			files: map[string]string{
				"docs/compare.html":     testNoCanonicalPageConstant,
				testChangedListConstant: "docs/compare.html\n",
			},
			expectedOutput: fmt.Sprintf(testMissingCanonicalTemplate, "docs/compare.html") +
				fmt.Sprintf(testSocialNudgeTemplate, "docs/compare.html"),
			expectedErrors: 1,
			expectedNudges: 1,
		},
		{
			name: "added_page_missing_from_sitemap_soft",
			files: map[string]string{
				"new-page.html":         canonicalPage(testNewPageCanonicalConstant, ""),
				testAddedListConstant:   "new-page.html\n",
				testSitemapPathConstant: sitemapDocument(testIndexCanonicalConstant),
			},
			expectedOutput: fmt.Sprintf(testSitemapMissingTemplate, testNewPageCanonicalConstant, "new-page.html"),
			expectedErrors: 1,
		},
		{
			name: "added_page_missing_from_sitemap_strict",
			files: map[string]string{
				"new-page.html":         canonicalPage(testNewPageCanonicalConstant, ""),
				testAddedListConstant:   "new-page.html\n",
				testSitemapPathConstant: sitemapDocument(testIndexCanonicalConstant),
			},
			strict:         true,
			expectedOutput: fmt.Sprintf(testSitemapMissingTemplate, testNewPageCanonicalConstant, "new-page.html"),
			expectedErrors: 1,
			expectStrict:   true,
		},
		{
			name: "added_page_listed_in_sitemap",
			files: map[string]string{
				"new-page.html":         canonicalPage(testNewPageCanonicalConstant, ""),
				testAddedListConstant:   "new-page.html\n",
				testSitemapPathConstant: sitemapDocument(testNewPageCanonicalConstant),
			},
			strict: true,
		},
		{
			name: "absent_sitemap_reports_every_added_page",
			files: map[string]string{
				"a.html":              canonicalPage("https://www.adgenxai.com/a", ""),
				"b.html":              canonicalPage("https://www.adgenxai.com/b", ""),
				testAddedListConstant: "a.html\nb.html\n",
			},
			expectedOutput: fmt.Sprintf(testSitemapMissingTemplate, "https://www.adgenxai.com/a", "a.html") +
				fmt.Sprintf(testSitemapMissingTemplate, "https://www.adgenxai.com/b", "b.html"),
			expectedErrors: 2,
		},
		{
			name: "changed_findings_precede_added_findings",
			files: map[string]string{
				"about.html":            testNoCanonicalPageConstant,
				"new-page.html":         canonicalPage(testNewPageCanonicalConstant, ""),
				testChangedListConstant: "about.html\n",
				testAddedListConstant:   "new-page.html\n",
				testSitemapPathConstant: `<urlset><url><loc>`,
			},
			expectedOutput: fmt.Sprintf(testMissingCanonicalTemplate, "about.html") +
				fmt.Sprintf(testSitemapMissingTemplate, testNewPageCanonicalConstant, "new-page.html"),
			expectedErrors: 2,
		},
		{
			name: "fallback_checks_root_pages",
			files: map[string]string{
				"index.html":   canonicalPage(testIndexCanonicalConstant, testSocialHeadConstant),
				"pricing.html": testNoCanonicalPageConstant,
			},
			expectedOutput: fmt.Sprintf(testMissingCanonicalTemplate, "pricing.html") +
				fmt.Sprintf(testSocialNudgeTemplate, "pricing.html"),
			expectedErrors: 1,
			expectedNudges: 1,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testServiceSubtestTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			rootDirectory := testInstance.TempDir()
			writeSiteFiles(testInstance, rootDirectory, testCase.files)

			outputBuffer := &bytes.Buffer{}
			service := siteguard.NewService(nil, siteguard.NewAnnotationReporter(outputBuffer))
			result, runError := service.Run(context.Background(), defaultOptions(rootDirectory, testCase.strict))

			if testCase.expectStrict {
				require.ErrorIs(testInstance, runError, siteguard.ErrStrictViolation)
			} else {
				require.NoError(testInstance, runError)
			}
			require.Equal(testInstance, testCase.expectedOutput, outputBuffer.String())
			require.Equal(testInstance, testCase.expectedErrors, result.ErrorCount)
			require.Equal(testInstance, testCase.expectedNudges, result.NudgeCount)
			require.Equal(testInstance, testCase.expectedErrors > 0, result.HadErrors())
		})
	}
}

func TestServiceRunIsIdempotent(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	writeSiteFiles(testInstance, rootDirectory, map[string]string{
		"index.html":            testNoCanonicalPageConstant,
		"new-page.html":         testNoCanonicalPageConstant,
		testChangedListConstant: "index.html\nnew-page.html\n",
		testAddedListConstant:   "new-page.html\n",
	})

	var outputs []string
	var runErrors []error
	for iteration := 0; iteration < 2; iteration++ {
		outputBuffer := &bytes.Buffer{}
		service := siteguard.NewService(nil, siteguard.NewAnnotationReporter(outputBuffer))
		_, runError := service.Run(context.Background(), defaultOptions(rootDirectory, true))
		outputs = append(outputs, outputBuffer.String())
		runErrors = append(runErrors, runError)
	}

	require.Equal(testInstance, outputs[0], outputs[1])
	require.ErrorIs(testInstance, runErrors[0], siteguard.ErrStrictViolation)
	require.ErrorIs(testInstance, runErrors[1], siteguard.ErrStrictViolation)
}

func TestServiceRunRecordsFindings(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	writeSiteFiles(testInstance, rootDirectory, map[string]string{
		"index.html":            testNoCanonicalPageConstant,
		testChangedListConstant: "index.html\n",
		testSitemapPathConstant: sitemapDocument(testIndexCanonicalConstant),
	})

	reporter := &recordingReporter{}
	result, runError := siteguard.NewService(nil, reporter).Run(context.Background(), defaultOptions(rootDirectory, false))
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, result.PagesChecked)
	require.Equal(testInstance, 0, result.PagesAdded)
	require.False(testInstance, result.FromFallback)
	require.Equal(testInstance, sitemap.StatusParsed, result.SitemapStatus)

	require.Len(testInstance, reporter.findings, 2)
	require.Equal(testInstance, siteguard.SeverityError, reporter.findings[0].Severity)
	require.Equal(testInstance, siteguard.SeverityNudge, reporter.findings[1].Severity)
	require.Equal(testInstance, "index.html", reporter.findings[1].PagePath)
}

func TestServiceRunCustomOptions(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	writeSiteFiles(testInstance, rootDirectory, map[string]string{
		"landing.html":  canonicalPage("https://example.test/landing", ""),
		"lists/new.txt": "landing.html\n",
		"site/urls.xml": sitemapDocument("https://example.test/other"),
	})

	options := defaultOptions(rootDirectory, false)
	options.Origin = "https://example.test/"
	options.SitemapPath = "site/urls.xml"
	options.ChangedListPath = "lists/new.txt"
	options.AddedListPath = "lists/new.txt"
	options.SharePages = []string{"landing.html"}
	options.Matcher = markup.MatcherKindDocument

	outputBuffer := &bytes.Buffer{}
	_, runError := siteguard.NewService(nil, siteguard.NewAnnotationReporter(outputBuffer)).Run(context.Background(), options)
	require.NoError(testInstance, runError)
	require.Equal(testInstance,
		fmt.Sprintf(testSocialNudgeTemplate, "landing.html")+
			"::warning::site/urls.xml missing <loc>https://example.test/landing</loc> for new page 'landing.html'\n",
		outputBuffer.String(),
	)
}

func TestServiceRunConfigurationErrors(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()

	emptyOrigin := defaultOptions(rootDirectory, false)
	emptyOrigin.Origin = " "
	_, originError := siteguard.NewService(nil, nil).Run(context.Background(), emptyOrigin)
	require.ErrorIs(testInstance, originError, pages.ErrOriginRequired)

	unknownMatcher := defaultOptions(rootDirectory, false)
	unknownMatcher.Matcher = markup.MatcherKind("xpath")
	_, matcherError := siteguard.NewService(nil, nil).Run(context.Background(), unknownMatcher)
	require.ErrorIs(testInstance, matcherError, markup.ErrUnsupportedMatcher)
}

func TestServiceRunPropagatesReporterFailure(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	writeSiteFiles(testInstance, rootDirectory, map[string]string{"about.html": testNoCanonicalPageConstant})

	_, runError := siteguard.NewService(nil, siteguard.NewAnnotationReporter(failingWriter{})).Run(context.Background(), defaultOptions(rootDirectory, false))
	require.ErrorContains(testInstance, runError, testFailingWriterMessage)
}

func TestServiceRunHonorsCancellation(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	writeSiteFiles(testInstance, rootDirectory, map[string]string{"about.html": testNoCanonicalPageConstant})

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	outputBuffer := &bytes.Buffer{}
	_, runError := siteguard.NewService(nil, siteguard.NewAnnotationReporter(outputBuffer)).Run(cancelledContext, defaultOptions(rootDirectory, false))
	require.ErrorIs(testInstance, runError, context.Canceled)
	require.Empty(testInstance, outputBuffer.String())
}
