package siteguard

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/siteguard/internal/markup"
	"github.com/temirov/siteguard/internal/utils/flags"
	pathutils "github.com/temirov/siteguard/internal/utils/path"
)

const (
	commandUseConstant                 = "check"
	commandShortDescriptionConstant    = "Check changed pages for canonical tags, share metadata and sitemap coverage"
	commandLongDescriptionConstant     = "check inspects changed HTML pages for a canonical link and OG/Twitter metadata and verifies added pages are listed in the sitemap. Findings are printed as ::warning:: annotations; the command fails only in strict mode."
	unexpectedArgumentsMessageConstant = "check does not accept positional arguments"
	strictEnvironmentVariableConstant  = "STRICT"
	strictEnvironmentEnabledConstant   = "1"
	flagRootNameConstant               = "root"
	flagRootDescriptionConstant        = "Repository root that list entries and the sitemap path resolve against"
	flagOriginNameConstant             = "origin"
	flagOriginDescriptionConstant      = "Site origin prefixed to expected page URLs"
	flagSitemapNameConstant            = "sitemap"
	flagSitemapDescriptionConstant     = "Sitemap path relative to the root"
	flagChangedNameConstant            = "changed"
	flagChangedDescriptionConstant     = "File listing changed pages, one path per line"
	flagAddedNameConstant              = "added"
	flagAddedDescriptionConstant       = "File listing added pages, one path per line"
	flagSharePageNameConstant          = "share-page"
	flagSharePageDescriptionConstant   = "Page file name that should carry OG/Twitter metadata (repeatable)"
	flagFallbackNameConstant           = "fallback-glob"
	flagFallbackDescriptionConstant    = "Pattern selecting pages under the root when both lists are empty"
	flagMatcherNameConstant            = "matcher"
	flagMatcherDescriptionConstant     = "Markup matcher used to locate tags"
	flagStrictNameConstant             = "strict"
	flagStrictDescriptionConstant      = "Fail when error-class warnings are reported (STRICT=1 also enables it)"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current check configuration.
type ConfigurationProvider func() CommandConfiguration

// EnvironmentLookup resolves an environment variable.
type EnvironmentLookup func(name string) (string, bool)

// CommandBuilder assembles the check cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	EnvironmentLookup     EnvironmentLookup
	Reporter              Reporter
	HomeExpander          *pathutils.HomeExpander
}

// Build constructs the check command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().String(flagRootNameConstant, "", flagRootDescriptionConstant)
	command.Flags().String(flagOriginNameConstant, "", flagOriginDescriptionConstant)
	command.Flags().String(flagSitemapNameConstant, "", flagSitemapDescriptionConstant)
	command.Flags().String(flagChangedNameConstant, "", flagChangedDescriptionConstant)
	command.Flags().String(flagAddedNameConstant, "", flagAddedDescriptionConstant)
	command.Flags().StringArray(flagSharePageNameConstant, nil, flagSharePageDescriptionConstant)
	command.Flags().String(flagFallbackNameConstant, "", flagFallbackDescriptionConstant)
	flags.AddChoiceFlag(command.Flags(), nil, flagMatcherNameConstant, defaults.Matcher, markup.MatcherKinds(), flagMatcherDescriptionConstant)
	flags.AddToggleFlag(command.Flags(), nil, flagStrictNameConstant, "", false, flagStrictDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	reporter := builder.Reporter
	if reporter == nil {
		reporter = NewAnnotationReporter(command.OutOrStdout())
	}

	service := NewService(builder.resolveLogger(), reporter)
	_, runError := service.Run(command.Context(), options)
	return runError
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (Options, error) {
	configuration := builder.resolveConfiguration()

	if command.Flags().Changed(flagRootNameConstant) {
		configuration.Root, _ = command.Flags().GetString(flagRootNameConstant)
	}
	if command.Flags().Changed(flagOriginNameConstant) {
		configuration.Origin, _ = command.Flags().GetString(flagOriginNameConstant)
	}
	if command.Flags().Changed(flagSitemapNameConstant) {
		configuration.Sitemap, _ = command.Flags().GetString(flagSitemapNameConstant)
	}
	if command.Flags().Changed(flagChangedNameConstant) {
		configuration.ChangedList, _ = command.Flags().GetString(flagChangedNameConstant)
	}
	if command.Flags().Changed(flagAddedNameConstant) {
		configuration.AddedList, _ = command.Flags().GetString(flagAddedNameConstant)
	}
	if command.Flags().Changed(flagSharePageNameConstant) {
		configuration.SharePages, _ = command.Flags().GetStringArray(flagSharePageNameConstant)
	}
	if command.Flags().Changed(flagFallbackNameConstant) {
		configuration.FallbackGlob, _ = command.Flags().GetString(flagFallbackNameConstant)
	}
	if command.Flags().Changed(flagMatcherNameConstant) {
		configuration.Matcher, _ = command.Flags().GetString(flagMatcherNameConstant)
	}
	if command.Flags().Changed(flagStrictNameConstant) {
		configuration.Strict, _ = command.Flags().GetBool(flagStrictNameConstant)
	}

	configuration = configuration.sanitize()

	rootDirectory, rootError := builder.resolveHomeExpander().AbsoluteDirectory(configuration.Root)
	if rootError != nil {
		return Options{}, rootError
	}

	return Options{
		RootDirectory:   rootDirectory,
		Origin:          configuration.Origin,
		SitemapPath:     configuration.Sitemap,
		ChangedListPath: configuration.ChangedList,
		AddedListPath:   configuration.AddedList,
		SharePages:      configuration.SharePages,
		FallbackPattern: configuration.FallbackGlob,
		Matcher:         markup.MatcherKind(configuration.Matcher),
		Strict:          configuration.Strict || builder.strictFromEnvironment(),
	}, nil
}

func (builder *CommandBuilder) strictFromEnvironment() bool {
	lookup := builder.EnvironmentLookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, present := lookup(strictEnvironmentVariableConstant)
	return present && value == strictEnvironmentEnabledConstant
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander == nil {
		return pathutils.NewHomeExpander()
	}
	return builder.HomeExpander
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
