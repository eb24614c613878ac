package siteguard

import (
	"strings"

	"github.com/temirov/siteguard/internal/markup"
	"github.com/temirov/siteguard/internal/pages"
)

const (
	defaultRootDirectoryConstant       = "."
	defaultSitemapPathConstant         = "public/sitemap.xml"
	defaultChangedListPathConstant     = "changed.txt"
	defaultAddedListPathConstant       = "added.txt"
	configurationRootKeyConstant       = "root"
	configurationOriginKeyConstant     = "origin"
	configurationSitemapKeyConstant    = "sitemap"
	configurationChangedKeyConstant    = "changed"
	configurationAddedKeyConstant      = "added"
	configurationSharePagesKeyConstant = "share_pages"
	configurationFallbackKeyConstant   = "fallback_glob"
	configurationMatcherKeyConstant    = "matcher"
	configurationStrictKeyConstant     = "strict"
	configurationKeySeparatorConstant  = "."
)

var defaultSharePages = []string{"index.html", "compare.html", "pricing.html"}

// CommandConfiguration captures persistent settings for the check command.
type CommandConfiguration struct {
	Root         string   `mapstructure:"root"`
	Origin       string   `mapstructure:"origin"`
	Sitemap      string   `mapstructure:"sitemap"`
	ChangedList  string   `mapstructure:"changed"`
	AddedList    string   `mapstructure:"added"`
	SharePages   []string `mapstructure:"share_pages"`
	FallbackGlob string   `mapstructure:"fallback_glob"`
	Matcher      string   `mapstructure:"matcher"`
	Strict       bool     `mapstructure:"strict"`
}

// DefaultCommandConfiguration returns baseline configuration values for the check command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Root:         defaultRootDirectoryConstant,
		Origin:       pages.DefaultOrigin,
		Sitemap:      defaultSitemapPathConstant,
		ChangedList:  defaultChangedListPathConstant,
		AddedList:    defaultAddedListPathConstant,
		SharePages:   append([]string{}, defaultSharePages...),
		FallbackGlob: pages.DefaultFallbackPattern,
		Matcher:      string(markup.MatcherKindRegex),
		Strict:       false,
	}
}

// DefaultConfigurationValues produces Viper defaults for the check command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationRootKeyConstant:       defaults.Root,
		prefix + configurationOriginKeyConstant:     defaults.Origin,
		prefix + configurationSitemapKeyConstant:    defaults.Sitemap,
		prefix + configurationChangedKeyConstant:    defaults.ChangedList,
		prefix + configurationAddedKeyConstant:      defaults.AddedList,
		prefix + configurationSharePagesKeyConstant: defaults.SharePages,
		prefix + configurationFallbackKeyConstant:   defaults.FallbackGlob,
		prefix + configurationMatcherKeyConstant:    defaults.Matcher,
		prefix + configurationStrictKeyConstant:     defaults.Strict,
	}
}

// sanitize trims whitespace and restores defaults for empty values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Root = valueOrDefault(configuration.Root, defaults.Root)
	sanitized.Origin = valueOrDefault(configuration.Origin, defaults.Origin)
	sanitized.Sitemap = valueOrDefault(configuration.Sitemap, defaults.Sitemap)
	sanitized.ChangedList = valueOrDefault(configuration.ChangedList, defaults.ChangedList)
	sanitized.AddedList = valueOrDefault(configuration.AddedList, defaults.AddedList)
	sanitized.FallbackGlob = valueOrDefault(configuration.FallbackGlob, defaults.FallbackGlob)
	sanitized.Matcher = strings.ToLower(valueOrDefault(configuration.Matcher, defaults.Matcher))

	if configuration.SharePages == nil {
		sanitized.SharePages = defaults.SharePages
	} else {
		sanitized.SharePages = sanitizeSharePages(configuration.SharePages)
	}

	return sanitized
}

func valueOrDefault(value string, defaultValue string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return defaultValue
	}
	return trimmed
}

func sanitizeSharePages(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.ToLower(strings.TrimSpace(candidate))
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
