package docs_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/siteguard/cmd/cli"
	"github.com/temirov/siteguard/internal/utils"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	readmeSnippetTestNameConstant    = "readme_check_configuration"
	readmeSnippetFileNameConstant    = "config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
	configurationNameConstant        = "config"
	configurationTypeConstant        = "yaml"
	environmentPrefixConstant        = "SITEGUARD_README_TEST"
)

type readmeApplicationConfiguration struct {
	Common readmeCommonConfiguration `yaml:"common"`
	Tools  readmeToolsConfiguration  `yaml:"tools"`
}

type readmeCommonConfiguration struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type readmeToolsConfiguration struct {
	Check readmeCheckConfiguration `yaml:"check"`
}

type readmeCheckConfiguration struct {
	Root         string   `yaml:"root"`
	Origin       string   `yaml:"origin"`
	Sitemap      string   `yaml:"sitemap"`
	Changed      string   `yaml:"changed"`
	Added        string   `yaml:"added"`
	SharePages   []string `yaml:"share_pages"`
	FallbackGlob string   `yaml:"fallback_glob"`
	Matcher      string   `yaml:"matcher"`
	Strict       bool     `yaml:"strict"`
}

func TestReadmeCheckConfigurationParses(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	snippetContent := strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])

	testInstance.Run(readmeSnippetTestNameConstant, func(subtest *testing.T) {
		decoder := yaml.NewDecoder(bytes.NewReader([]byte(snippetContent)))
		decoder.KnownFields(true)

		var readmeConfiguration readmeApplicationConfiguration
		require.NoError(subtest, decoder.Decode(&readmeConfiguration))

		embeddedData, _ := cli.EmbeddedDefaultConfiguration()
		var embeddedConfiguration readmeApplicationConfiguration
		require.NoError(subtest, yaml.Unmarshal(embeddedData, &embeddedConfiguration))
		require.Equal(subtest, embeddedConfiguration, readmeConfiguration)

		snippetDirectory := subtest.TempDir()
		snippetPath := filepath.Join(snippetDirectory, readmeSnippetFileNameConstant)
		require.NoError(subtest, os.WriteFile(snippetPath, []byte(snippetContent), 0o600))

		loader := utils.NewConfigurationLoader(configurationNameConstant, configurationTypeConstant, environmentPrefixConstant, nil)
		var applicationConfiguration cli.ApplicationConfiguration
		loadedConfiguration, loadError := loader.LoadConfiguration(snippetPath, nil, &applicationConfiguration)
		require.NoError(subtest, loadError)
		require.Equal(subtest, snippetPath, loadedConfiguration.ConfigFileUsed)
		require.Equal(subtest, readmeConfiguration.Tools.Check.SharePages, applicationConfiguration.Tools.Check.SharePages)
		require.Equal(subtest, readmeConfiguration.Tools.Check.Origin, applicationConfiguration.Tools.Check.Origin)
	})
}
