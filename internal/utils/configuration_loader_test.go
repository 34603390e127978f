package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitstate/gitstate/internal/utils"
)

const (
	loaderTestEnvironmentPrefixConstant = "GITSTATETEST"
	loaderTestConfigurationNameConstant = "config"
	loaderTestConfigurationTypeConstant = "yaml"
	loaderTestLogLevelKeyConstant       = "common.log_level"
	loaderTestContentTemplateConstant   = "common:\n  log_level: %s\n"
	loaderTestConfigFileNameConstant    = "config.yaml"
)

type loaderTestConfiguration struct {
	Common struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"common"`
}

func writeLoaderTestConfiguration(testInstance *testing.T, directoryPath string, logLevel string) string {
	testInstance.Helper()

	configurationFilePath := filepath.Join(directoryPath, loaderTestConfigFileNameConstant)
	writeError := os.WriteFile(configurationFilePath, []byte(fmt.Sprintf(loaderTestContentTemplateConstant, logLevel)), 0o600)
	require.NoError(testInstance, writeError)

	return configurationFilePath
}

func TestConfigurationLoaderPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name             string
		embeddedLogLevel string
		fileLogLevel     string
		environmentValue string
		expectedLogLevel string
	}{
		{
			name:             "defaults_apply_when_nothing_else_set",
			expectedLogLevel: "info",
		},
		{
			name:             "embedded_configuration_overrides_defaults",
			embeddedLogLevel: "debug",
			expectedLogLevel: "debug",
		},
		{
			name:             "configuration_file_overrides_embedded",
			embeddedLogLevel: "debug",
			fileLogLevel:     "warn",
			expectedLogLevel: "warn",
		},
		{
			name:             "environment_overrides_configuration_file",
			embeddedLogLevel: "debug",
			fileLogLevel:     "warn",
			environmentValue: "error",
			expectedLogLevel: "error",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			temporaryDirectory := subtestInstance.TempDir()

			configurationFilePath := ""
			if len(testCase.fileLogLevel) > 0 {
				configurationFilePath = writeLoaderTestConfiguration(subtestInstance, temporaryDirectory, testCase.fileLogLevel)
			}

			if len(testCase.environmentValue) > 0 {
				subtestInstance.Setenv(loaderTestEnvironmentPrefixConstant+"_COMMON_LOG_LEVEL", testCase.environmentValue)
			}

			configurationLoader := utils.NewConfigurationLoader(
				loaderTestConfigurationNameConstant,
				loaderTestConfigurationTypeConstant,
				loaderTestEnvironmentPrefixConstant,
				[]string{temporaryDirectory},
			)
			if len(testCase.embeddedLogLevel) > 0 {
				configurationLoader.SetEmbeddedConfiguration([]byte(fmt.Sprintf(loaderTestContentTemplateConstant, testCase.embeddedLogLevel)), loaderTestConfigurationTypeConstant)
			}

			loadedConfiguration := loaderTestConfiguration{}
			metadata, loadError := configurationLoader.LoadConfiguration(
				configurationFilePath,
				map[string]any{loaderTestLogLevelKeyConstant: "info"},
				&loadedConfiguration,
			)
			require.NoError(subtestInstance, loadError)
			require.Equal(subtestInstance, testCase.expectedLogLevel, loadedConfiguration.Common.LogLevel)
			require.Equal(subtestInstance, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderSearchesConfiguredPaths(testInstance *testing.T) {
	firstDirectory := testInstance.TempDir()
	secondDirectory := testInstance.TempDir()

	configurationFilePath := writeLoaderTestConfiguration(testInstance, secondDirectory, "debug")

	configurationLoader := utils.NewConfigurationLoader(
		loaderTestConfigurationNameConstant,
		loaderTestConfigurationTypeConstant,
		loaderTestEnvironmentPrefixConstant,
		[]string{firstDirectory, secondDirectory},
	)

	loadedConfiguration := loaderTestConfiguration{}
	metadata, loadError := configurationLoader.LoadConfiguration("", nil, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "debug", loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderRejectsMalformedFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(temporaryDirectory, loaderTestConfigFileNameConstant)
	writeError := os.WriteFile(configurationFilePath, []byte("common: [unterminated"), 0o600)
	require.NoError(testInstance, writeError)

	configurationLoader := utils.NewConfigurationLoader(
		loaderTestConfigurationNameConstant,
		loaderTestConfigurationTypeConstant,
		loaderTestEnvironmentPrefixConstant,
		nil,
	)

	loadedConfiguration := loaderTestConfiguration{}
	_, loadError := configurationLoader.LoadConfiguration(configurationFilePath, nil, &loadedConfiguration)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "reading configuration failed")
}
