package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAddToggleFlagParsesValues(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedValue   bool
		expectedChanged bool
	}{
		{name: "default_untouched", arguments: []string{}, expectedValue: false, expectedChanged: false},
		{name: "bare_flag_enables", arguments: []string{"--slow"}, expectedValue: true, expectedChanged: true},
		{name: "explicit_yes", arguments: []string{"--slow=yes"}, expectedValue: true, expectedChanged: true},
		{name: "explicit_true_uppercase", arguments: []string{"--slow=TRUE"}, expectedValue: true, expectedChanged: true},
		{name: "explicit_no", arguments: []string{"--slow=no"}, expectedValue: false, expectedChanged: true},
		{name: "explicit_off", arguments: []string{"--slow=off"}, expectedValue: false, expectedChanged: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			command := &cobra.Command{}

			var slowModeValue bool
			AddToggleFlag(command.Flags(), &slowModeValue, "slow", "", false, "Compare tags against the remote")

			parseError := command.ParseFlags(testCase.arguments)
			require.NoError(subtestInstance, parseError)
			require.Equal(subtestInstance, testCase.expectedValue, slowModeValue)

			registeredFlag := command.Flags().Lookup("slow")
			require.NotNil(subtestInstance, registeredFlag)
			require.Equal(subtestInstance, testCase.expectedChanged, registeredFlag.Changed)
		})
	}
}

func TestAddToggleFlagDefaultTrueSurvivesRegistration(testInstance *testing.T) {
	command := &cobra.Command{}

	var includeCleanValue bool
	AddToggleFlag(command.Flags(), &includeCleanValue, "include-clean", "", true, "Include clean repositories")

	require.True(testInstance, includeCleanValue)
	require.NoError(testInstance, command.ParseFlags([]string{"--include-clean=no"}))
	require.False(testInstance, includeCleanValue)
}

func TestAddToggleFlagRejectsInvalidValues(testInstance *testing.T) {
	command := &cobra.Command{}

	var slowModeValue bool
	AddToggleFlag(command.Flags(), &slowModeValue, "slow", "", false, "Compare tags against the remote")

	parseError := command.ParseFlags([]string{"--slow=maybe"})
	require.Error(testInstance, parseError)
	require.False(testInstance, slowModeValue)
}

func TestToggleUsageMentionsDefault(testInstance *testing.T) {
	require.Equal(testInstance, "`<yes|NO>` Toggle it", toggleUsage("Toggle it", false))
	require.Equal(testInstance, "`<YES|no>` Toggle it", toggleUsage("Toggle it", true))
	require.Equal(testInstance, "`<yes|NO>`", toggleUsage("  ", false))
}
