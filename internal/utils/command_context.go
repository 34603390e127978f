package utils

import "context"

type commandContextKey string

const configurationFilePathContextKey commandContextKey = "configuration_file_path"

// CommandContextAccessor reads and writes command-scoped values carried on a context.
type CommandContextAccessor struct{}

// NewCommandContextAccessor returns an accessor for command context values.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath returns a context carrying the resolved configuration file path.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}

	return context.WithValue(parentContext, configurationFilePathContextKey, configurationFilePath)
}

// ConfigurationFilePath reports the configuration file path stored on the context, if any.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}

	configurationFilePath, found := executionContext.Value(configurationFilePathContextKey).(string)

	return configurationFilePath, found
}
