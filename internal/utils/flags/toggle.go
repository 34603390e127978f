package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalConstant      = "true"
	toggleFalseCanonicalConstant     = "false"
	toggleFlagTypeNameConstant       = "bool"
	toggleParseErrorTemplateConstant = "invalid toggle value %q"
	toggleUsageDefaultOnPlaceholder  = "<YES|no>"
	toggleUsageDefaultOffPlaceholder = "<yes|NO>"
	toggleUsageBareTemplateConstant  = "`%s`"
	toggleUsageFullTemplateConstant  = "`%s` %s"
)

var toggleTrueLiterals = []string{"true", "yes", "on", "1", "t", "y"}

var toggleFalseLiterals = []string{"false", "no", "off", "0", "f", "n"}

// AddToggleFlag registers a boolean flag accepting yes/no style values.
//
// The flag works both bare (--slow) and with an explicit value (--slow=no).
// The bound target always mirrors the flag's current value.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	boundValue := newToggleValue(defaultValue, target)
	if len(shorthand) > 0 {
		flagSet.VarP(boundValue, name, shorthand, usage)
	} else {
		flagSet.Var(boundValue, name, usage)
	}

	registeredFlag := flagSet.Lookup(name)
	if registeredFlag == nil {
		return
	}
	registeredFlag.NoOptDefVal = toggleTrueCanonicalConstant
	registeredFlag.Usage = toggleUsage(usage, defaultValue)
}

func toggleUsage(description string, defaultValue bool) string {
	placeholder := toggleUsageDefaultOffPlaceholder
	if defaultValue {
		placeholder = toggleUsageDefaultOnPlaceholder
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleUsageBareTemplateConstant, placeholder)
	}
	return fmt.Sprintf(toggleUsageFullTemplateConstant, placeholder, trimmedDescription)
}

type toggleValue struct {
	enabled bool
	target  *bool
}

func newToggleValue(defaultValue bool, target *bool) *toggleValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleValue{enabled: defaultValue, target: target}
}

func (value *toggleValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggleLiteral(rawValue)
	if parseError != nil {
		return parseError
	}
	value.enabled = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleValue) String() string {
	if value != nil && value.enabled {
		return toggleTrueCanonicalConstant
	}
	return toggleFalseCanonicalConstant
}

func (value *toggleValue) Type() string {
	return toggleFlagTypeNameConstant
}

func parseToggleLiteral(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		return true, nil
	}
	for _, trueLiteral := range toggleTrueLiterals {
		if normalizedValue == trueLiteral {
			return true, nil
		}
	}
	for _, falseLiteral := range toggleFalseLiterals {
		if normalizedValue == falseLiteral {
			return false, nil
		}
	}
	return false, fmt.Errorf(toggleParseErrorTemplateConstant, rawValue)
}
