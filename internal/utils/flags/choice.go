package flags

import (
	"fmt"
	"strings"
)

const (
	choiceListSeparatorConstant     = "|"
	choiceUsageBareTemplateConstant = "`<%s>`"
	choiceUsageFullTemplateConstant = "`<%s>` %s"
)

// FormatChoiceUsage builds a flag usage string listing the allowed values,
// with the default value upper-cased inside the placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))

	displayChoices := make([]string, 0, len(choices))
	seenChoices := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, alreadySeen := seenChoices[normalizedChoice]; alreadySeen {
			continue
		}
		seenChoices[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			displayChoices = append(displayChoices, strings.ToUpper(trimmedChoice))
			continue
		}
		displayChoices = append(displayChoices, trimmedChoice)
	}

	choiceList := strings.Join(displayChoices, choiceListSeparatorConstant)
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(choiceUsageBareTemplateConstant, choiceList)
	}
	return fmt.Sprintf(choiceUsageFullTemplateConstant, choiceList, trimmedDescription)
}
