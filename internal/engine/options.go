package engine

import "notion-forms/internal/metadata"

// Choice is anything with an identifier and a display name: a select option
// or a search result.
type Choice struct {
	ID   string
	Name string
}

// ToOption converts a choice into a display/value pair.
func ToOption(item Choice) metadata.OptionPair {
	return metadata.OptionPair{Display: item.Name, Value: item.ID}
}

func selectOptionsToPairs(options []metadata.SelectOption) []metadata.OptionPair {
	pairs := make([]metadata.OptionPair, len(options))
	for i, o := range options {
		pairs[i] = ToOption(Choice{ID: o.ID, Name: o.Name})
	}
	return pairs
}
