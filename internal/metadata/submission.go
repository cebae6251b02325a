package metadata

import "sort"

// CheckboxCheckedValue is the value of the single fixed choice rendered for
// checkbox properties.
const CheckboxCheckedValue = "checked"

// RawFieldValue is the user's answer for one field, tagged with the property
// type that produced the widget. Exactly one of the value slots is meaningful
// for a given type:
//
//	title, rich_text, number, url, email, phone_number, date -> Value
//	select                                                   -> SelectedOption
//	multi_select, checkbox                                   -> SelectedOptions
//
// A nil pointer or nil slice means the field was left unanswered.
type RawFieldValue struct {
	Type            PropertyType `json:"type"`
	Value           *string      `json:"value,omitempty"`
	SelectedOption  *string      `json:"selected_option,omitempty"`
	SelectedOptions []string     `json:"selected_options,omitempty"`
}

// Text returns the free-text value and whether a non-empty one is present.
func (v RawFieldValue) Text() (string, bool) {
	if v.Value == nil || *v.Value == "" {
		return "", false
	}
	return *v.Value, true
}

// TextValue builds a free-text answer.
func TextValue(t PropertyType, s string) RawFieldValue {
	return RawFieldValue{Type: t, Value: &s}
}

// SelectValue builds a single-choice answer.
func SelectValue(id string) RawFieldValue {
	return RawFieldValue{Type: PropertyTypeSelect, SelectedOption: &id}
}

// MultiValue builds a multi-choice answer. Passing no ids yields an explicit
// empty selection, which is distinct from an unanswered field.
func MultiValue(t PropertyType, ids ...string) RawFieldValue {
	selected := make([]string, 0, len(ids))
	selected = append(selected, ids...)
	return RawFieldValue{Type: t, SelectedOptions: selected}
}

// Submission maps field ids to the user's answers.
type Submission map[string]RawFieldValue

// ValidationErrors maps field ids to a human-readable message. An empty map
// means the submission is accepted.
type ValidationErrors map[string]string

// FieldIDs returns the failing field ids in sorted order.
func (e ValidationErrors) FieldIDs() []string {
	ids := make([]string, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
