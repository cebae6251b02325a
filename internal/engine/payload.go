package engine

import (
	"fmt"
	"strconv"

	"notion-forms/internal/metadata"
)

// encoder converts one answer into a property value. It returns false when
// the answer contributes nothing to the payload.
type encoder func(v metadata.RawFieldValue) (metadata.PropertyValue, bool, error)

var encoders = map[metadata.PropertyType]encoder{
	metadata.PropertyTypeTitle: func(v metadata.RawFieldValue) (metadata.PropertyValue, bool, error) {
		var text string
		if v.Value != nil {
			text = *v.Value
		}
		return metadata.PropertyValue{
			Title: []metadata.RichText{{Type: "text", Text: metadata.TextContent{Content: text}}},
		}, true, nil
	},
	metadata.PropertyTypeSelect: func(v metadata.RawFieldValue) (metadata.PropertyValue, bool, error) {
		if v.SelectedOption == nil || *v.SelectedOption == "" {
			return metadata.PropertyValue{}, false, nil
		}
		return metadata.PropertyValue{Select: &metadata.OptionRef{ID: *v.SelectedOption}}, true, nil
	},
	// An explicit empty selection is treated as no answer.
	metadata.PropertyTypeMultiSelect: func(v metadata.RawFieldValue) (metadata.PropertyValue, bool, error) {
		if len(v.SelectedOptions) == 0 {
			return metadata.PropertyValue{}, false, nil
		}
		refs := make([]metadata.OptionRef, len(v.SelectedOptions))
		for i, id := range v.SelectedOptions {
			refs[i] = metadata.OptionRef{ID: id}
		}
		return metadata.PropertyValue{MultiSelect: refs}, true, nil
	},
	metadata.PropertyTypeRichText: textEncoder(func(s string) metadata.PropertyValue {
		return metadata.PropertyValue{RichText: []metadata.RichText{{Text: metadata.TextContent{Content: s}}}}
	}),
	metadata.PropertyTypeNumber: func(v metadata.RawFieldValue) (metadata.PropertyValue, bool, error) {
		text, ok := v.Text()
		if !ok {
			return metadata.PropertyValue{}, false, nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return metadata.PropertyValue{}, false, fmt.Errorf("parse number %q: %w", text, err)
		}
		return metadata.PropertyValue{Number: &n}, true, nil
	},
	metadata.PropertyTypeDate: textEncoder(func(s string) metadata.PropertyValue {
		return metadata.PropertyValue{Date: &metadata.DateValue{Start: s}}
	}),
	// A checkbox always has a state, so it is never omitted.
	metadata.PropertyTypeCheckbox: func(v metadata.RawFieldValue) (metadata.PropertyValue, bool, error) {
		checked := false
		for _, o := range v.SelectedOptions {
			if o == metadata.CheckboxCheckedValue {
				checked = true
				break
			}
		}
		return metadata.PropertyValue{Checkbox: &checked}, true, nil
	},
	metadata.PropertyTypeURL: textEncoder(func(s string) metadata.PropertyValue {
		return metadata.PropertyValue{URL: &s}
	}),
	metadata.PropertyTypeEmail: textEncoder(func(s string) metadata.PropertyValue {
		return metadata.PropertyValue{Email: &s}
	}),
	metadata.PropertyTypePhoneNumber: textEncoder(func(s string) metadata.PropertyValue {
		return metadata.PropertyValue{PhoneNumber: &s}
	}),
}

func textEncoder(wrap func(s string) metadata.PropertyValue) encoder {
	return func(v metadata.RawFieldValue) (metadata.PropertyValue, bool, error) {
		text, ok := v.Text()
		if !ok {
			return metadata.PropertyValue{}, false, nil
		}
		return wrap(text), true, nil
	}
}

// ToRecordPayload converts validated answers into a page-create payload.
// Unanswered optional fields are omitted; checkboxes are always present.
// Answers with an unknown type tag are ignored. Call Validate first: the only
// error reported here is a number that does not fit in an int64.
func ToRecordPayload(values metadata.Submission) (metadata.RecordPayload, error) {
	payload := metadata.RecordPayload{}
	for fieldID, v := range values {
		encode, ok := encoders[v.Type]
		if !ok {
			continue
		}
		pv, present, err := encode(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fieldID, err)
		}
		if present {
			payload[fieldID] = pv
		}
	}
	return payload, nil
}
