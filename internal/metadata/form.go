package metadata

type WidgetKind string

const (
	WidgetTextInput          WidgetKind = "text_input"
	WidgetMultilineTextInput WidgetKind = "multiline_text_input"
	WidgetSingleChoice       WidgetKind = "single_choice"
	WidgetMultiChoice        WidgetKind = "multi_choice"
	WidgetDatePicker         WidgetKind = "date_picker"
	WidgetBooleanFlag        WidgetKind = "boolean_flag"
)

// OptionPair is a selectable choice. Value is always the underlying
// identifier, never the display text.
type OptionPair struct {
	Display     string `json:"display"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// FieldSpec is one generated form field.
type FieldSpec struct {
	FieldID  string       `json:"field_id"`
	Type     PropertyType `json:"type"`
	Widget   WidgetKind   `json:"widget"`
	Label    string       `json:"label"`
	Required bool         `json:"required"`
	Choices  []OptionPair `json:"choices,omitempty"`
}
