package engine

import (
	"context"
	"fmt"

	"notion-forms/internal/instrument"
	"notion-forms/internal/metadata"
)

const (
	checkboxChoiceDisplay     = " "
	checkboxChoiceDescription = "This will be synchronized in Notion"
	headerNameMaxLen          = 24
)

// widgetBuilder turns a property into a form field. It returns false when the
// property cannot be usefully filled in and must be left out of the form.
type widgetBuilder func(p metadata.PropertyDef) (metadata.FieldSpec, bool)

var widgetBuilders = map[metadata.PropertyType]widgetBuilder{
	metadata.PropertyTypeTitle: func(p metadata.PropertyDef) (metadata.FieldSpec, bool) {
		f := newField(p, metadata.WidgetTextInput)
		f.Required = true
		return f, true
	},
	metadata.PropertyTypeSelect:      choiceWidget(metadata.WidgetSingleChoice),
	metadata.PropertyTypeMultiSelect: choiceWidget(metadata.WidgetMultiChoice),
	metadata.PropertyTypeRichText:    plainWidget(metadata.WidgetMultilineTextInput),
	metadata.PropertyTypeNumber:      plainWidget(metadata.WidgetTextInput),
	metadata.PropertyTypeURL:         plainWidget(metadata.WidgetTextInput),
	metadata.PropertyTypeEmail:       plainWidget(metadata.WidgetTextInput),
	metadata.PropertyTypePhoneNumber: plainWidget(metadata.WidgetTextInput),
	metadata.PropertyTypeDate:        plainWidget(metadata.WidgetDatePicker),
	metadata.PropertyTypeCheckbox: func(p metadata.PropertyDef) (metadata.FieldSpec, bool) {
		f := newField(p, metadata.WidgetBooleanFlag)
		f.Choices = []metadata.OptionPair{{
			Display:     checkboxChoiceDisplay,
			Value:       metadata.CheckboxCheckedValue,
			Description: checkboxChoiceDescription,
		}}
		return f, true
	},
}

func newField(p metadata.PropertyDef, widget metadata.WidgetKind) metadata.FieldSpec {
	return metadata.FieldSpec{
		FieldID: p.FieldID(),
		Type:    p.Type,
		Widget:  widget,
		Label:   p.Name,
	}
}

func plainWidget(widget metadata.WidgetKind) widgetBuilder {
	return func(p metadata.PropertyDef) (metadata.FieldSpec, bool) {
		return newField(p, widget), true
	}
}

// A select with no allowed values cannot be answered, so it is skipped.
func choiceWidget(widget metadata.WidgetKind) widgetBuilder {
	return func(p metadata.PropertyDef) (metadata.FieldSpec, bool) {
		if len(p.Options) == 0 {
			return metadata.FieldSpec{}, false
		}
		f := newField(p, widget)
		f.Choices = selectOptionsToPairs(p.Options)
		return f, true
	}
}

// BuildForm translates a database schema into an ordered list of form fields.
// The title property comes first and is the only required field; the rest
// follow in schema order. Unsupported property types are dropped. A schema
// without exactly one title property yields a *SchemaError and no fields.
func BuildForm(schema *metadata.DatabaseSchema) ([]metadata.FieldSpec, error) {
	titles := schema.PropertiesOfType(metadata.PropertyTypeTitle)
	switch {
	case len(titles) == 0:
		return nil, &SchemaError{DatabaseID: schema.ID, Err: ErrNoTitleProperty}
	case len(titles) > 1:
		return nil, &SchemaError{DatabaseID: schema.ID, Err: ErrMultipleTitleProperties}
	}

	title, _ := widgetBuilders[metadata.PropertyTypeTitle](titles[0])
	fields := []metadata.FieldSpec{title}

	for _, p := range schema.Properties {
		if p.Type == metadata.PropertyTypeTitle {
			continue
		}
		build, ok := widgetBuilders[p.Type]
		if !ok {
			continue
		}
		if f, ok := build(p); ok {
			fields = append(fields, f)
		}
	}
	return fields, nil
}

// BuildFormTraced wraps BuildForm in an instrumentation span.
func BuildFormTraced(ctx context.Context, schema *metadata.DatabaseSchema) ([]metadata.FieldSpec, error) {
	_, span := instrument.GetInstrumenter(ctx).StartSpan(ctx, "engine", "form", "form.build")
	defer span.End()
	span.SetEntity("database", schema.ID)

	fields, err := BuildForm(schema)
	if err != nil {
		span.SetStatus("error")
		span.SetMetadata("error", err.Error())
		return nil, err
	}
	span.SetMetadata("fields", len(fields))
	span.SetStatus("ok")
	return fields, nil
}

// FormHeader is the introductory line shown above the generated fields.
func FormHeader(schema *metadata.DatabaseSchema) string {
	name := []rune(schema.DisplayName)
	if len(name) > headerNameMaxLen {
		name = name[:headerNameMaxLen]
	}
	return fmt.Sprintf(`You're going to send data to Notion database *"%s"*`, string(name))
}
