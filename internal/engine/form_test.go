package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"notion-forms/internal/metadata"
)

func scenarioSchema() *metadata.DatabaseSchema {
	return &metadata.DatabaseSchema{
		ID:          "db-1",
		DisplayName: "Tasks",
		Properties: []metadata.PropertyDef{
			{Name: "Name", Type: metadata.PropertyTypeTitle},
			{Name: "Status", Type: metadata.PropertyTypeSelect, Options: []metadata.SelectOption{
				{ID: "d1", Name: "Done"}, {ID: "t1", Name: "Todo"},
			}},
			{Name: "Tags", Type: metadata.PropertyTypeMultiSelect},
		},
	}
}

func TestBuildForm_Scenario(t *testing.T) {
	fields, err := BuildForm(scenarioSchema())
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	want := []metadata.FieldSpec{
		{FieldID: "Name", Type: metadata.PropertyTypeTitle, Widget: metadata.WidgetTextInput, Label: "Name", Required: true},
		{FieldID: "Status", Type: metadata.PropertyTypeSelect, Widget: metadata.WidgetSingleChoice, Label: "Status",
			Choices: []metadata.OptionPair{{Display: "Done", Value: "d1"}, {Display: "Todo", Value: "t1"}}},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildForm_TitleFirstThenSchemaOrder(t *testing.T) {
	schema := &metadata.DatabaseSchema{Properties: []metadata.PropertyDef{
		{ID: "a", Name: "Notes", Type: metadata.PropertyTypeRichText},
		{ID: "b", Name: "Owner", Type: "people"},
		{ID: "c", Name: "Due", Type: metadata.PropertyTypeDate},
		{ID: "title", Name: "Name", Type: metadata.PropertyTypeTitle},
		{ID: "d", Name: "Done", Type: metadata.PropertyTypeCheckbox},
		{ID: "e", Name: "Rollup", Type: "rollup"},
		{ID: "f", Name: "Count", Type: metadata.PropertyTypeNumber},
	}}
	fields, err := BuildForm(schema)
	if err != nil {
		t.Fatalf("build form: %v", err)
	}

	var ids []string
	required := 0
	for _, f := range fields {
		ids = append(ids, f.FieldID)
		if f.Required {
			required++
		}
	}
	if diff := cmp.Diff([]string{"title", "a", "c", "d", "f"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if required != 1 || !fields[0].Required {
		t.Fatalf("expected only the first field to be required, got %d required", required)
	}
}

func TestBuildForm_Widgets(t *testing.T) {
	want := map[metadata.PropertyType]metadata.WidgetKind{
		metadata.PropertyTypeRichText:    metadata.WidgetMultilineTextInput,
		metadata.PropertyTypeNumber:      metadata.WidgetTextInput,
		metadata.PropertyTypeURL:         metadata.WidgetTextInput,
		metadata.PropertyTypeEmail:       metadata.WidgetTextInput,
		metadata.PropertyTypePhoneNumber: metadata.WidgetTextInput,
		metadata.PropertyTypeDate:        metadata.WidgetDatePicker,
		metadata.PropertyTypeCheckbox:    metadata.WidgetBooleanFlag,
	}
	for typ, widget := range want {
		schema := &metadata.DatabaseSchema{Properties: []metadata.PropertyDef{
			{ID: "title", Type: metadata.PropertyTypeTitle},
			{ID: "x", Name: "X", Type: typ},
		}}
		fields, err := BuildForm(schema)
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		if len(fields) != 2 {
			t.Fatalf("%s: expected 2 fields, got %d", typ, len(fields))
		}
		if fields[1].Widget != widget {
			t.Fatalf("%s: expected widget %s, got %s", typ, widget, fields[1].Widget)
		}
		if fields[1].Required {
			t.Fatalf("%s: expected optional field", typ)
		}
	}
}

func TestBuildForm_CheckboxChoice(t *testing.T) {
	schema := &metadata.DatabaseSchema{Properties: []metadata.PropertyDef{
		{ID: "title", Type: metadata.PropertyTypeTitle},
		{ID: "cb", Name: "Sync", Type: metadata.PropertyTypeCheckbox},
	}}
	fields, err := BuildForm(schema)
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	want := []metadata.OptionPair{{Display: " ", Value: "checked", Description: "This will be synchronized in Notion"}}
	if diff := cmp.Diff(want, fields[1].Choices); diff != "" {
		t.Fatalf("checkbox choice mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildForm_OptionValueIsIdentifier(t *testing.T) {
	fields, err := BuildForm(scenarioSchema())
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	for _, f := range fields {
		for _, c := range f.Choices {
			if c.Value == c.Display {
				t.Fatalf("expected value to be the option id, got %+v", c)
			}
		}
	}
}

func TestBuildForm_TitleErrors(t *testing.T) {
	none := &metadata.DatabaseSchema{ID: "db", Properties: []metadata.PropertyDef{
		{ID: "a", Type: metadata.PropertyTypeRichText},
	}}
	fields, err := BuildForm(none)
	if !errors.Is(err, ErrNoTitleProperty) {
		t.Fatalf("expected ErrNoTitleProperty, got %v", err)
	}
	if fields != nil {
		t.Fatalf("expected no fields, got %v", fields)
	}

	two := &metadata.DatabaseSchema{ID: "db", Properties: []metadata.PropertyDef{
		{ID: "a", Type: metadata.PropertyTypeTitle},
		{ID: "b", Type: metadata.PropertyTypeTitle},
	}}
	fields, err = BuildForm(two)
	if !errors.Is(err, ErrMultipleTitleProperties) {
		t.Fatalf("expected ErrMultipleTitleProperties, got %v", err)
	}
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) || schemaErr.DatabaseID != "db" {
		t.Fatalf("expected *SchemaError for db, got %v", err)
	}
	if fields != nil {
		t.Fatalf("expected no fields, got %v", fields)
	}
}

func TestFormHeader_TruncatesName(t *testing.T) {
	short := FormHeader(&metadata.DatabaseSchema{DisplayName: "Tasks"})
	if short != `You're going to send data to Notion database *"Tasks"*` {
		t.Fatalf("unexpected header: %s", short)
	}

	long := FormHeader(&metadata.DatabaseSchema{DisplayName: strings.Repeat("é", 30)})
	if !strings.Contains(long, `*"`+strings.Repeat("é", 24)+`"*`) {
		t.Fatalf("expected name truncated to 24 characters, got %s", long)
	}
}

func TestToOption(t *testing.T) {
	got := ToOption(Choice{ID: "x1", Name: "Done"})
	if got.Display != "Done" || got.Value != "x1" {
		t.Fatalf("unexpected option: %+v", got)
	}
}

func TestDispatchTablesCoverSupportedTypes(t *testing.T) {
	if err := checkDispatchTables(); err != nil {
		t.Fatal(err)
	}
}
