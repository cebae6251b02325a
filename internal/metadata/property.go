package metadata

// PropertyType is the type tag of a Notion database property.
type PropertyType string

const (
	PropertyTypeTitle       PropertyType = "title"
	PropertyTypeSelect      PropertyType = "select"
	PropertyTypeMultiSelect PropertyType = "multi_select"
	PropertyTypeRichText    PropertyType = "rich_text"
	PropertyTypeNumber      PropertyType = "number"
	PropertyTypeURL         PropertyType = "url"
	PropertyTypeEmail       PropertyType = "email"
	PropertyTypePhoneNumber PropertyType = "phone_number"
	PropertyTypeDate        PropertyType = "date"
	PropertyTypeCheckbox    PropertyType = "checkbox"
)

var supportedPropertyTypes = []PropertyType{
	PropertyTypeTitle,
	PropertyTypeSelect,
	PropertyTypeMultiSelect,
	PropertyTypeRichText,
	PropertyTypeNumber,
	PropertyTypeURL,
	PropertyTypeEmail,
	PropertyTypePhoneNumber,
	PropertyTypeDate,
	PropertyTypeCheckbox,
}

// SupportedPropertyTypes returns the closed set of property types that can be
// rendered as form fields and written back. Any other tag (people, relation,
// formula, rollup, files, ...) is skipped.
func SupportedPropertyTypes() []PropertyType {
	out := make([]PropertyType, len(supportedPropertyTypes))
	copy(out, supportedPropertyTypes)
	return out
}

// IsSupported reports whether t belongs to the supported set.
func (t PropertyType) IsSupported() bool {
	for _, s := range supportedPropertyTypes {
		if s == t {
			return true
		}
	}
	return false
}

// SelectOption is one allowed value of a select or multi_select property.
type SelectOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// PropertyDef is one column of a database schema.
type PropertyDef struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Type PropertyType `json:"type"`

	// Options holds the allowed values for select and multi_select properties.
	Options []SelectOption `json:"options,omitempty"`
}

// FieldID returns the identifier used for the generated form field and as the
// payload key: the property id, else its name, else the type tag.
func (p PropertyDef) FieldID() string {
	if p.ID != "" {
		return p.ID
	}
	if p.Name != "" {
		return p.Name
	}
	return string(p.Type)
}

// DatabaseSchema is a database and its properties in the order the store
// returned them.
type DatabaseSchema struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"display_name"`
	Properties  []PropertyDef `json:"properties"`
}

// PropertiesOfType returns the properties with the given type tag.
func (s *DatabaseSchema) PropertiesOfType(t PropertyType) []PropertyDef {
	var props []PropertyDef
	for _, p := range s.Properties {
		if p.Type == t {
			props = append(props, p)
		}
	}
	return props
}
