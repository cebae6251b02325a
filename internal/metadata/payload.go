package metadata

// RecordPayload maps field ids to property values in the shape of the Notion
// page-create API.
type RecordPayload map[string]PropertyValue

// PropertyValue holds exactly one populated key, matching the property type.
type PropertyValue struct {
	Title       []RichText  `json:"title,omitempty"`
	Select      *OptionRef  `json:"select,omitempty"`
	MultiSelect []OptionRef `json:"multi_select,omitempty"`
	RichText    []RichText  `json:"rich_text,omitempty"`
	Number      *int64      `json:"number,omitempty"`
	Date        *DateValue  `json:"date,omitempty"`
	Checkbox    *bool       `json:"checkbox,omitempty"`
	URL         *string     `json:"url,omitempty"`
	Email       *string     `json:"email,omitempty"`
	PhoneNumber *string     `json:"phone_number,omitempty"`
}

type RichText struct {
	Type string      `json:"type,omitempty"`
	Text TextContent `json:"text"`
}

type TextContent struct {
	Content string `json:"content"`
}

type OptionRef struct {
	ID string `json:"id"`
}

type DateValue struct {
	Start string `json:"start"`
}

// CreatedRecord identifies a page created from a submission.
type CreatedRecord struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
