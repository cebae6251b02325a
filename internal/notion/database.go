package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"notion-forms/internal/metadata"
)

type databaseResponse struct {
	ID         string            `json:"id"`
	Title      []richText        `json:"title"`
	Properties orderedProperties `json:"properties"`
}

type optionList struct {
	Options []metadata.SelectOption `json:"options"`
}

type rawProperty struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Select      *optionList `json:"select"`
	MultiSelect *optionList `json:"multi_select"`
}

// orderedProperties decodes the properties object keeping the key order of
// the response, which is the column order shown in Notion.
type orderedProperties []metadata.PropertyDef

func (o *orderedProperties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("properties: expected object, got %v", tok)
	}

	var props []metadata.PropertyDef
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw rawProperty
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		if raw.Name == "" {
			raw.Name = key
		}
		def := metadata.PropertyDef{
			ID:   raw.ID,
			Name: raw.Name,
			Type: metadata.PropertyType(raw.Type),
		}
		switch {
		case raw.Select != nil:
			def.Options = raw.Select.Options
		case raw.MultiSelect != nil:
			def.Options = raw.MultiSelect.Options
		}
		props = append(props, def)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = props
	return nil
}

// RetrieveDatabase loads the schema of a database.
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*metadata.DatabaseSchema, error) {
	var resp databaseResponse
	if err := c.do(ctx, "retrieve_database", http.MethodGet, "/databases/"+url.PathEscape(databaseID), nil, &resp); err != nil {
		return nil, err
	}

	// Only the first title run names the database, as search results do.
	name := ""
	if len(resp.Title) > 0 {
		name = resp.Title[0].PlainText
	}
	id := resp.ID
	if id == "" {
		id = databaseID
	}
	return &metadata.DatabaseSchema{
		ID:          id,
		DisplayName: name,
		Properties:  []metadata.PropertyDef(resp.Properties),
	}, nil
}
