package notion

import (
	"context"
	"net/http"

	"notion-forms/internal/metadata"
)

type pageParent struct {
	Type       string `json:"type"`
	DatabaseID string `json:"database_id"`
}

type createPageBody struct {
	Parent     pageParent             `json:"parent"`
	Properties metadata.RecordPayload `json:"properties"`
}

// CreatePage creates a new page in a database from an encoded payload.
func (c *Client) CreatePage(ctx context.Context, databaseID string, payload metadata.RecordPayload) (*metadata.CreatedRecord, error) {
	body := createPageBody{
		Parent:     pageParent{Type: "database_id", DatabaseID: databaseID},
		Properties: payload,
	}
	var created metadata.CreatedRecord
	if err := c.do(ctx, "create_page", http.MethodPost, "/pages", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
