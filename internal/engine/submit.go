package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"notion-forms/internal/instrument"
	"notion-forms/internal/metadata"
)

// Backend is the part of the Notion API the form flow talks to.
type Backend interface {
	Searcher
	RetrieveDatabase(ctx context.Context, databaseID string) (*metadata.DatabaseSchema, error)
	CreatePage(ctx context.Context, databaseID string, payload metadata.RecordPayload) (*metadata.CreatedRecord, error)
}

// BackendFactory builds a Backend authenticated with a workspace token.
type BackendFactory func(token string) Backend

// SubmitRecord validates the answers once more, encodes them and creates the
// page. Invalid answers come back as a 422 *AppError.
func SubmitRecord(ctx context.Context, backend Backend, databaseID string, values metadata.Submission) (*metadata.CreatedRecord, error) {
	ctx, span := instrument.GetInstrumenter(ctx).StartSpan(ctx, "engine", "submit", "record.create")
	defer span.End()
	span.SetMetadata("database_id", databaseID)

	if errs := Validate(values); len(errs) > 0 {
		span.SetStatus("error")
		return nil, ValidationError(ValidationDetails(errs))
	}

	payload, err := ToRecordPayload(values)
	if err != nil {
		span.SetStatus("error")
		return nil, ValidationError([]ErrorDetail{{Rule: "format", Message: err.Error()}})
	}

	created, err := backend.CreatePage(ctx, databaseID, payload)
	if err != nil {
		span.SetStatus("error")
		span.SetMetadata("error", err.Error())
		return nil, fmt.Errorf("create page in %s: %w", databaseID, err)
	}
	span.SetEntity("page", created.ID)
	span.SetStatus("ok")
	return created, nil
}

// checkTitle returns a detail when the submission does not carry exactly
// one non-blank title answer.
func checkTitle(values metadata.Submission) *ErrorDetail {
	var titles []string
	for fieldID, v := range values {
		if v.Type == metadata.PropertyTypeTitle {
			titles = append(titles, fieldID)
		}
	}
	sort.Strings(titles)

	switch {
	case len(titles) == 0:
		return &ErrorDetail{Rule: "required", Message: "This property is required"}
	case len(titles) > 1:
		return &ErrorDetail{Field: titles[1], Rule: "unique", Message: "Only one title property is allowed"}
	}
	text, _ := values[titles[0]].Text()
	if strings.TrimSpace(text) == "" {
		return &ErrorDetail{Field: titles[0], Rule: "required", Message: "This property is required"}
	}
	return nil
}
