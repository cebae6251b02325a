package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SubmissionRecord is one successfully written form submission.
type SubmissionRecord struct {
	ID         string    `json:"id"`
	DatabaseID string    `json:"database_id"`
	PageID     string    `json:"page_id"`
	PageURL    string    `json:"page_url"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Submissions is the local log of records created in Notion.
type Submissions struct {
	store *Store
}

func NewSubmissions(s *Store) *Submissions {
	return &Submissions{store: s}
}

// Record logs a created page and returns the generated submission id.
func (s *Submissions) Record(ctx context.Context, databaseID, pageID, pageURL, userID string) (string, error) {
	id := uuid.New().String()
	pb := s.store.Dialect.NewParamBuilder()
	sqlStr := fmt.Sprintf(
		"INSERT INTO _submissions (id, database_id, page_id, page_url, user_id) VALUES (%s, %s, %s, %s, %s)",
		pb.Add(id), pb.Add(databaseID), pb.Add(pageID), pb.Add(pageURL), pb.Add(userID))
	if _, err := Exec(ctx, s.store.DB, sqlStr, pb.Params()...); err != nil {
		return "", fmt.Errorf("record submission: %w", MapError(s.store.Dialect, err))
	}
	return id, nil
}

// ListRecent returns the newest submissions of a user, newest first.
func (s *Submissions) ListRecent(ctx context.Context, userID string, limit int) ([]SubmissionRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	pb := s.store.Dialect.NewParamBuilder()
	sqlStr := fmt.Sprintf(
		"SELECT id, database_id, page_id, page_url, user_id, created_at FROM _submissions WHERE user_id = %s ORDER BY created_at DESC, id LIMIT %s",
		pb.Add(userID), pb.Add(limit))
	rows, err := QueryRows(ctx, s.store.DB, sqlStr, pb.Params()...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	out := make([]SubmissionRecord, 0, len(rows))
	for _, row := range rows {
		rec := SubmissionRecord{
			ID:         toString(row["id"]),
			DatabaseID: toString(row["database_id"]),
			PageID:     toString(row["page_id"]),
			PageURL:    toString(row["page_url"]),
			UserID:     toString(row["user_id"]),
		}
		if t, ok := row["created_at"].(time.Time); ok {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	return out, nil
}
