package metadata

// FormSession ties an opened form to the database it was built from, so a
// later submission cannot be redirected to another database.
type FormSession struct {
	ID         string `json:"id"`
	DatabaseID string `json:"database_id"`
	UserID     string `json:"user_id"`
	Workspace  string `json:"workspace,omitempty"`
}
