package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Installations maps Notion workspaces to the integration token they granted.
type Installations struct {
	store        *Store
	defaultToken string
}

func NewInstallations(s *Store, defaultToken string) *Installations {
	return &Installations{store: s, defaultToken: defaultToken}
}

// ResolveToken returns the Notion token for a workspace. Workspaces without
// an installation fall back to the configured default token; an empty result
// means no credential is available at all.
func (i *Installations) ResolveToken(ctx context.Context, workspace string) (string, error) {
	if workspace != "" {
		pb := i.store.Dialect.NewParamBuilder()
		row, err := QueryRow(ctx, i.store.DB,
			fmt.Sprintf("SELECT notion_token FROM _installations WHERE workspace_id = %s", pb.Add(workspace)),
			pb.Params()...)
		switch {
		case err == nil:
			if tok := toString(row["notion_token"]); tok != "" {
				return tok, nil
			}
		case !errors.Is(err, ErrNotFound):
			return "", fmt.Errorf("resolve token for %s: %w", workspace, err)
		}
	}
	if i.defaultToken == "" {
		return "", ErrNotFound
	}
	return i.defaultToken, nil
}

// Put stores or replaces the token of a workspace.
func (i *Installations) Put(ctx context.Context, workspace, token string) error {
	if workspace == "" || token == "" {
		return fmt.Errorf("workspace and token are required")
	}
	d := i.store.Dialect
	pb := d.NewParamBuilder()
	sqlStr := fmt.Sprintf(
		"INSERT INTO _installations (workspace_id, notion_token) VALUES (%s, %s) "+
			"ON CONFLICT (workspace_id) DO UPDATE SET notion_token = excluded.notion_token, updated_at = %s",
		pb.Add(workspace), pb.Add(token), d.NowExpr())
	if _, err := Exec(ctx, i.store.DB, sqlStr, pb.Params()...); err != nil {
		return fmt.Errorf("put installation %s: %w", workspace, MapError(d, err))
	}
	return nil
}

// Installation is a stored workspace credential. The token is never exposed.
type Installation struct {
	Workspace string    `json:"workspace"`
	TokenHint string    `json:"token_hint"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List returns every installation ordered by workspace.
func (i *Installations) List(ctx context.Context) ([]Installation, error) {
	rows, err := QueryRows(ctx, i.store.DB,
		"SELECT workspace_id, notion_token, updated_at FROM _installations ORDER BY workspace_id")
	if err != nil {
		return nil, fmt.Errorf("list installations: %w", err)
	}
	out := make([]Installation, 0, len(rows))
	for _, row := range rows {
		inst := Installation{
			Workspace: toString(row["workspace_id"]),
			TokenHint: tokenHint(toString(row["notion_token"])),
		}
		if t, ok := row["updated_at"].(time.Time); ok {
			inst.UpdatedAt = t
		}
		out = append(out, inst)
	}
	return out, nil
}

// Delete removes the installation of a workspace.
func (i *Installations) Delete(ctx context.Context, workspace string) error {
	pb := i.store.Dialect.NewParamBuilder()
	n, err := Exec(ctx, i.store.DB,
		fmt.Sprintf("DELETE FROM _installations WHERE workspace_id = %s", pb.Add(workspace)), pb.Params()...)
	if err != nil {
		return fmt.Errorf("delete installation %s: %w", workspace, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func tokenHint(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
