package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"notion-forms/internal/auth"
	"notion-forms/internal/config"
	"notion-forms/internal/engine"
	"notion-forms/internal/notion"
)

func notionClient(cfg *config.Config) (*notion.Client, error) {
	if cfg.Notion.Token == "" {
		return nil, fmt.Errorf("notion.token is not set (NOTION_TOKEN)")
	}
	return notion.NewClient(cfg.Notion, notion.StaticToken(cfg.Notion.Token)), nil
}

func newDatabasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "databases [query]",
		Short: "List the databases a form can be built for",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client, err := notionClient(cfg)
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			options, err := engine.ListSelectableDatabases(commandContext(cmd), query, client)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE")
			for _, o := range options {
				fmt.Fprintf(w, "%s\t%s\n", o.Value, o.Display)
			}
			return w.Flush()
		},
	}
}

func newFormCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "form <database-id>",
		Short: "Print the form generated for a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client, err := notionClient(cfg)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			schema, err := client.RetrieveDatabase(ctx, args[0])
			if err != nil {
				return err
			}
			fields, err := engine.BuildForm(schema)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"database_id": schema.ID,
				"header":      engine.FormHeader(schema),
				"fields":      fields,
			})
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		user      string
		workspace string
		roles     []string
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tok, err := auth.GenerateAccessToken(user, workspace, roles, cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&workspace, "workspace", "", "Notion workspace the user belongs to")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role to grant, repeatable")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
