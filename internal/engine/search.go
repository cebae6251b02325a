package engine

import (
	"context"
	"errors"
	"fmt"

	"notion-forms/internal/instrument"
	"notion-forms/internal/metadata"
)

const untitledDatabase = "Untitled"

var (
	errEmptySearchPage = errors.New("empty response")
	errRepeatedCursor  = errors.New("store repeated cursor")
)

// SearchFilter narrows a search to one object kind.
type SearchFilter struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// DatabaseFilter restricts search results to databases.
var DatabaseFilter = SearchFilter{Property: "object", Value: "database"}

type SearchRequest struct {
	Query  string
	Filter SearchFilter
	Cursor *string
}

// SearchResult is one item returned by a search. Title holds the plain text
// of each rich-text run of the item's title.
type SearchResult struct {
	ID    string
	Title []string
}

type SearchPage struct {
	Results    []SearchResult
	NextCursor *string
}

// Searcher is the paginated search primitive of the external store.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (*SearchPage, error)
}

// ListSelectableDatabases collects every database matching query across all
// result pages and maps them to picker options, in the order the store
// returned them. A failed or empty page, a repeated cursor, or a cancelled
// context aborts the listing.
func ListSelectableDatabases(ctx context.Context, query string, searcher Searcher) ([]metadata.OptionPair, error) {
	ctx, span := instrument.GetInstrumenter(ctx).StartSpan(ctx, "engine", "search", "search.databases")
	defer span.End()

	var results []SearchResult
	var cursor *string
	pages := 0
	seen := map[string]bool{}
	fail := func(err error) ([]metadata.OptionPair, error) {
		span.SetStatus("error")
		span.SetMetadata("error", err.Error())
		return nil, fmt.Errorf("search page %d: %w", pages+1, err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		page, err := searcher.Search(ctx, SearchRequest{Query: query, Filter: DatabaseFilter, Cursor: cursor})
		if err != nil {
			return fail(err)
		}
		if page == nil {
			return fail(errEmptySearchPage)
		}
		pages++
		instrument.SearchPagesFetched.Inc()
		results = append(results, page.Results...)
		if page.NextCursor == nil {
			break
		}
		if seen[*page.NextCursor] {
			return fail(fmt.Errorf("%w %q", errRepeatedCursor, *page.NextCursor))
		}
		seen[*page.NextCursor] = true
		cursor = page.NextCursor
	}

	options := make([]metadata.OptionPair, len(results))
	for i, r := range results {
		options[i] = ToOption(Choice{ID: r.ID, Name: firstTitleRun(r.Title)})
	}

	span.SetMetadata("pages", pages)
	span.SetMetadata("results", len(options))
	span.SetStatus("ok")
	return options, nil
}

func firstTitleRun(runs []string) string {
	if len(runs) == 0 {
		return untitledDatabase
	}
	return runs[0]
}
