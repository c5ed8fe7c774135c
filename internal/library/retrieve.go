// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

package library

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for library queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// Kind filters by record kind: "item" or "spell".
	Kind string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Card is one indexed record.
type Card struct {
	ID     string `json:"id" yaml:"id"`
	Kind   string `json:"kind" yaml:"kind"`
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`

	// Data is the raw record JSON as scraped.
	Data string `json:"-" yaml:"-"`
}

// Retrieve queries the library with optional full-text search and a
// kind filter. Results are ranked by relevance for full-text queries
// and sorted by kind and name otherwise.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]Card, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT c.id, c.kind, c.name, c.source, c.url, c.data
			FROM cards_fts
			JOIN cards c ON c.rowid = cards_fts.rowid
			WHERE cards_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT c.id, c.kind, c.name, c.source, c.url, c.data
			FROM cards c
			WHERE 1=1`)
	}

	if opts.Kind != "" {
		qb.WriteString(` AND c.kind = ?`)
		args = append(args, opts.Kind)
	}

	if useFTS {
		qb.WriteString(` ORDER BY cards_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY c.kind, c.name`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	defer rows.Close()

	var results []Card
	for rows.Next() {
		var (
			card   Card
			source sql.NullString
			url    sql.NullString
		)
		if err := rows.Scan(&card.ID, &card.Kind, &card.Name, &source, &url, &card.Data); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		card.Source = source.String
		card.URL = url.String
		results = append(results, card)
	}

	return results, rows.Err()
}
