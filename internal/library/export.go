// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

package library

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds an indexed card with its full record for export.
type ExportEntry struct {
	ID     string `json:"id" yaml:"id"`
	Kind   string `json:"kind" yaml:"kind"`
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`

	// Record is the scraped record as written to the card file.
	Record map[string]any `json:"record,omitempty" yaml:"record,omitempty"`
}

const exportLimit = 100000

// ExportYAML writes the library to libraryDir/index/export.yaml. It
// supports the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.libraryDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the library to libraryDir/index/export.json. It
// supports the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.libraryDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, card := range results {
		entries[i] = ExportEntry{
			ID:     card.ID,
			Kind:   card.Kind,
			Name:   card.Name,
			Source: card.Source,
			URL:    card.URL,
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(card.Data), &record); err == nil {
			entries[i].Record = record
		}
	}

	return entries, nil
}
