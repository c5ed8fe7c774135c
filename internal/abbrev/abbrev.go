// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

// Package abbrev maps canonical rulebook and caster-class names to the
// short codes printed on cards.
package abbrev

import (
	_ "embed"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
)

//go:embed abbreviations.yaml
var embedded []byte

// Table is a read-only name-to-code lookup, built once at startup and
// injected into the extraction functions. An unknown name passes
// through unchanged with a diagnostic, so a missing entry never loses
// data.
type Table struct {
	codes map[string]string
	log   *zap.Logger
}

// New builds the Table from the embedded list, with entries from extra
// (the "abbreviations" config key) merged over it. Keys are folded to
// lower case; viper lowercases config map keys, and the merged entries
// must still match the mixed-case names scraped from pages.
func New(log *zap.Logger, extra map[string]string) (*Table, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(embedded, &raw); err != nil {
		return nil, fmt.Errorf("parsing embedded abbreviations: %w", err)
	}
	codes := make(map[string]string, len(raw)+len(extra))
	for name, code := range raw {
		codes[strings.ToLower(name)] = code
	}
	for name, code := range extra {
		codes[strings.ToLower(name)] = code
	}
	return &Table{codes: codes, log: log}, nil
}

// NewFromMap builds a Table containing exactly the given entries.
func NewFromMap(codes map[string]string, log *zap.Logger) *Table {
	m := make(map[string]string, len(codes))
	for name, code := range codes {
		m[strings.ToLower(name)] = code
	}
	return &Table{codes: m, log: log}
}

// Abbreviate returns the short code for name, or name itself when no
// entry exists. Matching ignores case.
func (t *Table) Abbreviate(name string) string {
	if code, ok := t.codes[strings.ToLower(name)]; ok {
		return code
	}
	t.log.Warn("no abbreviation for name, passing through",
		zap.String("name", name))
	return name
}
