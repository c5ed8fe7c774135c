// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/adnsv/go-utils/fs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bfield1/pfcards/internal/abbrev"
	"github.com/bfield1/pfcards/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "pfcards/0.1"
)

// defaultPrefixes lists the URL prefixes a scrape may target unless the
// config overrides them.
var defaultPrefixes = []string{
	"https://aonprd.com/",
	"https://www.aonprd.com/",
}

// scrapeConfig resolves scrape settings from flags, then config, then
// defaults.
func scrapeConfig(cmd *cobra.Command) types.ScrapeConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("http.timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	userAgent := viper.GetString("http.user_agent")
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	prefixes := viper.GetStringSlice("allowed_prefixes")
	if len(prefixes) == 0 {
		prefixes = defaultPrefixes
	}

	return types.ScrapeConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: userAgent,
		},
		AllowedPrefixes: prefixes,
	}
}

// abbrevTable builds the abbreviation table, merging any user-defined
// abbreviations from the config over the embedded defaults.
func abbrevTable() (*abbrev.Table, error) {
	extra := viper.GetStringMapString("abbreviations")
	return abbrev.New(logger, extra)
}

// writeRecord renders a card record as indented JSON. An empty path writes
// to stdout; otherwise the file is only touched when its content changed,
// so re-scrapes do not churn mtimes.
func writeRecord(rec any, path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	if path == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := fs.WriteFileIfChanged(path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}
