// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

// Package fetch retrieves card pages and parses them into documents.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"

	"github.com/bfield1/pfcards/pkg/types"
)

// ValidateURL checks that rawURL starts with one of the allowed
// prefixes. The extraction rules are written against one site's page
// layout; a page from anywhere else would scan to garbage, so the
// mismatch is rejected before any request goes out.
func ValidateURL(rawURL string, prefixes []string) error {
	for _, p := range prefixes {
		if strings.HasPrefix(rawURL, p) {
			return nil
		}
	}
	return fmt.Errorf("URL %q does not match an allowed prefix (%s)",
		rawURL, strings.Join(prefixes, ", "))
}

// NewClient builds the HTTP client used for page fetches.
func NewClient(cfg types.HTTPConfig) *resty.Client {
	return resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)
}

// Page fetches rawURL and parses the body into a document.
func Page(ctx context.Context, client *resty.Client, rawURL string) (*goquery.Document, error) {
	resp, err := client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", rawURL, resp.Status())
	}

	doc, err := Parse(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	return doc, nil
}

// detectCharset detects the charset of raw HTML bytes.
func detectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// Parse decodes raw HTML into a document with charset detection. The
// typographic dashes and quotes the escaping rules rewrite are exactly
// the characters a wrongly decoded page scrambles.
func Parse(data []byte) (*goquery.Document, error) {
	reader := bytes.NewReader(data)
	utf8Reader, err := charset.NewReader(reader, detectCharset(data))
	if err != nil {
		// Fall back to direct parsing.
		return goquery.NewDocumentFromReader(bytes.NewReader(data))
	}
	return goquery.NewDocumentFromReader(utf8Reader)
}
