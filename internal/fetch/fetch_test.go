// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfield1/pfcards/pkg/types"
)

func testConfig() types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:   5 * time.Second,
		UserAgent: "pfcards-test/0.1",
	}
}

func TestValidateURL(t *testing.T) {
	prefixes := []string{"https://aonprd.com/", "https://www.aonprd.com/"}

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"bare host", "https://aonprd.com/MagicWondrousDisplay.aspx?FinalName=Bag+of+Holding", false},
		{"www host", "https://www.aonprd.com/SpellDisplay.aspx?ItemName=Fireball", false},
		{"wrong site", "https://example.com/SpellDisplay.aspx", true},
		{"http downgrade", "http://aonprd.com/SpellDisplay.aspx", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, prefixes)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPage(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><body><table><span><h1>Bag of Holding</h1></span></table></body></html>`))
	}))
	defer server.Close()

	client := NewClient(testConfig())
	doc, err := Page(context.Background(), client, server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Bag of Holding", doc.Find("h1").Text())
	assert.Equal(t, "pfcards-test/0.1", gotUserAgent)
}

func TestPageNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(testConfig())
	_, err := Page(context.Background(), client, server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestParseKeepsTypographicCharacters(t *testing.T) {
	// The dashes and quotes the LaTeX escaping rewrites must survive
	// decoding intact.
	page := `<html><body><p>Beyond 50% — the bearer’s “luck” holds – barely.</p></body></html>`

	doc, err := Parse([]byte(page))
	require.NoError(t, err)

	text := doc.Find("p").Text()
	assert.Contains(t, text, "—")
	assert.Contains(t, text, "’")
	assert.Contains(t, text, "“")
	assert.Contains(t, text, "–")
}
