// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

// Package scrape extracts item and spell records from Archives of
// Nethys pages. A page's stat block is a flat run of nodes inside a
// span: bold labels ("Source", "CL", "Level") precede each value, and
// h3 headings open the longer sections. Extraction is a linear scan
// over that run with an early exit at the next marker; a missing
// marker drops the field with a warning and never aborts the record.
package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/bfield1/pfcards/internal/latex"
)

const (
	coreRulebook = "PRPG Core Rulebook"
	coreAbbrev   = "PF Core"
)

// statBlock returns the span holding the stat block: the first span
// within the page's first table.
func statBlock(doc *goquery.Document) (*goquery.Selection, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table in document: not a card page")
	}
	span := table.Find("span").First()
	if span.Length() == 0 {
		return nil, fmt.Errorf("no span within the first table: not a card page")
	}
	return span, nil
}

// statBlockNonEmpty behaves like statBlock but skips spans without
// content. Some spell pages lead with an empty span.
func statBlockNonEmpty(doc *goquery.Document) (*goquery.Selection, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table in document: not a card page")
	}
	spans := table.Find("span")
	for i := 0; i < spans.Length(); i++ {
		span := spans.Eq(i)
		if span.Nodes[0].FirstChild != nil {
			return span, nil
		}
	}
	return nil, fmt.Errorf("no non-empty span within the first table: not a card page")
}

// findMarker returns the first element with the given tag within
// region whose trimmed text equals text, or nil. Bold field labels and
// h3 section headings are both located this way.
func findMarker(region *goquery.Selection, tag, text string) *html.Node {
	var found *html.Node
	region.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(latex.Flatten(s.Nodes[0])) == text {
			found = s.Nodes[0]
			return false
		}
		return true
	})
	return found
}

// textAfter returns the text of the node immediately following the
// bold label, flattening it if it is an element. found is false only
// when the label itself is absent.
func textAfter(region *goquery.Selection, label string) (text string, found bool) {
	b := findMarker(region, "b", label)
	if b == nil {
		return "", false
	}
	n := b.NextSibling
	if n == nil {
		return "", true
	}
	return latex.Flatten(n), true
}

// siblingsUntil collects the sibling nodes following start, stopping
// at the first element whose tag is one of stops. stopped reports
// whether a stop tag was reached before the run ran out.
func siblingsUntil(start *html.Node, stops ...string) (nodes []*html.Node, stopped bool) {
	for n := start.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			for _, s := range stops {
				if n.Data == s {
					return nodes, true
				}
			}
		}
		nodes = append(nodes, n)
	}
	return nodes, false
}

// flattenNodes joins the text content of nodes. Inline icon markup
// reads as its text equivalent.
func flattenNodes(nodes []*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(latex.Flatten(n))
	}
	return sb.String()
}

// scanAfterLabel returns the flattened content between the bold label
// and the next stop tag. found is false when the label is absent.
func scanAfterLabel(region *goquery.Selection, label string, stops ...string) (text string, found bool) {
	b := findMarker(region, "b", label)
	if b == nil {
		return "", false
	}
	nodes, _ := siblingsUntil(b, stops...)
	return flattenNodes(nodes), true
}

// nextElement returns the first element node following n among its
// siblings, or nil.
func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// nameField reads the record name from the region's h1 heading.
func nameField(region *goquery.Selection, log *zap.Logger) string {
	h1 := region.Find("h1").First()
	if h1.Length() == 0 {
		log.Warn("name heading not found, skipping field",
			zap.String("field", "name"))
		return ""
	}
	return strings.TrimSpace(h1.Text())
}

// trimPageSuffix drops the " pg. N" tail a source citation carries
// when present.
func trimPageSuffix(s string) string {
	if i := strings.Index(s, " pg. "); i >= 0 {
		return s[:i]
	}
	return s
}

func warnMissingLabel(log *zap.Logger, label, field string) {
	log.Warn("label not found, skipping field",
		zap.String("label", label),
		zap.String("field", field))
}
