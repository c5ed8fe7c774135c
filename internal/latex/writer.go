// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

// Package latex renders fragments of parsed HTML as LaTeX text for the
// card templates. Only the markup that actually occurs in stat-block
// descriptions is translated (bold, italics, line breaks, lists,
// tables); anything else is flattened to plain text with a warning.
package latex

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Writer emits LaTeX for a fragment of HTML nodes.
type Writer struct {
	out io.Writer
	log *zap.Logger
}

// NewWriter returns a Writer emitting to out and reporting
// unrecognized markup on log.
func NewWriter(out io.Writer, log *zap.Logger) *Writer {
	return &Writer{out: out, log: log}
}

// Render converts a node fragment to a LaTeX string.
func Render(nodes []*html.Node, log *zap.Logger) string {
	var sb strings.Builder
	NewWriter(&sb, log).WriteFragment(nodes)
	return sb.String()
}

// WriteFragment walks the fragment's nodes in document order.
func (w *Writer) WriteFragment(nodes []*html.Node) {
	for _, n := range nodes {
		w.writeNode(n)
	}
}

func (w *Writer) writeNode(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		io.WriteString(w.out, Escape(n.Data))
	case html.ElementNode:
		w.writeElement(n)
	}
}

func (w *Writer) writeElement(n *html.Node) {
	switch n.Data {
	case "br":
		io.WriteString(w.out, `\\`)
	case "b":
		fmt.Fprintf(w.out, `\textbf{%s}`, Escape(Flatten(n)))
	case "i":
		fmt.Fprintf(w.out, `\textit{%s}`, Escape(Flatten(n)))
	case "ul":
		w.writeList(n)
	case "table":
		w.writeTable(n)
	default:
		w.log.Warn("unknown tag in fragment, using plain text",
			zap.String("tag", n.Data))
		io.WriteString(w.out, Escape(Flatten(n)))
	}
}

// writeBasicText renders a node whose children are plain text with at
// most bold or italic formatting (list items, table cells).
func (w *Writer) writeBasicText(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			io.WriteString(w.out, Escape(c.Data))
		case c.Type != html.ElementNode:
			// Comments and the like carry no card text.
		case c.Data == "b":
			fmt.Fprintf(w.out, `\textbf{%s}`, Escape(Flatten(c)))
		case c.Data == "i":
			fmt.Fprintf(w.out, `\textit{%s}`, Escape(Flatten(c)))
		default:
			w.log.Warn("unknown tag in basic text, using plain text",
				zap.String("tag", c.Data))
			io.WriteString(w.out, Escape(Flatten(c)))
		}
	}
}

// writeList renders a ul as its items separated by line breaks, with a
// break on each side of the block. Cards are small; an itemize
// environment wastes vertical space an item list does not need.
func (w *Writer) writeList(n *html.Node) {
	io.WriteString(w.out, `\\`)
	first := true
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if !first {
			io.WriteString(w.out, `\\`)
		}
		w.writeBasicText(c)
		first = false
	}
	io.WriteString(w.out, `\\`)
}

// writeTable renders a table as a centered-column tabular block. The
// column count comes from the first row's cell count; every row,
// header included, is terminated by a row break.
func (w *Writer) writeTable(n *html.Node) {
	rows := tableRows(n)
	if len(rows) == 0 {
		w.log.Warn("table with no rows in fragment")
		return
	}

	ncols := 0
	for c := rows[0].FirstChild; c != nil; c = c.NextSibling {
		if isCell(c) {
			ncols++
		}
	}
	fmt.Fprintf(w.out, `\begin{tabular}{%s}`, strings.Repeat("c", ncols))

	for _, row := range rows {
		first := true
		for c := row.FirstChild; c != nil; c = c.NextSibling {
			if !isCell(c) {
				continue
			}
			if !first {
				io.WriteString(w.out, "&")
			}
			w.writeBasicText(c)
			first = false
		}
		io.WriteString(w.out, `\\`)
	}

	io.WriteString(w.out, `\end{tabular}`)
}

func isCell(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th")
}

// tableRows collects the tr elements under a table, looking through
// the thead/tbody/tfoot grouping the HTML parser inserts.
func tableRows(n *html.Node) []*html.Node {
	var rows []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "tr":
			rows = append(rows, c)
		case "thead", "tbody", "tfoot":
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.Data == "tr" {
					rows = append(rows, r)
				}
			}
		}
	}
	return rows
}

// Flatten returns the concatenated text content of a node's subtree,
// the plain-text fallback used for icons and unrecognized markup.
func Flatten(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(Flatten(c))
	}
	return sb.String()
}
