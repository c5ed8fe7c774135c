// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/bfield1/pfcards/internal/abbrev"
	"github.com/bfield1/pfcards/internal/latex"
	"github.com/bfield1/pfcards/pkg/types"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// Item extracts a magic item record from doc. Fields whose markers are
// missing from the page are left empty and dropped from the JSON; only
// a page with no stat block at all is an error.
func Item(doc *goquery.Document, tbl *abbrev.Table, log *zap.Logger) (*types.ItemRecord, error) {
	region, err := statBlock(doc)
	if err != nil {
		return nil, err
	}

	rec := &types.ItemRecord{
		Name:        nameField(region, log),
		Source:      itemSource(region, tbl, log),
		Aura:        itemAura(region, log),
		CL:          itemCL(region, log),
		Slot:        itemSlot(region, log),
		Price:       itemPrice(region, log),
		Weight:      itemWeight(region, log),
		Description: itemDescription(region, log),
	}
	rec.Feat, rec.Spells, rec.OtherRequirements = itemConstruction(region, log)
	return rec, nil
}

// itemSource reads the text between the "Source " and "Aura" markers.
// Item pages render sources as plain text, so this scans the flattened
// region rather than the node run. The Core Rulebook wins over any
// other citation; otherwise the last citation is abbreviated.
func itemSource(region *goquery.Selection, tbl *abbrev.Table, log *zap.Logger) string {
	text := region.Text()

	start := strings.Index(text, "Source ")
	if start < 0 {
		log.Warn("marker not found, skipping field",
			zap.String("marker", "Source"),
			zap.String("field", "source"))
		return ""
	}
	start += len("Source ")

	end := strings.Index(text, "Aura")
	if end < start {
		log.Warn("marker not found, skipping field",
			zap.String("marker", "Aura"),
			zap.String("field", "source"))
		return ""
	}

	raw := text[start:end]
	if strings.Contains(raw, coreRulebook) {
		return coreAbbrev
	}
	citations := strings.Split(raw, ", ")
	return tbl.Abbreviate(trimPageSuffix(citations[len(citations)-1]))
}

func itemAura(region *goquery.Selection, log *zap.Logger) string {
	text := region.Text()

	start := strings.Index(text, "Aura ")
	if start < 0 {
		log.Warn("marker not found, skipping field",
			zap.String("marker", "Aura"),
			zap.String("field", "aura"))
		return ""
	}
	start += len("Aura ")

	end := strings.Index(text, "CL")
	if end < start {
		log.Warn("marker not found, skipping field",
			zap.String("marker", "CL"),
			zap.String("field", "aura"))
		return ""
	}
	return strings.Trim(text[start:end], " ;")
}

// itemCL keeps only the digits of the caster level, shedding the
// ordinal suffix and the trailing separator in one go.
func itemCL(region *goquery.Selection, log *zap.Logger) string {
	text, ok := textAfter(region, "CL")
	if !ok {
		warnMissingLabel(log, "CL", "cl")
		return ""
	}
	return nonDigits.ReplaceAllString(text, "")
}

func itemSlot(region *goquery.Selection, log *zap.Logger) string {
	text, ok := textAfter(region, "Slot")
	if !ok {
		warnMissingLabel(log, "Slot", "slot")
		return ""
	}
	slot := strings.TrimSuffix(strings.TrimSpace(text), ";")
	if slot == "—" {
		slot = "--"
	}
	return slot
}

// itemPrice scans to the next label rather than taking one node: a
// price like "4,000 gp (+1 bonus)" can span several nodes when part
// of it is marked up.
func itemPrice(region *goquery.Selection, log *zap.Logger) string {
	b := findMarker(region, "b", "Price")
	if b == nil {
		warnMissingLabel(log, "Price", "price")
		return ""
	}
	nodes, _ := siblingsUntil(b, "b", "h3")
	price := strings.TrimSpace(flattenNodes(nodes))
	return strings.TrimSuffix(price, ";")
}

func itemWeight(region *goquery.Selection, log *zap.Logger) string {
	text, ok := textAfter(region, "Weight")
	if !ok {
		warnMissingLabel(log, "Weight", "weight")
		return ""
	}
	weight := strings.Trim(text, " ;.")
	if weight == "—" {
		weight = "--"
	}
	return weight
}

// itemDescription renders everything between the Description heading
// and the next h3 as LaTeX. Item pages always close the section with
// the Construction heading; not finding one means the page layout has
// changed and the description likely absorbed trailing junk.
func itemDescription(region *goquery.Selection, log *zap.Logger) string {
	h3 := findMarker(region, "h3", "Description")
	if h3 == nil {
		log.Warn("heading not found, skipping field",
			zap.String("heading", "Description"),
			zap.String("field", "description"))
		return ""
	}
	nodes, stopped := siblingsUntil(h3, "h3")
	if !stopped {
		log.Warn("no heading closes the description section")
	}
	return latex.Render(nodes, log)
}

// itemConstruction splits the requirements run into crafting feats,
// spells, and everything else. Spells are the italicized stretch of
// the run; when nothing is italicized, the comma-separated entries
// split on whether they name a Craft or Forge feat.
func itemConstruction(region *goquery.Selection, log *zap.Logger) (feat, spells, others string) {
	h3 := findMarker(region, "h3", "Construction")
	if h3 == nil {
		log.Warn("heading not found, skipping requirements",
			zap.String("heading", "Construction"))
		return "", "", ""
	}

	label := nextElement(h3)
	if label == nil || label.Data != "b" {
		log.Warn("label not found, skipping requirements",
			zap.String("label", "Requirements"))
		return "", "", ""
	}

	nodes, _ := siblingsUntil(label, "b")

	texts := make([]string, len(nodes))
	first, last := -1, -1
	for i, n := range nodes {
		texts[i] = latex.Flatten(n)
		if n.Type == html.ElementNode && n.Data == "i" {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	if first < 0 {
		var featList, otherList []string
		for _, entry := range strings.Split(strings.Join(texts, ""), ", ") {
			if strings.Contains(entry, "Craft") || strings.Contains(entry, "Forge") {
				featList = append(featList, entry)
			} else {
				otherList = append(otherList, entry)
			}
		}
		feat = strings.Join(featList, ", ")
		others = strings.Join(otherList, ", ")
	} else {
		feat = strings.Join(texts[:first], "")
		spells = strings.Join(texts[first:last+1], "")
		others = strings.Join(texts[last+1:], "")
	}

	const edgePunct = " ,.;:"
	feat = strings.TrimSuffix(strings.Trim(feat, edgePunct), " and")
	spells = strings.Trim(spells, edgePunct)
	others = strings.Trim(others, edgePunct)

	return latex.Escape(feat), latex.Escape(spells), latex.Escape(others)
}
