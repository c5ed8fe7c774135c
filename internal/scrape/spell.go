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

var (
	componentComma = regexp.MustCompile(`([VSMF)]), `)
	componentParen = regexp.MustCompile(`([MF]) \(`)
	levelWord      = regexp.MustCompile(`levels?`)
	feetUnit       = regexp.MustCompile(`[ -]ft\.`)
	minutesWord    = regexp.MustCompile(`minutes?`)
)

// Spell extracts a spell record from doc. As with items, missing
// markers drop their fields with a warning; save and spell resistance
// default instead, since personal spells omit those lines entirely.
func Spell(doc *goquery.Document, tbl *abbrev.Table, log *zap.Logger) (*types.SpellRecord, error) {
	region, err := statBlockNonEmpty(doc)
	if err != nil {
		return nil, err
	}

	rec := &types.SpellRecord{
		Name:        nameField(region, log),
		Source:      spellSource(region, tbl, log),
		School:      spellSchool(region, log),
		Time:        spellTime(region, log),
		Components:  spellComponents(region, log),
		Range:       spellRange(region, log),
		Save:        spellSave(region),
		SR:          spellSR(region),
		Description: spellDescription(region, log),
	}

	rec.Classes = spellClasses(region, log)
	if len(rec.Classes) > 0 {
		rec.Level = LevelSummary(rec.Classes, tbl)
	}

	area, areaOK := ateField(region, "Area")
	target, targetOK := ateField(region, "Target")
	if !targetOK {
		target, targetOK = ateField(region, "Targets")
	}
	effect, effectOK := ateField(region, "Effect")
	if !areaOK && !targetOK && !effectOK {
		log.Warn("no area, target, or effect found")
	}
	rec.Area, rec.Target, rec.Effect = area, target, effect

	rec.Duration = spellDuration(region, log)
	return rec, nil
}

// spellSource collects the linked citations after the Source label.
// Spell pages link every source, so anything unlinked in the run is
// navigation noise. The Core Rulebook wins; otherwise the first
// citation is abbreviated.
func spellSource(region *goquery.Selection, tbl *abbrev.Table, log *zap.Logger) string {
	b := findMarker(region, "b", "Source")
	if b == nil {
		warnMissingLabel(log, "Source", "source")
		return ""
	}

	var citations []string
	nodes, _ := siblingsUntil(b, "b")
	for _, n := range nodes {
		if n.Type == html.ElementNode && n.Data == "a" {
			citations = append(citations, latex.Flatten(n))
		}
	}
	if len(citations) == 0 {
		log.Warn("no source links found, skipping field",
			zap.String("field", "source"))
		return ""
	}
	if strings.Contains(strings.Join(citations, ""), coreRulebook) {
		return coreAbbrev
	}
	return tbl.Abbreviate(trimPageSuffix(citations[0]))
}

// spellSchool reads the school, subschool, and descriptor run. The
// value is respaced from scratch because the markup splits it across
// links and parentheses with erratic whitespace.
func spellSchool(region *goquery.Selection, log *zap.Logger) string {
	text, ok := scanAfterLabel(region, "School", "b")
	if !ok {
		warnMissingLabel(log, "School", "school")
		return ""
	}
	school := strings.Trim(text, " ;")
	school = strings.ReplaceAll(school, " ", "")
	school = strings.ReplaceAll(school, "seetext", "see text")
	return strings.ReplaceAll(school, ",", ", ")
}

// spellClasses parses the Level line into a class-to-level map. Each
// comma-separated entry ends in a single digit; entries that do not
// are skipped with a warning rather than poisoning the record.
func spellClasses(region *goquery.Selection, log *zap.Logger) map[string]int {
	text, ok := textAfter(region, "Level")
	if !ok {
		warnMissingLabel(log, "Level", "classes")
		return nil
	}

	classes := map[string]int{}
	for _, entry := range strings.Split(text, ",") {
		runes := []rune(entry)
		if len(runes) == 0 || runes[len(runes)-1] < '0' || runes[len(runes)-1] > '9' {
			log.Warn("malformed class entry, skipping",
				zap.String("entry", entry))
			continue
		}
		name := strings.TrimSpace(string(runes[:len(runes)-1]))
		classes[name] = int(runes[len(runes)-1] - '0')
	}
	if len(classes) == 0 {
		return nil
	}
	return classes
}

func spellTime(region *goquery.Selection, log *zap.Logger) string {
	text, ok := textAfter(region, "Casting Time")
	if !ok {
		warnMissingLabel(log, "Casting Time", "time")
		return ""
	}
	return latex.Escape(strings.Trim(text, " ;."))
}

// spellComponents tightens the component list: no space after the
// component letters' commas, none before a material cost parenthesis,
// and gp and lb units glued to their numbers.
func spellComponents(region *goquery.Selection, log *zap.Logger) string {
	text, ok := textAfter(region, "Components")
	if !ok {
		warnMissingLabel(log, "Components", "components")
		return ""
	}
	comp := latex.Escape(strings.Trim(text, " ;."))
	comp = componentComma.ReplaceAllString(comp, "${1},")
	comp = componentParen.ReplaceAllString(comp, "${1}(")
	comp = strings.ReplaceAll(comp, " gp", "gp")
	comp = strings.ReplaceAll(comp, " lbs.", "lb")
	return comp
}

// spellRange collapses the standard range bands to their bare word;
// the card template knows what close, medium, and long mean. Fixed
// ranges keep their number with the ft unit glued on.
func spellRange(region *goquery.Selection, log *zap.Logger) string {
	text, ok := textAfter(region, "Range")
	if !ok {
		warnMissingLabel(log, "Range", "range")
		return ""
	}
	rng := latex.Escape(strings.Trim(text, " ;."))
	for _, band := range []string{"close", "medium", "long"} {
		if strings.HasPrefix(rng, band) {
			return band
		}
	}
	rng = strings.ReplaceAll(rng, " ft.", "ft")
	return strings.ReplaceAll(rng, " ft", "ft")
}

// ateField reads one of the Area, Target, Effect, or Duration values,
// which share their compaction rules. Absence is silent; the caller
// decides whether it matters.
func ateField(region *goquery.Selection, label string) (string, bool) {
	text, ok := textAfter(region, label)
	if !ok {
		return "", false
	}
	s := latex.Escape(strings.Trim(text, " ;."))
	s = levelWord.ReplaceAllString(s, "lvl")
	s = strings.ReplaceAll(s, " per ", "/")
	s = feetUnit.ReplaceAllString(s, "ft")
	s = strings.ReplaceAll(s, " lbs.", "lb")
	return s, true
}

func spellDuration(region *goquery.Selection, log *zap.Logger) string {
	s, ok := ateField(region, "Duration")
	if !ok {
		warnMissingLabel(log, "Duration", "duration")
		return ""
	}
	s = strings.ReplaceAll(s, "min.", "min")
	return minutesWord.ReplaceAllString(s, "min")
}

// spellSave reads the saving throw line, defaulting to "none": spells
// without one simply leave the line off the page.
func spellSave(region *goquery.Selection) string {
	text, ok := textAfter(region, "Saving Throw")
	if !ok {
		return "none"
	}
	save := strings.Trim(text, " ;.")
	save = strings.ReplaceAll(save, "Reflex", "Ref")
	return strings.ReplaceAll(save, "Fortitude", "Fort")
}

func spellSR(region *goquery.Selection) string {
	text, ok := textAfter(region, "Spell Resistance")
	if !ok {
		return "no"
	}
	return strings.Trim(text, " ;.")
}

// spellDescription renders everything from the Description heading to
// the next heading of any rank. Spell pages tack related ritual or
// mythic blocks on under their own headings.
func spellDescription(region *goquery.Selection, log *zap.Logger) string {
	h3 := findMarker(region, "h3", "Description")
	if h3 == nil {
		log.Warn("heading not found, skipping field",
			zap.String("heading", "Description"),
			zap.String("field", "description"))
		return ""
	}
	nodes, _ := siblingsUntil(h3, "h1", "h2", "h3")
	return latex.Render(nodes, log)
}
