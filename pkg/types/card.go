// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

package types

// ItemRecord is the JSON document produced for one magic item page.
// Every string is LaTeX-safe: the card templates paste these values
// straight into TeX source. Fields whose markers were missing from
// the page are omitted rather than emitted empty.
type ItemRecord struct {
	// Name is the item name from the page heading.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Source is the abbreviated rulebook citation.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Aura is the magic aura line, e.g. "moderate conjuration".
	Aura string `json:"aura,omitempty" yaml:"aura,omitempty"`

	// CL is the caster level, digits only.
	CL string `json:"cl,omitempty" yaml:"cl,omitempty"`

	// Slot is the body slot the item occupies, "--" for none.
	Slot string `json:"slot,omitempty" yaml:"slot,omitempty"`

	// Price is the market price, unit included.
	Price string `json:"price,omitempty" yaml:"price,omitempty"`

	// Weight is the item weight, "--" for negligible.
	Weight string `json:"weight,omitempty" yaml:"weight,omitempty"`

	// Description is the description section rendered as LaTeX.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Feat names the crafting feat(s) from the construction
	// requirements.
	Feat string `json:"feat,omitempty" yaml:"feat,omitempty"`

	// Spells lists the spells required for construction.
	Spells string `json:"spells,omitempty" yaml:"spells,omitempty"`

	// OtherRequirements carries whatever the requirements line lists
	// beyond feats and spells, such as a skill rank or creator level.
	OtherRequirements string `json:"other_requirements,omitempty" yaml:"other_requirements,omitempty"`

	// URL is the page the record was scraped from.
	URL string `json:"url" yaml:"url"`
}

// SpellRecord is the JSON document produced for one spell page.
// The same LaTeX-safety and omission rules as ItemRecord apply, with
// two exceptions: Save and SR default instead of being omitted,
// because pages drop those lines when the answer is "none" and "no".
type SpellRecord struct {
	// Name is the spell name from the page heading.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Source is the abbreviated rulebook citation.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// School is the magic school with subschool and descriptors,
	// e.g. "evocation(fire)".
	School string `json:"school,omitempty" yaml:"school,omitempty"`

	// Classes maps each casting class to its spell level.
	Classes map[string]int `json:"classes,omitempty" yaml:"classes,omitempty"`

	// Level is the one-line summary of Classes, e.g. "1 (bar 2)".
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Time is the casting time.
	Time string `json:"time,omitempty" yaml:"time,omitempty"`

	// Components is the tightened component list,
	// e.g. "V,S,M(a lump of alum)".
	Components string `json:"components,omitempty" yaml:"components,omitempty"`

	// Range is the range band or a fixed distance, e.g. "close" or
	// "60ft".
	Range string `json:"range,omitempty" yaml:"range,omitempty"`

	// Area, Target, and Effect are the targeting lines; a spell
	// carries whichever subset its page shows.
	Area   string `json:"area,omitempty" yaml:"area,omitempty"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	Effect string `json:"effect,omitempty" yaml:"effect,omitempty"`

	// Duration is the compacted duration, e.g. "1 min/lvl".
	Duration string `json:"duration,omitempty" yaml:"duration,omitempty"`

	// Save is the saving throw line, "none" when the page has no
	// such line.
	Save string `json:"save" yaml:"save"`

	// SR is the spell resistance line, "no" when the page has no
	// such line.
	SR string `json:"sr" yaml:"sr"`

	// Description is the description section rendered as LaTeX.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// URL is the page the record was scraped from.
	URL string `json:"url" yaml:"url"`
}
