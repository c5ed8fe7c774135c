// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

package scrape

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bfield1/pfcards/internal/abbrev"
)

// LevelSummary compresses a class-to-level map into the short string
// printed on a card. Every class at one level gives the bare level. A
// level held by at least half the classes, strictly ahead of the
// runner-up, becomes the headline with the exceptions parenthesized;
// otherwise all the groups are spelled out. Within a group the class
// abbreviations are sorted and joined with slashes.
func LevelSummary(classes map[string]int, tbl *abbrev.Table) string {
	if len(classes) == 0 {
		return ""
	}

	counts := map[int]int{}
	for _, level := range classes {
		counts[level]++
	}

	levels := make([]int, 0, len(counts))
	for level := range counts {
		levels = append(levels, level)
	}
	// Falling frequency, ties broken by rising level.
	sort.Slice(levels, func(i, j int) bool {
		if counts[levels[i]] != counts[levels[j]] {
			return counts[levels[i]] > counts[levels[j]]
		}
		return levels[i] < levels[j]
	})

	if len(levels) == 1 {
		return strconv.Itoa(levels[0])
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	main := -1
	if 2*counts[levels[0]] >= total && counts[levels[0]] > counts[levels[1]] {
		main = levels[0]
		levels = levels[1:]
	}

	groups := make([]string, 0, len(levels))
	for _, level := range levels {
		var names []string
		for class, l := range classes {
			if l == level {
				names = append(names, tbl.Abbreviate(class))
			}
		}
		sort.Strings(names)
		groups = append(groups, fmt.Sprintf("%s %d", strings.Join(names, "/"), level))
	}

	summary := strings.Join(groups, ", ")
	if main >= 0 {
		return fmt.Sprintf("%d (%s)", main, summary)
	}
	return summary
}
