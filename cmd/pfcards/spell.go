package main

import (
	"github.com/spf13/cobra"

	"github.com/bfield1/pfcards/internal/fetch"
	"github.com/bfield1/pfcards/internal/scrape"
)

var spellCmd = &cobra.Command{
	Use:   "spell <url>",
	Short: "Scrape a spell page into a JSON card record",
	Long: `Spell fetches an Archives of Nethys spell page and extracts its stat
block into a JSON card record: source, school, class levels, casting time,
components, range, area or target or effect, duration, saving throw, and
spell resistance. Text fields arrive LaTeX-escaped, ready for card
typesetting.

The class level list is also condensed into a one-line summary, so a card
can show "3 (sor/wiz 4)" instead of the full class table. Fields whose
labels are missing from the page are omitted from the record; each omission
is reported on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runSpell,
}

func init() {
	spellCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	spellCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(spellCmd)
}

func runSpell(cmd *cobra.Command, args []string) error {
	cfg := scrapeConfig(cmd)
	if err := fetch.ValidateURL(args[0], cfg.AllowedPrefixes); err != nil {
		return err
	}

	client := fetch.NewClient(cfg.HTTPConfig)
	doc, err := fetch.Page(cmd.Context(), client, args[0])
	if err != nil {
		return err
	}

	tbl, err := abbrevTable()
	if err != nil {
		return err
	}
	rec, err := scrape.Spell(doc, tbl, logger)
	if err != nil {
		return err
	}
	rec.URL = args[0]

	output, _ := cmd.Flags().GetString("output")
	return writeRecord(rec, output)
}
