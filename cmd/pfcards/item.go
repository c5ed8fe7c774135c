package main

import (
	"github.com/spf13/cobra"

	"github.com/bfield1/pfcards/internal/fetch"
	"github.com/bfield1/pfcards/internal/scrape"
)

var itemCmd = &cobra.Command{
	Use:   "item <url>",
	Short: "Scrape a magic item page into a JSON card record",
	Long: `Item fetches an Archives of Nethys magic item page and extracts its
stat block into a JSON card record: source, aura, caster level, slot, price,
weight, description, and construction requirements. Text fields arrive
LaTeX-escaped, ready for card typesetting.

Fields whose labels are missing from the page are omitted from the record;
each omission is reported on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runItem,
}

func init() {
	itemCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	itemCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(itemCmd)
}

func runItem(cmd *cobra.Command, args []string) error {
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
	rec, err := scrape.Item(doc, tbl, logger)
	if err != nil {
		return err
	}
	rec.URL = args[0]

	output, _ := cmd.Flags().GetString("output")
	return writeRecord(rec, output)
}
