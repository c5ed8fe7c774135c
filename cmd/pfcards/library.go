// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bfield1/pfcards/internal/library"
	"github.com/bfield1/pfcards/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the local card library (index, list, search, export)",
	Long: `Library manages a local SQLite index built from scraped card records.
Use subcommands to index record files, list or search the indexed cards,
or export the library.`,
}

// --- index subcommand ---

var libraryIndexCmd = &cobra.Command{
	Use:   "index [dir...]",
	Short: "Ingest card record files into the library",
	Long: `Index reads card record JSON files from the given directories (default:
the items/ and spells/ subdirectories of the library directory), ingests
them into a SQLite database with FTS5 indexing, and writes an export file.
Unchanged files are skipped on subsequent runs.`,
	RunE: runLibraryIndex,
}

func runLibraryIndex(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(libraryConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), args, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- list subcommand ---

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed cards",
	RunE:  runLibraryList,
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	opts, err := queryOptsFromFlags(cmd, nil)
	if err != nil {
		return err
	}

	store, err := library.NewStore(libraryConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatCards(results, jsonOutput)
}

// --- search subcommand ---

var librarySearchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search indexed cards with full-text search",
	Long: `Search queries the card index using FTS5 full-text search over card
names and record bodies. Results are ranked by relevance.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLibrarySearch,
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	store, err := library.NewStore(libraryConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatCards(results, jsonOutput)
}

// --- export subcommand ---

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the card library to YAML or JSON",
	RunE:  runLibraryExport,
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	opts, err := queryOptsFromFlags(cmd, nil)
	if err != nil {
		return err
	}

	cfg := libraryConfig(cmd)
	store, err := library.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(cfg.Dir, "index", "export.yaml"))
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(cfg.Dir, "index", "export.json"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func libraryConfig(cmd *cobra.Command) types.LibraryConfig {
	dir, _ := cmd.Flags().GetString("library-dir")
	if !cmd.Flags().Changed("library-dir") {
		if v := viper.GetString("library.dir"); v != "" {
			dir = v
		}
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	if !cmd.Flags().Changed("max-results") {
		if v := viper.GetInt("library.max_results"); v > 0 {
			maxResults = v
		}
	}

	return types.LibraryConfig{
		Dir:        dir,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) (library.QueryOptions, error) {
	kind, _ := cmd.Flags().GetString("kind")
	if kind != "" && kind != "item" && kind != "spell" {
		return library.QueryOptions{}, fmt.Errorf("unsupported kind %q: use item or spell", kind)
	}
	limit, _ := cmd.Flags().GetInt("limit")

	return library.QueryOptions{
		Query:      strings.Join(args, " "),
		Kind:       kind,
		MaxResults: limit,
	}, nil
}

func formatCards(results []library.Card, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No cards found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-5s  %-30s  %-24s  %s\n",
		"Rank", "Kind", "Name", "Source", "URL")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, card := range results {
		name := card.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		source := card.Source
		if len(source) > 24 {
			source = source[:21] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-5s  %-30s  %-24s  %s\n",
			i+1, card.Kind, name, source, card.URL)
	}

	fmt.Fprintf(os.Stdout, "\n%d cards\n", len(results))
	return nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	libraryCmd.PersistentFlags().String("library-dir", "cards", "base directory for cards (contains items/, spells/, index/)")
	libraryCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// List flags.
	libraryListCmd.Flags().String("kind", "", "filter by card kind: item or spell")
	libraryListCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	libraryListCmd.Flags().Bool("json", false, "output results as JSON")

	// Search flags.
	librarySearchCmd.Flags().String("kind", "", "filter by card kind: item or spell")
	librarySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	librarySearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	libraryExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	libraryExportCmd.Flags().String("kind", "", "filter by card kind for partial export")
	libraryExportCmd.Flags().Int("limit", 0, "maximum cards to export (0 = all)")

	// Wire subcommands.
	libraryCmd.AddCommand(libraryIndexCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(librarySearchCmd)
	libraryCmd.AddCommand(libraryExportCmd)

	rootCmd.AddCommand(libraryCmd)
}
