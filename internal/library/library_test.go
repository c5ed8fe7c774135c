package library

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/bfield1/pfcards/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()
	cardsDir := filepath.Join(tmpDir, "cards")

	for _, dir := range []string{
		filepath.Join(cardsDir, itemsDir),
		filepath.Join(cardsDir, spellsDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	cfg := types.LibraryConfig{Dir: cardsDir, MaxResults: 20}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, cardsDir
}

func writeCard(t *testing.T, dir, name string, rec any) string {
	t.Helper()
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, slugify(name)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleItem(name string) types.ItemRecord {
	return types.ItemRecord{
		Name:        name,
		Source:      "PF Core",
		Aura:        "moderate conjuration",
		CL:          "9",
		Slot:        "--",
		Price:       "2,500 gp",
		Weight:      "15 lbs",
		Description: "This appears to be a common cloth sack.",
		Feat:        "Craft Wondrous Item",
		Spells:      "secret chest",
		URL:         "https://aonprd.com/MagicWondrousDisplay.aspx?FinalName=" + strings.ReplaceAll(name, " ", "+"),
	}
}

func sampleSpell(name string) types.SpellRecord {
	return types.SpellRecord{
		Name:        name,
		Source:      "PF Core",
		School:      "evocation[fire]",
		Classes:     map[string]int{"sorcerer": 3, "wizard": 3},
		Level:       "3",
		Time:        "1 standard action",
		Components:  "V,S,M(a ball of bat guano and sulfur)",
		Range:       "long",
		Area:        "20ft-radius spread",
		Duration:    "instantaneous",
		Save:        "Ref half",
		SR:          "yes",
		Description: "A searing explosion of flame.",
		URL:         "https://aonprd.com/SpellDisplay.aspx?ItemName=" + strings.ReplaceAll(name, " ", "+"),
	}
}

// ingestHelper writes one item and one spell card, then ingests.
func ingestHelper(t *testing.T, store *Store, cardsDir string) {
	t.Helper()
	writeCard(t, filepath.Join(cardsDir, itemsDir), "Bag of Holding", sampleItem("Bag of Holding"))
	writeCard(t, filepath.Join(cardsDir, spellsDir), "Fireball", sampleSpell("Fireball"))
	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), nil, &buf); err != nil {
		t.Fatal(err)
	}
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store, _ := testSetup(t)

	tables := []string{"cards", "cards_fts", "indexing_status"}
	for _, table := range tables {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	tmpDir := t.TempDir()
	cardsDir := filepath.Join(tmpDir, "cards")

	store, err := NewStore(types.LibraryConfig{Dir: cardsDir})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	dbPath := filepath.Join(cardsDir, indexDir, dbFile)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}
}

// --- ingest tests ---

func TestIngest(t *testing.T) {
	store, cardsDir := testSetup(t)

	writeCard(t, filepath.Join(cardsDir, itemsDir), "Bag of Holding", sampleItem("Bag of Holding"))
	writeCard(t, filepath.Join(cardsDir, itemsDir), "Cloak of Resistance", sampleItem("Cloak of Resistance"))
	writeCard(t, filepath.Join(cardsDir, spellsDir), "Fireball", sampleSpell("Fireball"))

	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), nil, &buf)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Indexed != 3 {
		t.Errorf("Indexed = %d, want 3", summary.Indexed)
	}
	if summary.Failed != 0 {
		t.Errorf("Failed = %d, want 0; output: %s", summary.Failed, buf.String())
	}
	if !strings.Contains(buf.String(), "indexed: 3") {
		t.Errorf("output should contain 'indexed: 3': %s", buf.String())
	}
}

func TestIngestStoresCardFields(t *testing.T) {
	store, cardsDir := testSetup(t)
	ingestHelper(t, store, cardsDir)

	results, err := store.Retrieve(context.Background(), QueryOptions{Kind: "item"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	card := results[0]
	if card.ID != "item/bag-of-holding" {
		t.Errorf("ID = %q, want %q", card.ID, "item/bag-of-holding")
	}
	if card.Kind != "item" {
		t.Errorf("Kind = %q, want %q", card.Kind, "item")
	}
	if card.Name != "Bag of Holding" {
		t.Errorf("Name = %q", card.Name)
	}
	if card.Source != "PF Core" {
		t.Errorf("Source = %q", card.Source)
	}
	if !strings.Contains(card.URL, "Bag+of+Holding") {
		t.Errorf("URL = %q", card.URL)
	}
	if !strings.Contains(card.Data, "common cloth sack") {
		t.Errorf("Data should carry the record JSON: %q", card.Data)
	}
}

func TestIngestSkipsUnchanged(t *testing.T) {
	store, cardsDir := testSetup(t)
	ingestHelper(t, store, cardsDir)

	// Second ingestion without modifying the files.
	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), nil, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", summary.Skipped)
	}
	if summary.Indexed != 0 {
		t.Errorf("Indexed = %d, want 0", summary.Indexed)
	}
	if !strings.Contains(buf.String(), "skipped") {
		t.Errorf("output should contain 'skipped': %s", buf.String())
	}
}

func TestIngestUpdatesChanged(t *testing.T) {
	store, cardsDir := testSetup(t)
	ingestHelper(t, store, cardsDir)

	// Rewrite the item with new content and a newer mod time.
	rec := sampleItem("Bag of Holding")
	rec.Aura = "strong conjuration"
	path := writeCard(t, filepath.Join(cardsDir, itemsDir), "Bag of Holding", rec)

	future := time.Now().Add(time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), nil, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 {
		t.Errorf("Updated = %d, want 1", summary.Updated)
	}

	// Verify the old row is gone and the new content is in place.
	results, err := store.Retrieve(context.Background(), QueryOptions{Kind: "item"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (old row should be replaced)", len(results))
	}
	if !strings.Contains(results[0].Data, "strong conjuration") {
		t.Errorf("data not updated: %q", results[0].Data)
	}
}

func TestIngestFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"invalid JSON", `{not json`, "parse error"},
		{"missing name", `{"description": "mystery", "url": "https://aonprd.com/x"}`, "no name"},
		{"unknown kind", `{"name": "Mystery", "description": "?", "url": "https://aonprd.com/x"}`, "cannot tell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cardsDir := testSetup(t)
			path := filepath.Join(cardsDir, itemsDir, "broken.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			var buf strings.Builder
			summary, err := store.Ingest(context.Background(), nil, &buf)
			if err != nil {
				t.Fatal(err)
			}
			if summary.Failed != 1 {
				t.Errorf("Failed = %d, want 1", summary.Failed)
			}
			if !strings.Contains(buf.String(), tt.wantMsg) {
				t.Errorf("output should contain %q: %s", tt.wantMsg, buf.String())
			}
		})
	}
}

func TestIngestMissingDirIsNotFatal(t *testing.T) {
	store, _ := testSetup(t)

	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), []string{"/no/such/directory"}, &buf)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Total() != 0 {
		t.Errorf("Total = %d, want 0", summary.Total())
	}
	if !strings.Contains(buf.String(), "skipping") {
		t.Errorf("output should note the missing directory: %s", buf.String())
	}
}

func TestIngestWritesExportYAML(t *testing.T) {
	store, cardsDir := testSetup(t)
	ingestHelper(t, store, cardsDir)

	path := filepath.Join(cardsDir, indexDir, "export.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("export.yaml not written after ingestion")
	}
}

// --- retrieve tests ---

func TestRetrieveFullTextSearch(t *testing.T) {
	store, cardsDir := testSetup(t)
	ingestHelper(t, store, cardsDir)

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantName  string
	}{
		{"item term", "cloth", 1, "Bag of Holding"},
		{"spell term", "guano", 1, "Fireball"},
		{"name term", "fireball", 1, "Fireball"},
		{"no match", "xyzzy", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Retrieve(context.Background(), QueryOptions{Query: tt.query})
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != tt.wantCount {
				t.Fatalf("got %d results, want %d", len(results), tt.wantCount)
			}
			if tt.wantName != "" && results[0].Name != tt.wantName {
				t.Errorf("Name = %q, want %q", results[0].Name, tt.wantName)
			}
		})
	}
}

func TestRetrieveByKind(t *testing.T) {
	store, cardsDir := testSetup(t)
	ingestHelper(t, store, cardsDir)

	for _, kind := range []string{"item", "spell"} {
		results, err := store.Retrieve(context.Background(), QueryOptions{Kind: kind})
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 1 {
			t.Fatalf("kind %s: got %d results, want 1", kind, len(results))
		}
		if results[0].Kind != kind {
			t.Errorf("Kind = %q, want %q", results[0].Kind, kind)
		}
	}
}

func TestRetrieveRespectsMaxResults(t *testing.T) {
	store, cardsDir := testSetup(t)

	for _, name := range []string{"Amulet", "Bracers", "Cloak", "Dagger"} {
		writeCard(t, filepath.Join(cardsDir, itemsDir), name, sampleItem(name))
	}
	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), nil, &buf); err != nil {
		t.Fatal(err)
	}

	results, err := store.Retrieve(context.Background(), QueryOptions{MaxResults: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) > 2 {
		t.Errorf("got %d results, want <= 2", len(results))
	}
}

func TestRetrieveOrdersByKindAndName(t *testing.T) {
	store, cardsDir := testSetup(t)

	writeCard(t, filepath.Join(cardsDir, spellsDir), "Shield", sampleSpell("Shield"))
	writeCard(t, filepath.Join(cardsDir, itemsDir), "Cloak", sampleItem("Cloak"))
	writeCard(t, filepath.Join(cardsDir, itemsDir), "Amulet", sampleItem("Amulet"))
	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), nil, &buf); err != nil {
		t.Fatal(err)
	}

	results, err := store.Retrieve(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, card := range results {
		got = append(got, card.Name)
	}
	want := []string{"Amulet", "Cloak", "Shield"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("results[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// --- export tests ---

func TestExportYAML(t *testing.T) {
	store, cardsDir := testSetup(t)
	ingestHelper(t, store, cardsDir)

	if err := store.ExportYAML(context.Background(), QueryOptions{}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(cardsDir, indexDir, "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var entries []ExportEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, entry := range entries {
		if entry.Record == nil {
			t.Errorf("entry %s missing record", entry.ID)
			continue
		}
		if entry.Record["name"] != entry.Name {
			t.Errorf("record name = %v, want %q", entry.Record["name"], entry.Name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	store, cardsDir := testSetup(t)
	ingestHelper(t, store, cardsDir)

	if err := store.ExportJSON(context.Background(), QueryOptions{Kind: "spell"}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(cardsDir, indexDir, "export.json"))
	if err != nil {
		t.Fatal(err)
	}
	var entries []ExportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Kind != "spell" {
		t.Errorf("Kind = %q, want spell", entries[0].Kind)
	}
}

// --- helper tests ---

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bag of Holding (Type I)", "bag-of-holding-type-i"},
		{"Bear's Endurance", "bears-endurance"},
		{"Protection from Evil", "protection-from-evil"},
		{"+1 Flaming Burst", "1-flaming-burst"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   string
	}{
		{"spell by sr", map[string]any{"sr": "no"}, "spell"},
		{"spell by school", map[string]any{"school": "evocation"}, "spell"},
		{"item by aura", map[string]any{"aura": "faint"}, "item"},
		{"item by slot", map[string]any{"slot": "--"}, "item"},
		{"unknown", map[string]any{"name": "Mystery"}, ""},
	}
	for _, tt := range tests {
		if got := detectKind(tt.record); got != tt.want {
			t.Errorf("%s: detectKind = %q, want %q", tt.name, got, tt.want)
		}
	}
}
