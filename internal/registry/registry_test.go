package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"gantry/internal/blueprint"
	"gantry/internal/registry"
	"gantry/internal/testsupport"
)

func TestLoadMissingFileInitializesEmpty(t *testing.T) {
	doc, err := registry.Load(filepath.Join(t.TempDir(), "registry.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Version != registry.CurrentVersion {
		t.Fatalf("unexpected version: %d", doc.Version)
	}
	if len(doc.Agents) != 0 {
		t.Fatalf("expected empty agents list, got %d", len(doc.Agents))
	}
}

func TestLoadUnparseableFileIsHardError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	if err := os.WriteFile(path, []byte("{corrupt"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := registry.Load(path); err == nil {
		t.Fatal("expected error for unparseable registry")
	}
}

func TestMergeAppendsThenReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	bp := testsupport.MustBlueprint(t)

	doc, err := registry.Merge(path, bp, true)
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	if len(doc.Agents) != 1 {
		t.Fatalf("expected one entry, got %d", len(doc.Agents))
	}
	entry, ok := doc.Find(bp.AgentID())
	if !ok {
		t.Fatal("entry not found")
	}
	if entry.Status != registry.StatusActive {
		t.Fatalf("unexpected status: %q", entry.Status)
	}
	if entry.GeneratedAt == "" {
		t.Fatal("expected a generation timestamp")
	}

	// Re-apply a modified blueprint for the same identifier.
	changed := testsupport.BlueprintDoc()
	changed["metadata"].(map[string]any)["summary"] = "Updated summary"
	bp2, _, err := blueprint.Refine(changed)
	if err != nil {
		t.Fatal(err)
	}

	doc, err = registry.Merge(path, bp2, true)
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if len(doc.Agents) != 1 {
		t.Fatalf("upsert duplicated the entry: %d entries", len(doc.Agents))
	}
	entry, _ = doc.Find(bp.AgentID())
	if entry.Summary != "Updated summary" {
		t.Fatalf("expected last-write-wins, got %q", entry.Summary)
	}
}

func TestMergePreservesListPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	first := testsupport.MustBlueprint(t)
	if _, err := registry.Merge(path, first, true); err != nil {
		t.Fatal(err)
	}

	otherDoc := testsupport.BlueprintDoc()
	otherDoc["metadata"].(map[string]any)["name"] = "refund-audit"
	other, _, err := blueprint.Refine(otherDoc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := registry.Merge(path, other, true); err != nil {
		t.Fatal(err)
	}

	// Replace the first entry; it must stay at index 0.
	if _, err := registry.Merge(path, first, true); err != nil {
		t.Fatal(err)
	}
	doc, err := registry.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Agents) != 2 {
		t.Fatalf("expected two entries, got %d", len(doc.Agents))
	}
	if doc.Agents[0].AgentID != first.AgentID() {
		t.Fatalf("expected %q first, got %q", first.AgentID(), doc.Agents[0].AgentID)
	}
}

func TestMergeWithoutCommitDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	bp := testsupport.MustBlueprint(t)

	doc, err := registry.Merge(path, bp, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Agents) != 1 {
		t.Fatalf("expected in-memory entry, got %d", len(doc.Agents))
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("dry-run merge must not write the registry file")
	}
}
