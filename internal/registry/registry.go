package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gantry/internal/blueprint"
	"gantry/internal/fileutil"
)

// CurrentVersion is the registry document format version.
const CurrentVersion = 1

// StatusActive marks an entry whose scaffold has been applied.
const StatusActive = "active"

// Entry records one generated agent. Re-applying a blueprint for the same
// agent identifier replaces the whole entry (last-write-wins), never merges
// individual fields.
type Entry struct {
	AgentID     string   `json:"agent_id"`
	DisplayName string   `json:"display_name"`
	Summary     string   `json:"summary"`
	ModuleRoot  string   `json:"module_root"`
	DocsRoot    string   `json:"docs_root"`
	BasePath    string   `json:"base_path"`
	Attach      []string `json:"attach"`
	ModelID     string   `json:"model_id"`
	Status      string   `json:"status"`
	GeneratedAt string   `json:"generated_at"`
}

// Document is the on-disk registry of generated agents. The agents list holds
// at most one entry per identifier.
type Document struct {
	Version int     `json:"version"`
	Agents  []Entry `json:"agents"`
}

// Load reads an existing registry document, or initializes an empty one when
// the file does not exist. A file that exists but cannot be parsed is a hard
// error rather than something to silently overwrite.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Document{Version: CurrentVersion, Agents: []Entry{}}, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registry at %s is not valid JSON (fix or remove it before applying): %w", path, err)
	}
	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
	if doc.Agents == nil {
		doc.Agents = []Entry{}
	}
	return &doc, nil
}

// EntryFor builds the registry entry a blueprint produces, stamped with the
// given generation time.
func EntryFor(bp *blueprint.Blueprint, generatedAt time.Time) Entry {
	attach := make([]string, 0, len(bp.Integration.Attach))
	for _, kind := range bp.Integration.Attach {
		attach = append(attach, string(kind))
	}
	return Entry{
		AgentID:     bp.AgentID(),
		DisplayName: bp.DisplayName(),
		Summary:     bp.Metadata.Summary,
		ModuleRoot:  bp.Deliverables.ModuleRoot,
		DocsRoot:    bp.Deliverables.DocsRoot,
		BasePath:    bp.Integration.BasePath,
		Attach:      attach,
		ModelID:     bp.Model.ID,
		Status:      StatusActive,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
	}
}

// Upsert replaces the entry with a matching agent identifier in place
// (preserving list position) or appends a new one.
func (d *Document) Upsert(entry Entry) {
	for i := range d.Agents {
		if d.Agents[i].AgentID == entry.AgentID {
			d.Agents[i] = entry
			return
		}
	}
	d.Agents = append(d.Agents, entry)
}

// Find returns the entry for the given agent identifier, if present.
func (d *Document) Find(agentID string) (Entry, bool) {
	for _, entry := range d.Agents {
		if entry.AgentID == agentID {
			return entry, true
		}
	}
	return Entry{}, false
}

// Merge loads the registry at path, upserts the blueprint's entry, and when
// commit is set writes the document back atomically.
func Merge(path string, bp *blueprint.Blueprint, commit bool) (*Document, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	doc.Upsert(EntryFor(bp, time.Now()))

	if commit {
		if err := Save(path, doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Save writes the registry document to path, creating parent directories as
// needed.
func Save(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}
