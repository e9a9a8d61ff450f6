package blueprint

import (
	"encoding/json"
	"fmt"
	"os"
)

// Document is the loosely typed parse of a blueprint file. Nothing about its
// shape is trusted until Validate has passed; use Refine to obtain the typed
// Blueprint afterwards.
type Document map[string]any

// Parse decodes raw JSON into a Document without validating it.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse blueprint: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parse blueprint: document is null")
	}
	return doc, nil
}

// LoadFile reads and parses a blueprint document from disk.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blueprint: %w", err)
	}
	return Parse(data)
}

// Tree accessors. Every helper tolerates absent keys and wrong types; the
// validator is responsible for reporting them.

func childMap(parent map[string]any, key string) (map[string]any, bool) {
	value, ok := parent[key]
	if !ok {
		return nil, false
	}
	m, ok := value.(map[string]any)
	return m, ok
}

func childList(parent map[string]any, key string) ([]any, bool) {
	value, ok := parent[key]
	if !ok {
		return nil, false
	}
	l, ok := value.([]any)
	return l, ok
}

func childString(parent map[string]any, key string) (string, bool) {
	value, ok := parent[key]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

func childBool(parent map[string]any, key string) (bool, bool) {
	value, ok := parent[key]
	if !ok {
		return false, false
	}
	b, ok := value.(bool)
	return b, ok
}

// childInt accepts only whole JSON numbers.
func childInt(parent map[string]any, key string) (int, bool) {
	value, ok := parent[key]
	if !ok {
		return 0, false
	}
	f, ok := value.(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func stringItems(list []any) ([]string, bool) {
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
