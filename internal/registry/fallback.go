package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/feral-file/gamebot/internal/adapter"
)

// FallbackRegistry is the maintainer-curated table of known reference exceptions.
// Entries are exact; nothing in it is inferred.
//
//go:generate mockgen -source=fallback.go -destination=../mocks/fallback_registry.go -package=mocks -mock_names=FallbackRegistry=MockFallbackRegistry,FallbackRegistryLoader=MockFallbackRegistryLoader
type FallbackRegistry interface {
	// Lookup returns the replacement for a dangling reference value.
	// Entries scoped to the context win over entries without a context.
	Lookup(dataset, column, context, from string) (string, bool)

	// Len returns the number of entries
	Len() int
}

// FallbackEntry maps one known bad reference value to its correct target
type FallbackEntry struct {
	Dataset string `json:"dataset"`
	Column  string `json:"column"`
	// Context limits the entry to one grouping context; empty applies everywhere
	Context string `json:"context,omitempty"`
	From    string `json:"from"`
	To      string `json:"to"`
	Note    string `json:"note,omitempty"`
}

// FallbackData represents the structure of the fallback JSON file
type FallbackData struct {
	Entries []FallbackEntry `json:"entries"`
}

// fallbackRegistry is the internal implementation of FallbackRegistry interface
type fallbackRegistry struct {
	// Fast lookup map: "dataset:column:context:from" -> to
	entries map[string]string
}

// FallbackRegistryLoader loads the fallback registry
type FallbackRegistryLoader interface {
	// Load loads the fallback registry from a JSON file
	Load(filePath string) (FallbackRegistry, error)
}

type fallbackRegistryLoader struct {
	fs adapter.FileSystem
}

// NewFallbackRegistryLoader creates a new FallbackRegistryLoader with injected dependencies
func NewFallbackRegistryLoader(fs adapter.FileSystem) FallbackRegistryLoader {
	return &fallbackRegistryLoader{fs: fs}
}

func fallbackKey(dataset, column, context, from string) string {
	return fmt.Sprintf("%s:%s:%s:%s", strings.ToLower(dataset), strings.ToLower(column), context, from)
}

// NewFallbackRegistry indexes fallback entries.
// Two entries with the same scope and source value are rejected.
func NewFallbackRegistry(entries []FallbackEntry) (FallbackRegistry, error) {
	r := &fallbackRegistry{entries: make(map[string]string, len(entries))}
	for i, e := range entries {
		if e.Dataset == "" || e.Column == "" || e.From == "" || e.To == "" {
			return nil, fmt.Errorf("fallback entry %d: dataset, column, from and to are required", i)
		}
		key := fallbackKey(e.Dataset, e.Column, e.Context, e.From)
		if _, dup := r.entries[key]; dup {
			return nil, fmt.Errorf("fallback entry %d: duplicate mapping for %s.%s %q", i, e.Dataset, e.Column, e.From)
		}
		r.entries[key] = e.To
	}
	return r, nil
}

// Load loads the fallback registry from a JSON file.
// An empty path yields an empty registry.
func (l *fallbackRegistryLoader) Load(filePath string) (FallbackRegistry, error) {
	if filePath == "" {
		return NewFallbackRegistry(nil)
	}

	data, err := l.fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback file: %w", err)
	}

	var fallbackData FallbackData
	if err := json.Unmarshal(data, &fallbackData); err != nil {
		return nil, fmt.Errorf("failed to parse fallback JSON: %w", err)
	}

	return NewFallbackRegistry(fallbackData.Entries)
}

// Lookup returns the replacement for a dangling reference value
func (r *fallbackRegistry) Lookup(dataset, column, context, from string) (string, bool) {
	if r == nil {
		return "", false
	}
	if to, ok := r.entries[fallbackKey(dataset, column, context, from)]; ok {
		return to, true
	}
	if context == "" {
		return "", false
	}
	to, ok := r.entries[fallbackKey(dataset, column, "", from)]
	return to, ok
}

// Len returns the number of entries
func (r *fallbackRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
