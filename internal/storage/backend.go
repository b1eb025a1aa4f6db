package storage

import (
	"context"
	"sort"
)

// Backend persists whole collection documents by name.
type Backend interface {
	// Load returns the stored document, or nil when it does not exist yet.
	Load(ctx context.Context, name string) ([]byte, error)
	// Replace overwrites every given document. A document is either fully
	// replaced or left as it was. Whether the set of documents is replaced
	// all together depends on the backend: SQLite commits them in one
	// transaction, the file backend only guarantees it per file.
	Replace(ctx context.Context, docs map[string][]byte) error
	Close() error
}

func sortedNames(docs map[string][]byte) []string {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
