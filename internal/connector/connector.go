package connector

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// CandidateItem is one unit of work enumerated by a connector. RawRef is an
// opaque handle the connector can later resolve to content; candidates are
// listed cheaply and fetched lazily, one item at a time.
type CandidateItem struct {
	SourceID   string
	Name       string
	ModifiedAt time.Time
	RawRef     string
}

// Connector enumerates and fetches items from one kind of external source.
type Connector interface {
	// List returns candidates modified at or after since. A nil since
	// means "everything". The bound is inclusive so items sharing the
	// cursor timestamp stay visible; the dedup gate decides whether a
	// re-listed candidate is actually reprocessed. Order is not
	// guaranteed; sources are only partially ordered by modification
	// time.
	List(ctx context.Context, locator string, since *time.Time) ([]CandidateItem, error)

	// Fetch resolves a RawRef from a previous List call to content.
	Fetch(ctx context.Context, rawRef string) (io.ReadCloser, error)
}

// Registry maps source kinds to connectors.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]Connector)}
}

func (r *Registry) Register(kind string, c Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[kind] = c
}

func (r *Registry) Get(kind string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[kind]
	if !ok {
		return nil, fmt.Errorf("no connector registered for source kind %q", kind)
	}
	return c, nil
}

// Kinds returns the registered source kinds, sorted for stable output.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.connectors))
	for k := range r.connectors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
