// Package warmup loads warm-up manifests and seeds the cache from them.
//
// A manifest is a YAML list of queries to execute before first real
// demand:
//
//	items:
//	  - name: active-users
//	    query: "SELECT * FROM users WHERE active = 1"
//	  - name: user-by-id
//	    query: "SELECT * FROM users WHERE id = ?"
//	    params: [1]
package warmup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/electwix/querycache/internal/cache"
	"github.com/electwix/querycache/internal/query"
)

// Item is one warm-up request.
type Item struct {
	// Name labels the item in logs. Optional.
	Name string `yaml:"name"`
	// Query is the statement to execute.
	Query string `yaml:"query"`
	// Params are the bind parameters, in order.
	Params []any `yaml:"params"`
}

// Manifest is a parsed warm-up file.
type Manifest struct {
	Items []Item `yaml:"items"`
}

// Load reads a YAML warm-up manifest.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// Run executes every manifest item through the executor's uncached path
// and stores the results. Item failures are isolated: the manager logs
// and skips them without aborting the batch.
func Run(ctx context.Context, mgr *cache.Manager, exec *query.Executor, m *Manifest) {
	items := make([]cache.WarmupItem, 0, len(m.Items))
	for _, it := range m.Items {
		it := it
		items = append(items, cache.WarmupItem{
			Query:  it.Query,
			Params: it.Params,
			Fetch: func(ctx context.Context) (any, error) {
				return exec.Fetch(ctx, it.Query, it.Params...)
			},
		})
	}
	mgr.WarmUp(ctx, items)
}
