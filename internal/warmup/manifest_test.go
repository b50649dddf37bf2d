package warmup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/electwix/querycache/internal/cache"
	"github.com/electwix/querycache/internal/query"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "warmup.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `
items:
  - name: active-users
    query: "SELECT * FROM users WHERE active = 1"
  - name: user-by-id
    query: "SELECT * FROM users WHERE id = ?"
    params: [1]
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(m.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(m.Items))
	}
	if m.Items[0].Name != "active-users" {
		t.Errorf("Name = %q, want active-users", m.Items[0].Name)
	}
	if len(m.Items[1].Params) != 1 {
		t.Errorf("Params = %v, want one value", m.Items[1].Params)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeManifest(t, "items: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

// flakyRunner fails for one designated query.
type flakyRunner struct {
	failQuery string
}

func (r *flakyRunner) Run(_ context.Context, q string, _ []any) (*query.Result, error) {
	if q == r.failQuery {
		return nil, errors.New("synthetic failure")
	}
	return &query.Result{Columns: []string{"n"}, Rows: []map[string]any{{"n": int64(1)}}}, nil
}

func (r *flakyRunner) Exec(context.Context, string, []any) (int64, error) {
	return 0, nil
}

func TestRun_SeedsCacheAndIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	mgr := cache.New(cache.Options{})
	exec := query.NewExecutor(&flakyRunner{failQuery: "SELECT broken"}, mgr, nil)

	m := &Manifest{Items: []Item{
		{Name: "ok-1", Query: "SELECT 1"},
		{Name: "broken", Query: "SELECT broken"},
		{Name: "ok-2", Query: "SELECT 2", Params: []any{int64(7)}},
	}}

	Run(ctx, mgr, exec, m)

	if !mgr.Has("SELECT 1", nil) {
		t.Error("first item should be cached")
	}
	if mgr.Has("SELECT broken", nil) {
		t.Error("failed item must not be cached")
	}
	if !mgr.Has("SELECT 2", []any{int64(7)}) {
		t.Error("item after a failure should still be cached")
	}
}
