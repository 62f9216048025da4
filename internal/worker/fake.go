package worker

import (
	"context"
	"sync"

	"github.com/deephaven/mcp-systems-server/internal/mcperr"
)

// FakeSession is an in-memory Session used by tests throughout the module.
type FakeSession struct {
	mu       sync.Mutex
	alive    bool
	closed   bool
	closeErr error
	lang     string
	tables   map[string]*Table
	pip      []PipPackage
	scripts  []string
}

func NewFakeSession() *FakeSession {
	return &FakeSession{alive: true, lang: "python", tables: make(map[string]*Table)}
}

func (f *FakeSession) SetTable(name string, t *Table) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[name] = t
}

func (f *FakeSession) SetAlive(alive bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive = alive
}

func (f *FakeSession) SetLanguage(lang string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lang = lang
}

func (f *FakeSession) SetPipPackages(pkgs []PipPackage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pip = pkgs
}

func (f *FakeSession) ScriptsRun() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]string, len(f.scripts))
	copy(cp, f.scripts)
	return cp
}

func (f *FakeSession) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeSession) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.alive {
		return mcperr.New(mcperr.KindConnection, "session unreachable")
	}
	return nil
}

func (f *FakeSession) IsAlive(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive
}

func (f *FakeSession) RunScript(ctx context.Context, script string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts = append(f.scripts, script)
	return nil
}

func (f *FakeSession) ListTables(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.tables))
	for name := range f.tables {
		names = append(names, name)
	}
	return names, nil
}

func (f *FakeSession) FetchTable(ctx context.Context, name string, maxRows int, head bool) (*Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[name]
	if !ok {
		return nil, mcperr.Newf(mcperr.KindSession, "table %q not found", name)
	}
	return t, nil
}

func (f *FakeSession) FetchMetaTable(ctx context.Context, name string) (*Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[name]
	if !ok {
		return nil, mcperr.Newf(mcperr.KindSession, "table %q not found", name)
	}
	meta := &Table{Columns: []ColumnMeta{{Name: "Name", Type: "string"}, {Name: "DataType", Type: "string"}}}
	for _, c := range t.Columns {
		meta.Rows = append(meta.Rows, []interface{}{c.Name, c.Type})
	}
	meta.RowCount = len(meta.Rows)
	return meta, nil
}

func (f *FakeSession) ProgrammingLanguage(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lang, nil
}

func (f *FakeSession) PipList(ctx context.Context) ([]PipPackage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lang != "python" {
		return nil, mcperr.New(mcperr.KindUnsupported, "pip listing requires a python session")
	}
	return f.pip, nil
}

func (f *FakeSession) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.closeErr
}
