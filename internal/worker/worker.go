// Package worker defines the opaque remote-worker wire protocol the core
// consumes (spec §1: "the core issues opaque RPCs: run script, fetch
// table, fetch meta-table, ping, close") and ships a fake implementation
// used by every other package's tests in place of a real Deephaven worker.
package worker

import "context"

// ColumnMeta describes one column of a table (a "meta table" row, spec
// GLOSSARY).
type ColumnMeta struct {
	Name string
	Type string
}

// Table is the opaque result of fetching table data.
type Table struct {
	Columns  []ColumnMeta
	Rows     [][]interface{}
	RowCount int
}

// Session is the opaque remote-worker RPC surface a Session Manager holds
// once connected. Implementations live outside the core (spec §1).
type Session interface {
	Ping(ctx context.Context) error
	IsAlive(ctx context.Context) bool
	RunScript(ctx context.Context, script string) error
	ListTables(ctx context.Context) ([]string, error)
	FetchTable(ctx context.Context, name string, maxRows int, head bool) (*Table, error)
	FetchMetaTable(ctx context.Context, name string) (*Table, error)
	ProgrammingLanguage(ctx context.Context) (string, error)
	PipList(ctx context.Context) ([]PipPackage, error)
	Close(ctx context.Context) error
}

// PipPackage is one entry of `session_pip_list`'s result.
type PipPackage struct {
	Package string
	Version string
}

// Factory is the opaque enterprise factory RPC surface (mints sessions,
// enumerates pre-existing ones).
type Factory interface {
	Ping(ctx context.Context) error
	EnumerateSessions(ctx context.Context) ([]string, error)
	CreateSession(ctx context.Context, name string, params map[string]string) (Session, error)
	Close(ctx context.Context) error
}
