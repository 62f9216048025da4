package tools

import (
	"context"
	"fmt"

	"github.com/deephaven/mcp-systems-server/internal/mcperr"
	"github.com/deephaven/mcp-systems-server/internal/mcplog"
	"github.com/deephaven/mcp-systems-server/internal/worker"
)

// bytesPerCell is the constant used by the response-size gate (spec §4.7):
// estimated response size = row_count * column_count * 100 bytes.
const bytesPerCell = 100

const (
	warnThresholdBytes   = 5 * 1024 * 1024
	refuseThresholdBytes = 50 * 1024 * 1024
)

// estimateSize returns the response-size estimate for a table-returning
// handler (spec §4.7, invariant 9).
func estimateSize(rowCount, columnCount int) int64 {
	return int64(rowCount) * int64(columnCount) * bytesPerCell
}

// checkSizeGate logs a warning above 5MB and refuses above 50MB. Returns
// a non-nil result only when the request must be refused.
func checkSizeGate(rowCount, columnCount int) map[string]interface{} {
	size := estimateSize(rowCount, columnCount)
	if size > refuseThresholdBytes {
		mb := float64(size) / (1024 * 1024)
		return map[string]interface{}{
			"success": false,
			"error":   fmt.Sprintf("Response would be ~%.0fMB (max 50MB). Please reduce max_rows.", mb),
			"isError": true,
		}
	}
	if size > warnThresholdBytes {
		mb := float64(size) / (1024 * 1024)
		mcplog.Warnf("table response estimated at ~%.1fMB, above the 5MB advisory threshold", mb)
	}
	return nil
}

func (c *Context) resolveSession(ctx context.Context, sessionID string) (worker.Session, map[string]interface{}) {
	m, err := c.Registry.Get(sessionID)
	if err != nil {
		return nil, mcperr.ToolResult(err)
	}
	sess, err := m.Get(ctx)
	if err != nil {
		return nil, mcperr.ToolResult(err)
	}
	return sess, nil
}

// SessionTablesList implements `session_tables_list` (spec §4.7).
func (c *Context) SessionTablesList(ctx context.Context, sessionID string) map[string]interface{} {
	return guard(func() map[string]interface{} {
		sess, errResult := c.resolveSession(ctx, sessionID)
		if errResult != nil {
			return errResult
		}
		tables, err := sess.ListTables(ctx)
		if err != nil {
			return mcperr.ToolResult(err)
		}
		return mcperr.Success(map[string]interface{}{"tables": tables})
	})
}

// SessionTablesSchema implements `session_tables_schema` (spec §4.7).
func (c *Context) SessionTablesSchema(ctx context.Context, sessionID string, tableNames []string) map[string]interface{} {
	return guard(func() map[string]interface{} {
		sess, errResult := c.resolveSession(ctx, sessionID)
		if errResult != nil {
			return errResult
		}

		names := tableNames
		if len(names) == 0 {
			var err error
			names, err = sess.ListTables(ctx)
			if err != nil {
				return mcperr.ToolResult(err)
			}
		}

		schemas := make([]map[string]interface{}, 0, len(names))
		for _, name := range names {
			meta, err := sess.FetchMetaTable(ctx, name)
			if err != nil {
				schemas = append(schemas, map[string]interface{}{
					"success": false, "table": name, "error": err.Error(), "isError": true,
				})
				continue
			}
			schemas = append(schemas, map[string]interface{}{
				"success":      true,
				"table":        name,
				"format":       "json-row",
				"data":         meta.Rows,
				"meta_columns": columnNames(meta.Columns),
				"row_count":    meta.RowCount,
			})
		}
		return mcperr.Success(map[string]interface{}{"schemas": schemas})
	})
}

func columnNames(cols []worker.ColumnMeta) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// SessionTableData implements `session_table_data` (spec §4.7): enforces
// the response-size gate before fetching.
func (c *Context) SessionTableData(ctx context.Context, sessionID, table string, maxRows int, head bool) map[string]interface{} {
	return guard(func() map[string]interface{} {
		sess, errResult := c.resolveSession(ctx, sessionID)
		if errResult != nil {
			return errResult
		}

		meta, err := sess.FetchMetaTable(ctx, table)
		if err != nil {
			return mcperr.ToolResult(err)
		}
		// meta.RowCount is the number of columns in the real table: the meta
		// table has one row per column (spec GLOSSARY "meta table").
		if gated := checkSizeGate(maxRows, meta.RowCount); gated != nil {
			return gated
		}

		data, err := sess.FetchTable(ctx, table, maxRows, head)
		if err != nil {
			return mcperr.ToolResult(err)
		}

		return mcperr.Success(map[string]interface{}{
			"format":      "json-row",
			"data":        data.Rows,
			"is_complete": data.RowCount <= maxRows,
		})
	})
}
