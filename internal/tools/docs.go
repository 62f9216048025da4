package tools

import (
	"context"

	"github.com/deephaven/mcp-systems-server/internal/mcperr"
)

// DocsChat implements `docs_chat` (spec §4.7/§4.8): delegates to the
// Context's DocsClient. Returns a *client* error when no DocsClient is
// configured, and the DocsClient's own error when the call fails.
func (c *Context) DocsChat(ctx context.Context, prompt string, history []map[string]string, systemPrompts []string) map[string]interface{} {
	return guard(func() map[string]interface{} {
		if c.Docs == nil {
			return mcperr.ToolResult(mcperr.New(mcperr.KindClient, "docs_chat: no documentation client configured"))
		}
		answer, err := c.Docs.Chat(ctx, prompt, history, systemPrompts)
		if err != nil {
			return mcperr.ToolResult(err)
		}
		return mcperr.Success(map[string]interface{}{"response": answer})
	})
}
