package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/ssm-cache/internal/cache"
)

// CacheGetHandler returns the MCP tool handler for the "cache-get" tool.
// Every kind of miss produces the same error result.
func CacheGetHandler(c *cache.Cache) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		key, err := req.RequireString("key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		v, ok := c.Get(ctx, key)
		if !ok {
			return mcp.NewToolResultError("no cached value for " + key), nil
		}
		return mcp.NewToolResultText(v), nil
	}
}
