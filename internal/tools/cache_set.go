package tools

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/ssm-cache/internal/cache"
)

// maxTTLSeconds is the longest lifetime a time.Duration can hold.
const maxTTLSeconds = float64(math.MaxInt64 / int64(time.Second))

// CacheSetHandler returns the MCP tool handler for the "cache-set" tool.
func CacheSetHandler(c *cache.Cache) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		value, err := req.RequireString("value")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		seconds, err := req.RequireFloat("ttl_seconds")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if seconds > maxTTLSeconds {
			return mcp.NewToolResultError(fmt.Sprintf("ttl_seconds must be at most %.0f, got %g", maxTTLSeconds, seconds)), nil
		}

		ack, err := c.Set(ctx, key, value, time.Duration(seconds*float64(time.Second)))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Stored %s (version %d, %s tier)", c.Name(key), ack.Version, ack.Tier)), nil
	}
}
