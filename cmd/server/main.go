package main

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leonardcser/ssm-cache/internal/backend"
	"github.com/leonardcser/ssm-cache/internal/cache"
	"github.com/leonardcser/ssm-cache/internal/config"
	"github.com/leonardcser/ssm-cache/internal/logger"
	tools "github.com/leonardcser/ssm-cache/internal/tools"
)

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Infof("Starting parameter cache MCP server")

	cfg, err := config.Load("")
	if err != nil {
		logger.Errorf("load config: %v", err)
		panic(err)
	}
	store, err := backend.Open(context.Background(), cfg)
	if err != nil {
		logger.Errorf("open %s backend: %v", cfg.Backend, err)
		panic(err)
	}
	c := cache.New(store, cfg.CacheOptions()...)
	logger.Infof("Using %s backend under %s (secret=%v)", cfg.Backend, cfg.BasePath, cfg.SecretEnabled())

	s := server.NewMCPServer(
		"Parameter Cache MCP",
		"0.1.0",
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)

	toolGet := mcp.NewTool("cache-get",
		mcp.WithDescription(multiline(
			"Reads a value previously stored with cache-set",
			"\nUsage notes:",
			"- Returns an error result when the key was never stored, has expired, or the store is unreachable",
			"- Expired entries are removed from the store when read",
		)),
		mcp.WithString("key", mcp.Required(), mcp.Description("The cache key")),
	)
	s.AddTool(toolGet, tools.CacheGetHandler(c))
	logger.Infof("Registered cache-get tool")

	toolSet := mcp.NewTool("cache-set",
		mcp.WithDescription(multiline(
			"Stores a value in the parameter store for a limited time",
			"\nUsage notes:",
			"- Overwrites any existing value for the key and restarts its lifetime",
			"- Characters outside A-Z, a-z, 0-9, '_', '.' in the key are replaced with '_'",
		)),
		mcp.WithString("key", mcp.Required(), mcp.Description("The cache key")),
		mcp.WithString("value", mcp.Required(), mcp.Description("The value to store")),
		mcp.WithNumber("ttl_seconds", mcp.Required(), mcp.Description("Lifetime in seconds, greater than 0")),
	)
	s.AddTool(toolSet, tools.CacheSetHandler(c))
	logger.Infof("Registered cache-set tool")

	logger.Infof("Starting MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Errorf("server error: %v", err)
	}
}

// multiline joins lines with newlines for tool descriptions.
func multiline(lines ...string) string { return strings.Join(lines, "\n") }
