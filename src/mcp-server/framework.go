// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/config"
	x509verify "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

// ServerConfig holds what every tool and resource handler needs.
//
// Fields:
//   - Version: Server version, also used in the OCSP User-Agent
//   - Config: Verifier configuration loaded at startup
//   - Logger: Structured logger writing outside the stdio protocol stream
type ServerConfig struct {
	Version string
	Config  *config.Config
	Logger  *logger.StructuredLogger

	base func() (x509verify.Config, error)
}

// verifyConfig returns the engine configuration derived from Config. Root
// files are read and the OCSP client is created once per ServerConfig.
func (sc *ServerConfig) verifyConfig() (x509verify.Config, error) {
	if sc.base == nil {
		return sc.Config.ToVerifyConfig(sc.Version, nil)
	}
	return sc.base()
}

// ToolHandlerWithConfig is a tool handler that receives the server configuration.
type ToolHandlerWithConfig func(ctx context.Context, request mcp.CallToolRequest, sc *ServerConfig) (*mcp.CallToolResult, error)

// ResourceHandlerWithConfig is a resource handler that receives the server configuration.
type ResourceHandlerWithConfig func(ctx context.Context, request mcp.ReadResourceRequest, sc *ServerConfig) ([]mcp.ResourceContents, error)

// ToolDefinition pairs an MCP tool with its implementation.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler ToolHandlerWithConfig
}

// ResourceDefinition pairs an MCP resource with its implementation.
type ResourceDefinition struct {
	Resource mcp.Resource
	Handler  ResourceHandlerWithConfig
}

// ServerBuilder constructs the [MCP] server with a fluent interface.
//
// Example:
//
//	s, err := NewServerBuilder().
//	    WithConfig(cfg).
//	    WithVersion("1.0.0").
//	    WithDefaultTools().
//	    WithDefaultResources().
//	    Build()
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ServerBuilder struct {
	sc        ServerConfig
	tools     []ToolDefinition
	resources []ResourceDefinition

	bound *ServerConfig
}

// NewServerBuilder creates a builder with no dependencies configured.
func NewServerBuilder() *ServerBuilder { return &ServerBuilder{} }

// WithConfig sets the verifier configuration. Nil means [config.Default].
func (b *ServerBuilder) WithConfig(cfg *config.Config) *ServerBuilder {
	b.sc.Config = cfg
	b.bound = nil
	return b
}

// WithVersion sets the server version string.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.sc.Version = version
	b.bound = nil
	return b
}

// WithLogger sets the structured logger. Nil means a silent logger.
func (b *ServerBuilder) WithLogger(log *logger.StructuredLogger) *ServerBuilder {
	b.sc.Logger = log
	b.bound = nil
	return b
}

// WithTools adds tool definitions.
func (b *ServerBuilder) WithTools(tools ...ToolDefinition) *ServerBuilder {
	b.tools = append(b.tools, tools...)
	return b
}

// WithResources adds resource definitions.
func (b *ServerBuilder) WithResources(resources ...ResourceDefinition) *ServerBuilder {
	b.resources = append(b.resources, resources...)
	return b
}

// WithDefaultTools adds the verification tools from [createTools].
func (b *ServerBuilder) WithDefaultTools() *ServerBuilder { return b.WithTools(createTools()...) }

// WithDefaultResources adds the resources from [createResources].
func (b *ServerBuilder) WithDefaultResources() *ServerBuilder {
	return b.WithResources(createResources()...)
}

// serverConfig resolves defaults once; every handler bound by this builder
// shares the result.
func (b *ServerBuilder) serverConfig() *ServerConfig {
	if b.bound != nil {
		return b.bound
	}

	sc := b.sc
	if sc.Config == nil {
		sc.Config = config.Default()
	}
	if sc.Logger == nil {
		sc.Logger = logger.NewStructuredLogger(io.Discard, true)
	}
	cfg, version := sc.Config, sc.Version
	sc.base = sync.OnceValues(func() (x509verify.Config, error) {
		return cfg.ToVerifyConfig(version, nil)
	})

	b.bound = &sc
	return b.bound
}

// ServerTools binds every tool handler to the builder's configuration.
func (b *ServerBuilder) ServerTools() []server.ServerTool {
	sc := b.serverConfig()
	out := make([]server.ServerTool, 0, len(b.tools))
	for _, tool := range b.tools {
		handler := tool.Handler
		out = append(out, server.ServerTool{
			Tool: tool.Tool,
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handler(ctx, request, sc)
			},
		})
	}
	return out
}

// ServerResources binds every resource handler to the builder's configuration.
func (b *ServerBuilder) ServerResources() []server.ServerResource {
	sc := b.serverConfig()
	out := make([]server.ServerResource, 0, len(b.resources))
	for _, resource := range b.resources {
		handler := resource.Handler
		out = append(out, server.ServerResource{
			Resource: resource.Resource,
			Handler: func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
				return handler(ctx, request, sc)
			},
		})
	}
	return out
}

// Build creates the [MCP] server with every configured tool and resource.
// It fails when the configured roots or extension OIDs cannot be loaded.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
func (b *ServerBuilder) Build() (*server.MCPServer, error) {
	if _, err := b.serverConfig().verifyConfig(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	s := server.NewMCPServer(
		serverName,
		b.sc.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
	)

	s.AddTools(b.ServerTools()...)
	s.AddResources(b.ServerResources()...)

	return s, nil
}
