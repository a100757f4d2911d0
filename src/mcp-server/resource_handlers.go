// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/config"
)

// handleConfigResource returns the active configuration as JSON.
func handleConfigResource(_ context.Context, _ mcp.ReadResourceRequest, sc *ServerConfig) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(sc.Config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config template: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "config://template",
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

func handleSchemaResource(_ context.Context, _ mcp.ReadResourceRequest, _ *ServerConfig) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "config://schema",
			MIMEType: "application/schema+json",
			Text:     string(config.Schema()),
		},
	}, nil
}

// handleVersionResource returns server metadata. Tools and resources are
// listed from [createTools] and [createResources].
func handleVersionResource(_ context.Context, _ mcp.ReadResourceRequest, sc *ServerConfig) ([]mcp.ResourceContents, error) {
	var tools, resources []string
	for _, t := range createTools() {
		tools = append(tools, t.Tool.Name)
	}
	for _, r := range createResources() {
		resources = append(resources, r.Resource.URI)
	}

	versionInfo := map[string]any{
		"name":    serverName,
		"version": sc.Version,
		"type":    "MCP Server",
		"capabilities": map[string]any{
			"tools":     tools,
			"resources": resources,
		},
		"supportedInputFormats":  []string{"pem", "der", "pkcs7"},
		"supportedOutputFormats": []string{formatJSON, formatTable, formatTree},
	}

	jsonData, err := json.MarshalIndent(versionInfo, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal version info: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "info://version",
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
