// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createResources returns the static and dynamic resources of the server:
//   - config://template: The active configuration as an editable template
//   - config://schema: JSON schema of the configuration file
//   - info://version: Version and capabilities
func createResources() []ResourceDefinition {
	return []ResourceDefinition{
		{
			Resource: mcp.NewResource("config://template", "Configuration Template",
				mcp.WithResourceDescription("Active verifier configuration, usable as a starting point for a config file"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: handleConfigResource,
		},
		{
			Resource: mcp.NewResource("config://schema", "Configuration Schema",
				mcp.WithResourceDescription("JSON schema that configuration files are validated against"),
				mcp.WithMIMEType("application/schema+json"),
			),
			Handler: handleSchemaResource,
		},
		{
			Resource: mcp.NewResource("info://version", "Version Information",
				mcp.WithResourceDescription("Server name, version and capabilities"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: handleVersionResource,
		},
	}
}
