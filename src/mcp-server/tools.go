// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Output formats accepted by the verification tools.
const (
	formatJSON  = "json"
	formatTable = "table"
	formatTree  = "tree"
)

// createTools returns the MCP tool definitions with their handlers.
//
// The function defines the following tools:
//   - verify_cert_chain: Verifies a certificate chain from files or base64 data
//   - verify_remote_chain: Verifies the chain served by a TLS endpoint
func createTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool("verify_cert_chain",
				mcp.WithDescription("Build and verify an X.509 certificate chain up to a trusted root, then check OCSP revocation for every non-root certificate"),
				mcp.WithString("certificate",
					mcp.Required(),
					mcp.Description("Leaf certificate, optionally followed by intermediates: file path or base64-encoded PEM, DER or PKCS7"),
				),
				mcp.WithString("intermediates",
					mcp.Description("Additional intermediate certificates: file path or base64-encoded bundle"),
				),
				mcp.WithString("roots",
					mcp.Description("Trusted roots added to the configured ones: file path or base64-encoded bundle"),
				),
				mcp.WithString("at",
					mcp.Description("Verification time in RFC 3339 (default: now)"),
				),
				mcp.WithBoolean("check_revocation",
					mcp.Description("Query OCSP responders (default: true unless disabled in configuration)"),
					mcp.DefaultBool(true),
				),
				mcp.WithBoolean("strict",
					mcp.Description("Enforce CA basic constraints, key usage and path length on issuers (default: false)"),
					mcp.DefaultBool(false),
				),
				mcp.WithString("format",
					mcp.Description("Output format: 'json', 'table' or 'tree' (default: json)"),
					mcp.DefaultString(formatJSON),
				),
			),
			Handler: handleVerifyCertChain,
		},
		{
			Tool: mcp.NewTool("verify_remote_chain",
				mcp.WithDescription("Fetch the certificate chain served by a TLS endpoint and verify it like verify_cert_chain"),
				mcp.WithString("hostname",
					mcp.Required(),
					mcp.Description("Remote hostname to connect to"),
				),
				mcp.WithNumber("port",
					mcp.Description("Port number (default: 443)"),
					mcp.DefaultNumber(443),
				),
				mcp.WithString("roots",
					mcp.Description("Trusted roots added to the configured ones: file path or base64-encoded bundle"),
				),
				mcp.WithString("at",
					mcp.Description("Verification time in RFC 3339 (default: now)"),
				),
				mcp.WithBoolean("check_revocation",
					mcp.Description("Query OCSP responders (default: true unless disabled in configuration)"),
					mcp.DefaultBool(true),
				),
				mcp.WithString("format",
					mcp.Description("Output format: 'json', 'table' or 'tree' (default: json)"),
					mcp.DefaultString(formatJSON),
				),
			),
			Handler: handleVerifyRemoteChain,
		},
	}
}
