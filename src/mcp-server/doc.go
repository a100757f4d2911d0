// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver exposes [X509] chain verification over the Model Context Protocol ([MCP]).
// It registers verify_cert_chain and verify_remote_chain tools that run the
// verification engine with the shared configuration, plus resources describing
// that configuration. The server is assembled with a builder and served over stdio.
//
// [X509]: https://grokipedia.com/page/X.509
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
