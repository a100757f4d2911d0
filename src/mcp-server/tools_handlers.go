// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
	x509verify "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
)

// errNotCertificateInput is returned when input is neither a readable file nor base64.
var errNotCertificateInput = errors.New("not a valid file path or base64 data")

// verifyOptions are the arguments shared by both verification tools.
type verifyOptions struct {
	roots           string
	at              time.Time
	checkRevocation bool
	strict          bool
	format          string
}

func parseVerifyOptions(request mcp.CallToolRequest) (verifyOptions, error) {
	opts := verifyOptions{
		roots:           request.GetString("roots", ""),
		checkRevocation: request.GetBool("check_revocation", true),
		strict:          request.GetBool("strict", false),
		format:          strings.ToLower(request.GetString("format", formatJSON)),
	}

	switch opts.format {
	case formatJSON, formatTable, formatTree:
	default:
		return opts, fmt.Errorf("unsupported format %q: use 'json', 'table' or 'tree'", opts.format)
	}

	if at := request.GetString("at", ""); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return opts, fmt.Errorf("invalid 'at' value: %w", err)
		}
		opts.at = t
	}

	return opts, nil
}

// handleVerifyCertChain verifies a chain supplied as files or base64 data.
//
// Parameters:
//   - ctx: Context for cancellation of OCSP requests
//   - request: Tool call carrying the certificate inputs and options
//   - sc: Server configuration
//
// Returns:
//   - The rendered verdict; a failed verdict is returned as an error result
//   - An error only if the result cannot be produced at all
func handleVerifyCertChain(ctx context.Context, request mcp.CallToolRequest, sc *ServerConfig) (*mcp.CallToolResult, error) {
	certInput, err := request.RequireString("certificate")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("certificate parameter required: %v", err)), nil
	}

	opts, err := parseVerifyOptions(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	certs, err := readCertificateInput(certInput)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read certificate: %v", err)), nil
	}

	req := x509verify.Request{Leaf: certs[0], Intermediates: certs[1:], At: opts.at}
	if input := request.GetString("intermediates", ""); input != "" {
		extra, err := readCertificateInput(input)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read intermediates: %v", err)), nil
		}
		req.Intermediates = append(req.Intermediates, extra...)
	}

	return verify(ctx, "verify_cert_chain", sc, opts, req)
}

// handleVerifyRemoteChain fetches the chain a TLS endpoint presents and verifies it.
//
// The first certificate the server sends is the leaf and the rest are used
// as intermediates. Roots always come from the configuration or the roots
// argument, never from the endpoint.
func handleVerifyRemoteChain(ctx context.Context, request mcp.CallToolRequest, sc *ServerConfig) (*mcp.CallToolResult, error) {
	hostname, err := request.RequireString("hostname")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("hostname parameter required: %v", err)), nil
	}
	port := request.GetInt("port", 443)
	if port <= 0 || port > 65535 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid port %d", port)), nil
	}

	opts, err := parseVerifyOptions(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	timeout := time.Duration(sc.Config.OCSP.TimeoutSeconds) * time.Second
	certs, err := x509chain.FetchRemoteChain(ctx, hostname, port, timeout)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch certificate chain from %s:%d: %v", hostname, port, err)), nil
	}

	req := x509verify.Request{Leaf: certs[0], Intermediates: certs[1:], At: opts.at}
	return verify(ctx, "verify_remote_chain", sc, opts, req)
}

func verify(ctx context.Context, tool string, sc *ServerConfig, opts verifyOptions, req x509verify.Request) (*mcp.CallToolResult, error) {
	log := sc.Logger.WithField("tool", tool)

	vcfg, err := sc.verifyConfig()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid server configuration: %v", err)), nil
	}
	vcfg.Logger = log
	vcfg.Strict = vcfg.Strict || opts.strict
	vcfg.DisableOnlineChecks = vcfg.DisableOnlineChecks || !opts.checkRevocation
	if opts.roots != "" {
		extra, err := readCertificateInput(opts.roots)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read roots: %v", err)), nil
		}
		vcfg.Roots = append(slices.Clip(vcfg.Roots), extra...)
	}

	verdict := x509verify.VerifyChainAndRevocation(ctx, vcfg, req)
	if verdict.Verified() {
		log.Printf("verified chain of %d certificates", verdict.Chain.Len())
	} else {
		log.Errorf("verification failed: %v", verdict.Err)
	}

	var text string
	switch opts.format {
	case formatJSON:
		data, err := json.MarshalIndent(verdict.Report(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		text = string(data)
	default:
		text = verdict.Text(opts.format == formatTree)
	}

	if !verdict.Verified() {
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}

// readCertificateInput reads certificates from a file path or base64 data.
// Either may hold PEM, concatenated DER or a PKCS7 bundle.
func readCertificateInput(input string) ([][]byte, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		decoded, decErr := base64.StdEncoding.DecodeString(strings.TrimSpace(input))
		if decErr != nil {
			return nil, errNotCertificateInput
		}
		data = decoded
	}

	ders, err := x509certs.New().DecodeDER(data)
	if err != nil {
		return nil, err
	}
	if len(ders) == 0 {
		return nil, x509certs.ErrParseCertificate
	}

	return ders, nil
}
