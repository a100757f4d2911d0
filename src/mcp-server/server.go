// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/config"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/version"
)

const serverName = "X509 Certificate Chain Verifier"

var appVersion = version.Version // default version

// GetVersion returns the current version of the MCP server.
func GetVersion() string {
	return appVersion
}

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the process receives SIGINT or SIGTERM.
//
// Parameters:
//   - version: Version string reported to clients and used in the OCSP User-Agent
//   - configPath: Configuration file; empty falls back to $X509_VERIFIER_CONFIG_FILE
//
// Returns:
//   - error: Configuration, build or transport error, or the shutdown cause
//
// Logs are written as JSON lines to stderr so they never mix with the
// protocol stream on stdout.
func Run(version, configPath string) error {
	appVersion = version

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewStructuredLogger(os.Stderr, false).WithField("server", serverName)

	s, err := NewServerBuilder().
		WithConfig(cfg).
		WithVersion(version).
		WithLogger(log).
		WithDefaultTools().
		WithDefaultResources().
		Build()
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Printf("starting %s %s", serverName, version)
	return serve(ctx, server.NewStdioServer(s), os.Stdin, os.Stdout)
}

// listener is the part of [server.StdioServer] that serve needs.
type listener interface {
	Listen(ctx context.Context, stdin io.Reader, stdout io.Writer) error
}

func serve(ctx context.Context, l listener, in io.Reader, out io.Writer) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- l.Listen(ctx, in, out)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return fmt.Errorf("server shutdown: %w", ctx.Err())
	}
}
