// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/cli"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
	verpkg "github.com/H0llyW00dzZ/x509-chain-verifier/src/version"
)

var version string // set by ldflags or defaults to the version package

const shutdownGrace = 6 * time.Second

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

func main() {
	log := logger.NewCLILogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// buffered so the goroutine never blocks after a signal
	done := make(chan error, 1)

	go func() { done <- cli.Execute(ctx, version, log) }()

	select {
	case <-sigs:
		log.Println("\nReceived termination signal. Exiting...")
		cancel()
		// let serve drain in-flight requests
		select {
		case <-done:
		case <-time.After(shutdownGrace):
		}
		os.Exit(130)
	case err := <-done:
		if err != nil {
			log.Printf("Error: %v", err)
			os.Exit(1)
		}
	}
}
