// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface of the X.509 chain verifier.
// It implements a Cobra root command that reads a leaf certificate from a file
// or a TLS endpoint, runs the verification engine against the configured
// trust anchors and prints the verdict as a table, an ASCII tree or JSON. The pem and der
// outputs write the verified chain instead, leaf first.
// The serve subcommand exposes the same verification over HTTP.
package cli
