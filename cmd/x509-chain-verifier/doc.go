// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// x509-chain-verifier verifies an X.509 certificate chain against a set of
// trusted roots and checks every non-root certificate with OCSP.
//
// # Installation
//
//	go install github.com/H0llyW00dzZ/x509-chain-verifier/cmd/x509-chain-verifier@latest
//
// # Usage
//
//	x509-chain-verifier [CERT_FILE] [FLAGS]
//	x509-chain-verifier serve [--listen ADDR] [--config FILE]
//
// # Flags
//
//	--host           Fetch the chain from a TLS endpoint instead of a file
//	--port           Port used with --host (default 443)
//	-i, --intermediates  Files holding intermediate certificates
//	-r, --roots      Files holding trusted roots
//	-c, --config     Configuration file (JSON or YAML)
//	--at             Verification time in RFC 3339
//	--strict         Enforce CA constraints on issuers
//	--no-ocsp        Skip online revocation checks
//	-o, --output     table, tree, json, pem or der (pem/der export the verified chain)
//	-v, --verbose    Log each verification stage
//
// # Environment Variables
//
//	X509_VERIFIER_CONFIG_FILE  Path to configuration file (alternative to --config)
//
// # Examples
//
//	x509-chain-verifier leaf.pem -i intermediate.pem -r root.pem
//	x509-chain-verifier --host example.com -r roots.pem -o tree
//	x509-chain-verifier bundle.p7b -c verifier.yaml --at 2024-06-01T00:00:00Z -o json
//	x509-chain-verifier leaf.pem -i intermediate.pem -o pem > chain.pem
//
//	x509-chain-verifier serve --listen :8080 -c verifier.yaml
//
// The exit status is 1 when verification fails. On SIGINT or SIGTERM the
// process exits with 130 after the HTTP server, if running, has shut down.
package main
