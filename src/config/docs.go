// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the verifier configuration from JSON or YAML.
//
// A document is validated against an embedded JSON schema, defaults are
// applied to anything left out, and [Config.ToVerifyConfig] turns the
// result into the per-call configuration of the verification engine.
//
// Example (YAML):
//
//	roots:
//	  - roots/apple-root-ca.pem
//	chain:
//	  maxLength: 5
//	  strict: true
//	  requiredLeafExtensions: ["1.2.840.113635.100.6.11.1"]
//	ocsp:
//	  timeoutSeconds: 5
//	  maxConcurrent: 4
package config
