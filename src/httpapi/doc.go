// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package httpapi serves chain and revocation verification over HTTP using [gin].
//
// Routes:
//   - GET  /healthz: liveness check
//   - GET  /v1/version: server name and version
//   - GET  /v1/schema: JSON schema of the configuration file
//   - POST /v1/verify: verify a certificate chain and return the report
//
// A verify request carries certificates as PEM text or base64-encoded PEM,
// DER or PKCS7 data:
//
//	{
//	  "certificate": "-----BEGIN CERTIFICATE-----\n...",
//	  "intermediates": ["MIIB..."],
//	  "roots": ["MIIB..."],
//	  "at": "2024-06-01T00:00:00Z",
//	  "checkRevocation": true,
//	  "strict": false
//	}
//
// A verified chain answers 200, a failed verdict 422, both with the JSON
// report. Malformed requests answer 400 with an error body.
//
// [gin]: https://github.com/gin-gonic/gin
package httpapi
