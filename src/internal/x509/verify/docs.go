// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509verify runs the full verification of a certificate chain:
// parsing, chain building against pinned roots, link verification and OCSP
// revocation checks, and folds the outcome into a single [Verdict].
package x509verify
