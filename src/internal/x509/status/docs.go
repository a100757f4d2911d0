// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509status defines the stable failure taxonomy shared by the
// certificate, chain, OCSP and verification packages.
package x509status
