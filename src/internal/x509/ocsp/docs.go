// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509ocsp checks certificate revocation with the Online Certificate
// Status Protocol ([OCSP], RFC 6960).
//
// Requests are built with golang.org/x/crypto/ocsp. Responses are decoded by
// this package so that the responder identifier, the signed bytes and every
// single response stay visible to the caller. A response is only trusted
// after its signer has been located, authorized for the issuer and its
// signature verified.
//
// [OCSP]: https://grokipedia.com/page/Online_Certificate_Status_Protocol
package x509ocsp
