// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs models [X.509] certificates for chain and revocation verification.
//
// [Certificate] is an immutable wrapper produced by [Parse] that exposes the
// fields the verifier needs and checks signatures through a closed set of
// [SignatureAlgorithm] values. [Decoder] handles the input side: [PEM], DER
// and [PKCS7] bundles, so callers can hand the engine raw DER bytes.
//
// [X.509]: https://grokipedia.com/page/X.509
// [PKCS7]: https://grokipedia.com/page/PKCS_7
// [PEM]: https://grokipedia.com/page/PEM#privacy-enhanced-mail
package x509certs
