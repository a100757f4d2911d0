// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"bytes"
	"crypto/x509"
	"encoding/asn1"
	"time"

	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509status "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
)

// Verifier checks a built [Chain] link by link.
//
// The zero value performs the baseline checks: name linkage, validity of
// every non-root certificate and each signature. Strict adds CA constraints
// on every issuer.
type Verifier struct {
	Strict bool

	// RequiredLeafExtensions must all be present on the leaf.
	RequiredLeafExtensions []asn1.ObjectIdentifier

	// RequiredIntermediateExtensions must all be present on every certificate
	// between the leaf and the root.
	RequiredIntermediateExtensions []asn1.ObjectIdentifier
}

// Verify walks ch from leaf toward root and stops at the first failing link.
//
// The root's own validity window is not checked; it is trusted by pinning.
//
// Parameters:
//   - ch: Chain built by [Builder.Build]
//   - at: Verification time
//
// Returns:
//   - error: [x509status.ErrInvalidChain] describing the first failure, or nil
func (v Verifier) Verify(ch *Chain, at time.Time) error {
	const op = "verify"

	if ch == nil || ch.Len() < 2 {
		return x509status.New(x509status.InvalidChain, op, "chain must hold at least a leaf and a root")
	}

	last := ch.Len() - 1
	for i := 0; i < last; i++ {
		child, issuer := ch.Certs[i], ch.Certs[i+1]

		if !bytes.Equal(child.RawIssuer(), issuer.RawSubject()) {
			return x509status.New(x509status.InvalidChain, op,
				"certificate %d: issuer %q does not match subject %q", i, child.Issuer(), issuer.Subject())
		}
		if !child.IsValidAt(at) {
			return x509status.New(x509status.InvalidChain, op,
				"certificate %d (%q) is not valid at %s (valid %s to %s)", i, child.Subject(),
				at.UTC().Format(time.RFC3339),
				child.NotBefore().UTC().Format(time.RFC3339),
				child.NotAfter().UTC().Format(time.RFC3339))
		}
		if err := child.VerifySignedBy(issuer.PublicKey()); err != nil {
			return x509status.Wrap(x509status.InvalidChain, op, err)
		}

		required := v.RequiredIntermediateExtensions
		if i == 0 {
			required = v.RequiredLeafExtensions
		}
		for _, oid := range required {
			if _, ok := child.FindExtension(oid); !ok {
				return x509status.New(x509status.InvalidChain, op,
					"certificate %d (%q) lacks required extension %s", i, child.Subject(), oid)
			}
		}

		if v.Strict {
			if err := checkIssuerConstraints(issuer, i); err != nil {
				return err
			}
		}
	}

	return nil
}

// checkIssuerConstraints enforces basic constraints and key usage on issuer.
// below counts the intermediate CAs between issuer and the leaf.
func checkIssuerConstraints(issuer *x509certs.Certificate, below int) error {
	const op = "verify"
	cert := issuer.X509()

	if !issuer.IsCA() {
		return x509status.New(x509status.InvalidChain, op, "issuer %q is not a CA", issuer.Subject())
	}
	if cert.KeyUsage != 0 && cert.KeyUsage&x509.KeyUsageCertSign == 0 {
		return x509status.New(x509status.InvalidChain, op,
			"issuer %q may not sign certificates", issuer.Subject())
	}
	if (cert.MaxPathLen > 0 || cert.MaxPathLenZero) && below > cert.MaxPathLen {
		return x509status.New(x509status.InvalidChain, op,
			"issuer %q path length %d exceeded", issuer.Subject(), cert.MaxPathLen)
	}
	return nil
}
