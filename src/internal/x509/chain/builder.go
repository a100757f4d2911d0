// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"bytes"

	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509status "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
)

// DefaultMaxLength bounds chain construction when [Builder.MaxLength] is zero.
const DefaultMaxLength = 10

// Builder orders a leaf and an unordered set of intermediates into a [Chain]
// that ends at one of the trusted roots.
//
// The zero value is ready to use.
type Builder struct {
	// MaxLength is the largest number of certificates, root included, a
	// chain may hold. Zero means [DefaultMaxLength].
	MaxLength int
}

func (b Builder) maxLength() int {
	if b.MaxLength <= 0 {
		return DefaultMaxLength
	}
	return b.MaxLength
}

// Build walks from leaf toward a trusted root.
//
// At every step the candidates are the intermediates followed by the roots
// whose raw subject equals the tail's raw issuer and which are not already in
// the chain. A candidate whose key verifies the tail's signature wins; if none
// verifies, the first subject match is taken and left for [Verifier] to
// reject. The walk stops as soon as the tail is byte-identical to a root.
//
// Parameters:
//   - leaf: End-entity certificate
//   - intermediates: Candidate intermediates, in any order
//   - roots: Trusted anchors
//
// Returns:
//   - *Chain: Ordered chain [leaf, ..., root]
//   - error: [x509status.ErrInvalidChain] when no trusted path exists,
//     [x509status.ErrInvalidChainLength] when the path grows past MaxLength
//
// Thread Safety: Safe for concurrent use; inputs are only read.
func (b Builder) Build(leaf *x509certs.Certificate, intermediates, roots []*x509certs.Certificate) (*Chain, error) {
	const op = "build"

	switch {
	case leaf == nil:
		return nil, x509status.New(x509status.InvalidChain, op, "missing leaf certificate")
	case len(roots) == 0:
		return nil, x509status.New(x509status.InvalidChain, op, "no trusted roots configured")
	case containsCert(roots, leaf):
		return nil, x509status.New(x509status.InvalidChain, op, "leaf %q is itself a trusted root", leaf.Subject())
	}

	candidates := make([]*x509certs.Certificate, 0, len(intermediates)+len(roots))
	candidates = append(candidates, intermediates...)
	candidates = append(candidates, roots...)

	maxLen := b.maxLength()
	certs := []*x509certs.Certificate{leaf}
	for {
		tail := certs[len(certs)-1]
		if len(certs) > 1 && containsCert(roots, tail) {
			return &Chain{Certs: certs}, nil
		}
		if tail.IsSelfSigned() {
			return nil, x509status.New(x509status.InvalidChain, op,
				"self-signed certificate %q is not a trusted root", tail.Subject())
		}

		next := pickIssuer(tail, candidates, certs)
		if next == nil {
			return nil, x509status.New(x509status.InvalidChain, op,
				"no issuer found for %q", tail.Subject())
		}
		if len(certs) >= maxLen {
			return nil, x509status.New(x509status.InvalidChainLength, op,
				"chain exceeds %d certificates", maxLen)
		}
		certs = append(certs, next)
	}
}

// pickIssuer returns the preferred issuer candidate for tail, or nil.
func pickIssuer(tail *x509certs.Certificate, candidates, inChain []*x509certs.Certificate) *x509certs.Certificate {
	var fallback *x509certs.Certificate
	for _, c := range candidates {
		if c == nil || !bytes.Equal(c.RawSubject(), tail.RawIssuer()) || containsCert(inChain, c) {
			continue
		}
		if tail.VerifySignedBy(c.PublicKey()) == nil {
			return c
		}
		if fallback == nil {
			fallback = c
		}
	}
	return fallback
}

func containsCert(set []*x509certs.Certificate, cert *x509certs.Certificate) bool {
	for _, c := range set {
		if c.Equal(cert) {
			return true
		}
	}
	return false
}
