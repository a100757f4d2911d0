// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
)

// Chain is an ordered certificate path [leaf, intermediates..., root].
//
// Each element's issuer equals the next element's subject, and the last
// element is byte-identical to one of the trusted roots the chain was built
// against. A Chain is produced by [Builder.Build] and never modified
// afterwards, so it is safe for concurrent readers.
type Chain struct {
	Certs []*x509certs.Certificate
}

// Len returns the number of certificates in the chain.
func (ch *Chain) Len() int { return len(ch.Certs) }

// Leaf returns the end-entity certificate, or nil for an empty chain.
func (ch *Chain) Leaf() *x509certs.Certificate {
	if len(ch.Certs) == 0 {
		return nil
	}
	return ch.Certs[0]
}

// Root returns the trusted anchor, or nil for an empty chain.
func (ch *Chain) Root() *x509certs.Certificate {
	if len(ch.Certs) == 0 {
		return nil
	}
	return ch.Certs[len(ch.Certs)-1]
}

// IssuerOf returns the certificate that issued Certs[i]. The root has no
// issuer in the chain and yields nil.
func (ch *Chain) IssuerOf(i int) *x509certs.Certificate {
	if i < 0 || i+1 >= len(ch.Certs) {
		return nil
	}
	return ch.Certs[i+1]
}

// NonRoot returns every certificate below the root, leaf first.
// These are the certificates whose revocation status gets checked.
func (ch *Chain) NonRoot() []*x509certs.Certificate {
	if len(ch.Certs) <= 1 {
		return nil
	}
	return ch.Certs[:len(ch.Certs)-1]
}

// DER returns the encoding of every certificate, leaf first.
func (ch *Chain) DER() [][]byte {
	ders := make([][]byte, len(ch.Certs))
	for i, c := range ch.Certs {
		ders[i] = c.Raw()
	}
	return ders
}

// FilterIntermediates filters out the root and leaf certificates, returning only intermediates.
//
// Returns:
//   - []*x509certs.Certificate: Slice of intermediate certificates, or nil if none
func (ch *Chain) FilterIntermediates() []*x509certs.Certificate {
	if len(ch.Certs) <= 2 {
		return nil
	}
	return ch.Certs[1 : len(ch.Certs)-1]
}

// Role describes the position of Certs[index] in the chain.
func (ch *Chain) Role(index int) string {
	total := len(ch.Certs)
	switch {
	case total == 1:
		return "Self-Signed Certificate"
	case index == 0:
		return "End-Entity (Leaf) Certificate"
	case index == total-1:
		return "Root CA Certificate"
	default:
		return "Intermediate CA Certificate"
	}
}
