// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"crypto"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"
	"time"

	x509status "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
)

// Certificate is an immutable view over a parsed DER certificate.
//
// It is built once by [Parse] and never mutated, so a single value can be
// shared by concurrent checks.
type Certificate struct {
	cert   *x509.Certificate
	sigAlg SignatureAlgorithm
}

// Parse decodes a DER certificate and checks that the fields the verifier
// relies on are present.
//
// Parameters:
//   - der: DER-encoded certificate
//
// Returns:
//   - *Certificate: Parsed certificate
//   - error: [x509status.ErrInvalidCertificate] on any decoding or content failure
func Parse(der []byte) (*Certificate, error) {
	if len(der) == 0 {
		return nil, x509status.New(x509status.InvalidCertificate, "parse", "empty certificate")
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, x509status.Wrap(x509status.InvalidCertificate, "parse", err)
	}

	return FromX509(cert)
}

// FromX509 wraps an already parsed certificate after the same field checks as [Parse].
func FromX509(cert *x509.Certificate) (*Certificate, error) {
	switch {
	case cert == nil:
		return nil, x509status.New(x509status.InvalidCertificate, "parse", "nil certificate")
	case isEmptyName(cert.Subject):
		return nil, x509status.New(x509status.InvalidCertificate, "parse", "missing subject")
	case isEmptyName(cert.Issuer):
		return nil, x509status.New(x509status.InvalidCertificate, "parse", "missing issuer")
	case cert.NotBefore.IsZero() || cert.NotAfter.IsZero():
		return nil, x509status.New(x509status.InvalidCertificate, "parse", "missing validity window")
	case cert.PublicKey == nil:
		return nil, x509status.New(x509status.InvalidCertificate, "parse",
			"missing or unsupported public key (%s)", cert.PublicKeyAlgorithm)
	case cert.SerialNumber == nil:
		return nil, x509status.New(x509status.InvalidCertificate, "parse", "missing serial number")
	}

	return &Certificate{
		cert:   cert,
		sigAlg: SignatureAlgorithmFromX509(cert.SignatureAlgorithm),
	}, nil
}

// ParseAll parses every DER certificate in order, failing on the first bad one.
func ParseAll(ders [][]byte) ([]*Certificate, error) {
	out := make([]*Certificate, 0, len(ders))
	for i, der := range ders {
		c, err := Parse(der)
		if err != nil {
			return nil, x509status.Wrap(x509status.InvalidCertificate, fmt.Sprintf("parse[%d]", i), err)
		}
		out = append(out, c)
	}
	return out, nil
}

func isEmptyName(n pkix.Name) bool { return len(n.Names) == 0 && len(n.ExtraNames) == 0 }

// X509 returns the underlying parsed certificate. Callers must not modify it.
func (c *Certificate) X509() *x509.Certificate { return c.cert }

// Raw returns the complete DER encoding.
func (c *Certificate) Raw() []byte { return c.cert.Raw }

// Subject returns the subject distinguished name.
func (c *Certificate) Subject() pkix.Name { return c.cert.Subject }

// Issuer returns the issuer distinguished name.
func (c *Certificate) Issuer() pkix.Name { return c.cert.Issuer }

// RawSubject returns the DER subject name.
func (c *Certificate) RawSubject() []byte { return c.cert.RawSubject }

// RawIssuer returns the DER issuer name.
func (c *Certificate) RawIssuer() []byte { return c.cert.RawIssuer }

// SerialNumber returns a copy of the serial number.
func (c *Certificate) SerialNumber() *big.Int { return new(big.Int).Set(c.cert.SerialNumber) }

// NotBefore returns the start of the validity window.
func (c *Certificate) NotBefore() time.Time { return c.cert.NotBefore }

// NotAfter returns the end of the validity window.
func (c *Certificate) NotAfter() time.Time { return c.cert.NotAfter }

// PublicKey returns the subject public key.
func (c *Certificate) PublicKey() crypto.PublicKey { return c.cert.PublicKey }

// SignatureAlgorithm returns the algorithm the certificate was signed with.
func (c *Certificate) SignatureAlgorithm() SignatureAlgorithm { return c.sigAlg }

// OCSPServers returns the OCSP responder URLs from the AIA extension, in listed order.
func (c *Certificate) OCSPServers() []string {
	return append([]string(nil), c.cert.OCSPServer...)
}

// IsCA reports whether the certificate carries CA basic constraints.
func (c *Certificate) IsCA() bool { return c.cert.BasicConstraintsValid && c.cert.IsCA }

// IsValidAt reports whether t lies inside the validity window, bounds included.
func (c *Certificate) IsValidAt(t time.Time) bool {
	return !t.Before(c.cert.NotBefore) && !t.After(c.cert.NotAfter)
}

// FindExtension returns the raw value of the extension with the given OID.
func (c *Certificate) FindExtension(oid asn1.ObjectIdentifier) ([]byte, bool) {
	for _, ext := range c.cert.Extensions {
		if ext.Id.Equal(oid) {
			return ext.Value, true
		}
	}
	return nil, false
}

// HasExtKeyUsage reports whether the Extended Key Usage extension lists oid.
func (c *Certificate) HasExtKeyUsage(oid asn1.ObjectIdentifier) bool {
	if oid.Equal(OIDExtKeyUsageOCSPSigning) {
		for _, eku := range c.cert.ExtKeyUsage {
			if eku == x509.ExtKeyUsageOCSPSigning {
				return true
			}
		}
	}
	for _, unknown := range c.cert.UnknownExtKeyUsage {
		if unknown.Equal(oid) {
			return true
		}
	}
	return false
}

// VerifySignedBy checks the certificate signature against pub using the
// declared signature algorithm.
//
// Unknown or unsupported algorithms fail rather than pass.
func (c *Certificate) VerifySignedBy(pub crypto.PublicKey) error {
	if pub == nil {
		return ErrKeyMismatch
	}
	return c.sigAlg.Verify(pub, c.cert.RawTBSCertificate, c.cert.Signature)
}

// IsSelfSigned reports whether the certificate names itself as issuer and
// verifies under its own key.
func (c *Certificate) IsSelfSigned() bool {
	return bytes.Equal(c.cert.RawSubject, c.cert.RawIssuer) && c.VerifySignedBy(c.cert.PublicKey) == nil
}

// Equal reports whether both certificates have identical DER encodings.
func (c *Certificate) Equal(other *Certificate) bool {
	if c == nil || other == nil {
		return c == other
	}
	return bytes.Equal(c.cert.Raw, other.cert.Raw)
}

// SPKIKeyHash returns the SHA-1 digest of the DER SubjectPublicKeyInfo.
func (c *Certificate) SPKIKeyHash() []byte {
	sum := sha1.Sum(c.cert.RawSubjectPublicKeyInfo)
	return sum[:]
}

// PublicKeyHash hashes the subjectPublicKey BIT STRING, the form RFC 6960
// uses for issuer key hashes and responder key identifiers.
func (c *Certificate) PublicKeyHash(hash crypto.Hash) ([]byte, error) {
	if !hash.Available() {
		return nil, fmt.Errorf("x509certs: hash %v unavailable", hash)
	}
	var spki struct {
		Algorithm pkix.AlgorithmIdentifier
		PublicKey asn1.BitString
	}
	if _, err := asn1.Unmarshal(c.cert.RawSubjectPublicKeyInfo, &spki); err != nil {
		return nil, fmt.Errorf("x509certs: parse subject public key info: %w", err)
	}
	h := hash.New()
	h.Write(spki.PublicKey.RightAlign())
	return h.Sum(nil), nil
}

// NameHash hashes the DER subject name with hash.
func (c *Certificate) NameHash(hash crypto.Hash) ([]byte, error) {
	if !hash.Available() {
		return nil, fmt.Errorf("x509certs: hash %v unavailable", hash)
	}
	h := hash.New()
	h.Write(c.cert.RawSubject)
	return h.Sum(nil), nil
}
