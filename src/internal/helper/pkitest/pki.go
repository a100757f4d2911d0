// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pkitest

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"sync/atomic"
	"testing"
	"time"
)

// Validity windows of the reference hierarchy.
var (
	RootNotBefore         = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	RootNotAfter          = time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC)
	IntermediateNotBefore = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	IntermediateNotAfter  = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	LeafNotBefore         = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	LeafNotAfter          = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// VerifyAt lies inside every window above.
	VerifyAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

// Vendor-style marker extensions carried by the reference hierarchy.
var (
	OIDLeafMarker         = asn1.ObjectIdentifier{1, 2, 840, 113635, 100, 6, 11, 1}
	OIDIntermediateMarker = asn1.ObjectIdentifier{1, 2, 840, 113635, 100, 6, 2, 1}
)

var serial atomic.Int64

// Identity is a certificate together with its private key.
type Identity struct {
	Cert *x509.Certificate
	Key  crypto.Signer
}

// DER returns the certificate encoding.
func (id *Identity) DER() []byte { return id.Cert.Raw }

// Template describes a certificate to issue.
type Template struct {
	CommonName      string
	NotBefore       time.Time
	NotAfter        time.Time
	IsCA            bool
	MaxPathLen      int
	KeyUsage        x509.KeyUsage
	ExtKeyUsage     []x509.ExtKeyUsage
	OCSPServer      []string
	ExtraExtensions []pkix.Extension
	// Subject overrides CommonName when set.
	Subject *pkix.Name
	// SerialNumber replaces the generated serial when set.
	SerialNumber *big.Int
	// SignatureAlgorithm overrides the one x509 derives from the parent key.
	SignatureAlgorithm x509.SignatureAlgorithm
}

// NewKey generates a P-256 key.
func NewKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

// NewRSAKey generates a 2048-bit RSA key.
func NewRSAKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return key
}

// NewEd25519Key generates an Ed25519 key.
func NewEd25519Key(t testing.TB) ed25519.PrivateKey {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return key
}

// NewRoot creates a self-signed CA.
func NewRoot(t testing.TB, commonName string, notBefore, notAfter time.Time) *Identity {
	t.Helper()
	return Issue(t, nil, Template{
		CommonName: commonName,
		NotBefore:  notBefore,
		NotAfter:   notAfter,
		IsCA:       true,
		MaxPathLen: -1,
	})
}

// Issue signs a certificate from tmpl with parent, or self-signs when parent is nil.
func Issue(t testing.TB, parent *Identity, tmpl Template) *Identity {
	t.Helper()
	return IssueWithKey(t, parent, tmpl, NewKey(t))
}

// IssueWithKey is [Issue] with a caller-supplied subject key, used to rotate
// a CA certificate while keeping or changing its key.
func IssueWithKey(t testing.TB, parent *Identity, tmpl Template, key crypto.Signer) *Identity {
	t.Helper()

	subject := pkix.Name{CommonName: tmpl.CommonName, Organization: []string{"pkitest"}}
	if tmpl.Subject != nil {
		subject = *tmpl.Subject
	}

	sn := tmpl.SerialNumber
	if sn == nil {
		sn = big.NewInt(1000 + serial.Add(1))
	}

	cert := &x509.Certificate{
		SerialNumber:          sn,
		SignatureAlgorithm:    tmpl.SignatureAlgorithm,
		Subject:               subject,
		NotBefore:             tmpl.NotBefore,
		NotAfter:              tmpl.NotAfter,
		KeyUsage:              tmpl.KeyUsage,
		ExtKeyUsage:           tmpl.ExtKeyUsage,
		OCSPServer:            tmpl.OCSPServer,
		ExtraExtensions:       tmpl.ExtraExtensions,
		BasicConstraintsValid: true,
		IsCA:                  tmpl.IsCA,
	}
	if tmpl.IsCA {
		if cert.KeyUsage == 0 {
			cert.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature
		}
		switch {
		case tmpl.MaxPathLen > 0:
			cert.MaxPathLen = tmpl.MaxPathLen
		case tmpl.MaxPathLen == 0:
			cert.MaxPathLen = 0
			cert.MaxPathLenZero = true
		default:
			cert.MaxPathLen = -1
		}
	} else if cert.KeyUsage == 0 {
		cert.KeyUsage = x509.KeyUsageDigitalSignature
	}

	parentCert, signer := cert, key
	if parent != nil {
		parentCert, signer = parent.Cert, parent.Key
	}

	der, err := x509.CreateCertificate(rand.Reader, cert, parentCert, key.Public(), signer)
	if err != nil {
		t.Fatalf("create certificate %q: %v", tmpl.CommonName, err)
	}
	parsed, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse certificate %q: %v", tmpl.CommonName, err)
	}

	return &Identity{Cert: parsed, Key: key}
}

// Hierarchy is the root, intermediate and leaf used by most tests.
type Hierarchy struct {
	Root         *Identity
	Intermediate *Identity
	Leaf         *Identity
}

// NewHierarchy builds root -> intermediate -> leaf with the reference
// validity windows. The leaf and intermediate point their AIA OCSP entry at
// ocspURLs; pass none to omit the extension.
func NewHierarchy(t testing.TB, ocspURLs ...string) *Hierarchy {
	t.Helper()

	root := NewRoot(t, "pkitest Root CA", RootNotBefore, RootNotAfter)
	intermediate := Issue(t, root, Template{
		CommonName:      "pkitest Intermediate CA",
		NotBefore:       IntermediateNotBefore,
		NotAfter:        IntermediateNotAfter,
		IsCA:            true,
		MaxPathLen:      0,
		OCSPServer:      ocspURLs,
		ExtraExtensions: []pkix.Extension{{Id: OIDIntermediateMarker, Value: []byte{0x05, 0x00}}},
	})
	leaf := Issue(t, intermediate, Template{
		CommonName:      "pkitest Leaf",
		NotBefore:       LeafNotBefore,
		NotAfter:        LeafNotAfter,
		OCSPServer:      ocspURLs,
		ExtraExtensions: []pkix.Extension{{Id: OIDLeafMarker, Value: []byte{0x05, 0x00}}},
	})

	return &Hierarchy{Root: root, Intermediate: intermediate, Leaf: leaf}
}

// NewOCSPSigner issues a delegated responder certificate under issuer.
func NewOCSPSigner(t testing.TB, issuer *Identity, commonName string) *Identity {
	t.Helper()
	return NewOCSPSignerWithKey(t, issuer, commonName, NewKey(t))
}

// NewOCSPSignerWithKey is [NewOCSPSigner] for a caller-supplied key. RSA and
// Ed25519 keys make the responder sign with sha256WithRSAEncryption and
// Ed25519.
func NewOCSPSignerWithKey(t testing.TB, issuer *Identity, commonName string, key crypto.Signer) *Identity {
	t.Helper()
	return IssueWithKey(t, issuer, Template{
		CommonName:  commonName,
		NotBefore:   LeafNotBefore,
		NotAfter:    IntermediateNotAfter,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageOCSPSigning},
	}, key)
}
