// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedAlgorithm is returned for any signature algorithm outside the supported set.
	ErrUnsupportedAlgorithm = errors.New("x509certs: unsupported signature algorithm")

	// ErrKeyMismatch is returned when the public key type does not fit the signature algorithm.
	ErrKeyMismatch = errors.New("x509certs: public key does not match signature algorithm")

	// ErrBadSignature is returned when a signature does not verify.
	ErrBadSignature = errors.New("x509certs: signature verification failed")
)

// SignatureAlgorithm is the closed set of signature algorithms the verifier accepts.
//
// UnsupportedSignatureAlgorithm is a real variant: verifying with it always
// fails, so an unknown algorithm can never skip the check.
type SignatureAlgorithm int

const (
	UnsupportedSignatureAlgorithm SignatureAlgorithm = iota
	ECDSAWithSHA256
	ECDSAWithSHA384
	ECDSAWithSHA512
	SHA256WithRSA
	SHA384WithRSA
	SHA512WithRSA
	SHA256WithRSAPSS
	SHA384WithRSAPSS
	SHA512WithRSAPSS
	PureEd25519
)

// Signature algorithm OIDs as they appear in OCSP responses.
var (
	OIDSignatureECDSAWithSHA256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}
	OIDSignatureECDSAWithSHA384 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 3}
	OIDSignatureECDSAWithSHA512 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 4}
	OIDSignatureSHA256WithRSA   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}
	OIDSignatureSHA384WithRSA   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 12}
	OIDSignatureSHA512WithRSA   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 13}
	OIDSignatureEd25519         = asn1.ObjectIdentifier{1, 3, 101, 112}
)

var algorithmNames = map[SignatureAlgorithm]string{
	UnsupportedSignatureAlgorithm: "Unsupported",
	ECDSAWithSHA256:               "ECDSA-SHA256",
	ECDSAWithSHA384:               "ECDSA-SHA384",
	ECDSAWithSHA512:               "ECDSA-SHA512",
	SHA256WithRSA:                 "SHA256-RSA",
	SHA384WithRSA:                 "SHA384-RSA",
	SHA512WithRSA:                 "SHA512-RSA",
	SHA256WithRSAPSS:              "SHA256-RSAPSS",
	SHA384WithRSAPSS:              "SHA384-RSAPSS",
	SHA512WithRSAPSS:              "SHA512-RSAPSS",
	PureEd25519:                   "Ed25519",
}

// String returns a short human readable name.
func (a SignatureAlgorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("SignatureAlgorithm(%d)", int(a))
}

// SignatureAlgorithmFromX509 maps the algorithm of a parsed certificate.
func SignatureAlgorithmFromX509(alg x509.SignatureAlgorithm) SignatureAlgorithm {
	switch alg {
	case x509.ECDSAWithSHA256:
		return ECDSAWithSHA256
	case x509.ECDSAWithSHA384:
		return ECDSAWithSHA384
	case x509.ECDSAWithSHA512:
		return ECDSAWithSHA512
	case x509.SHA256WithRSA:
		return SHA256WithRSA
	case x509.SHA384WithRSA:
		return SHA384WithRSA
	case x509.SHA512WithRSA:
		return SHA512WithRSA
	case x509.SHA256WithRSAPSS:
		return SHA256WithRSAPSS
	case x509.SHA384WithRSAPSS:
		return SHA384WithRSAPSS
	case x509.SHA512WithRSAPSS:
		return SHA512WithRSAPSS
	case x509.PureEd25519:
		return PureEd25519
	default:
		return UnsupportedSignatureAlgorithm
	}
}

// SignatureAlgorithmFromOID maps an AlgorithmIdentifier taken from raw ASN.1.
// RSASSA-PSS needs its parameters decoded and is not accepted here.
func SignatureAlgorithmFromOID(id pkix.AlgorithmIdentifier) SignatureAlgorithm {
	oid := id.Algorithm
	switch {
	case oid.Equal(OIDSignatureECDSAWithSHA256):
		return ECDSAWithSHA256
	case oid.Equal(OIDSignatureECDSAWithSHA384):
		return ECDSAWithSHA384
	case oid.Equal(OIDSignatureECDSAWithSHA512):
		return ECDSAWithSHA512
	case oid.Equal(OIDSignatureSHA256WithRSA):
		return SHA256WithRSA
	case oid.Equal(OIDSignatureSHA384WithRSA):
		return SHA384WithRSA
	case oid.Equal(OIDSignatureSHA512WithRSA):
		return SHA512WithRSA
	case oid.Equal(OIDSignatureEd25519):
		return PureEd25519
	default:
		return UnsupportedSignatureAlgorithm
	}
}

// Hash returns the digest used by the algorithm, or zero for Ed25519 and
// unsupported algorithms.
func (a SignatureAlgorithm) Hash() crypto.Hash {
	switch a {
	case ECDSAWithSHA256, SHA256WithRSA, SHA256WithRSAPSS:
		return crypto.SHA256
	case ECDSAWithSHA384, SHA384WithRSA, SHA384WithRSAPSS:
		return crypto.SHA384
	case ECDSAWithSHA512, SHA512WithRSA, SHA512WithRSAPSS:
		return crypto.SHA512
	default:
		return 0
	}
}

// Verify checks signature over signed with pub.
func (a SignatureAlgorithm) Verify(pub crypto.PublicKey, signed, signature []byte) error {
	if a == UnsupportedSignatureAlgorithm {
		return ErrUnsupportedAlgorithm
	}
	if a == PureEd25519 {
		key, ok := pub.(ed25519.PublicKey)
		if !ok {
			return fmt.Errorf("%w: %s with %T", ErrKeyMismatch, a, pub)
		}
		if !ed25519.Verify(key, signed, signature) {
			return ErrBadSignature
		}
		return nil
	}

	hash := a.Hash()
	if !hash.Available() {
		return ErrUnsupportedAlgorithm
	}
	h := hash.New()
	h.Write(signed)
	digest := h.Sum(nil)

	switch a {
	case ECDSAWithSHA256, ECDSAWithSHA384, ECDSAWithSHA512:
		key, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return fmt.Errorf("%w: %s with %T", ErrKeyMismatch, a, pub)
		}
		if !ecdsa.VerifyASN1(key, digest, signature) {
			return ErrBadSignature
		}
		return nil

	case SHA256WithRSA, SHA384WithRSA, SHA512WithRSA:
		key, ok := pub.(*rsa.PublicKey)
		if !ok {
			return fmt.Errorf("%w: %s with %T", ErrKeyMismatch, a, pub)
		}
		if err := rsa.VerifyPKCS1v15(key, hash, digest, signature); err != nil {
			return fmt.Errorf("%w: %v", ErrBadSignature, err)
		}
		return nil

	case SHA256WithRSAPSS, SHA384WithRSAPSS, SHA512WithRSAPSS:
		key, ok := pub.(*rsa.PublicKey)
		if !ok {
			return fmt.Errorf("%w: %s with %T", ErrKeyMismatch, a, pub)
		}
		opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: hash}
		if err := rsa.VerifyPSS(key, hash, digest, signature, opts); err != nil {
			return fmt.Errorf("%w: %v", ErrBadSignature, err)
		}
		return nil
	}

	return ErrUnsupportedAlgorithm
}
