// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ocsp

import (
	"bytes"
	"crypto"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"time"

	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
)

var (
	// ErrNoResponderID is returned when a response names its signer neither by name nor by key hash.
	ErrNoResponderID = errors.New("x509ocsp: response carries no responder identifier")

	// ErrSignerNotFound is returned when no candidate matches the responder identifier.
	ErrSignerNotFound = errors.New("x509ocsp: responder certificate not found")

	// ErrUnauthorizedSigner is returned when the signer is neither the issuer
	// nor a delegated responder of it.
	ErrUnauthorizedSigner = errors.New("x509ocsp: responder not authorized")

	// ErrResponseSignature is returned when the response signature does not verify.
	ErrResponseSignature = errors.New("x509ocsp: response signature invalid")
)

// FindSigningCertificate locates the certificate that signed resp among
// issuer followed by the certificates embedded in the response.
//
// A key hash identifier matches either the SHA-1 digest of the candidate's
// DER SubjectPublicKeyInfo or the SHA-1 digest of its subjectPublicKey bits.
// A name identifier matches the candidate's DER subject, or failing that its
// distinguished name string.
//
// Parameters:
//   - resp: Parsed response
//   - issuer: Issuer of the certificate being checked
//
// Returns:
//   - *x509certs.Certificate: The matching candidate
//   - error: [ErrNoResponderID] or [ErrSignerNotFound]
func FindSigningCertificate(resp *Response, issuer *x509certs.Certificate) (*x509certs.Certificate, error) {
	var match func(*x509certs.Certificate) bool

	switch resp.ResponderIDKind {
	case ResponderIDByKeyHash:
		match = func(c *x509certs.Certificate) bool {
			if bytes.Equal(c.SPKIKeyHash(), resp.ResponderKeyHash) {
				return true
			}
			keyHash, err := c.PublicKeyHash(crypto.SHA1)
			return err == nil && bytes.Equal(keyHash, resp.ResponderKeyHash)
		}

	case ResponderIDByName:
		name, nameErr := parseName(resp.ResponderName)
		match = func(c *x509certs.Certificate) bool {
			if bytes.Equal(c.RawSubject(), resp.ResponderName) {
				return true
			}
			return nameErr == nil && c.Subject().String() == name.String()
		}

	default:
		return nil, ErrNoResponderID
	}

	candidates := make([]*x509certs.Certificate, 0, len(resp.Certificates)+1)
	candidates = append(candidates, issuer)
	candidates = append(candidates, resp.Certificates...)
	for _, c := range candidates {
		if c != nil && match(c) {
			return c, nil
		}
	}

	return nil, ErrSignerNotFound
}

func parseName(der []byte) (pkix.Name, error) {
	var rdn pkix.RDNSequence
	if rest, err := asn1.Unmarshal(der, &rdn); err != nil {
		return pkix.Name{}, err
	} else if len(rest) > 0 {
		return pkix.Name{}, errors.New("trailing data after name")
	}
	var name pkix.Name
	name.FillFromRDNSequence(&rdn)
	return name, nil
}

// AuthorizeSigner decides whether signer may answer for certificates issued
// by issuer.
//
// The issuer itself is always authorized. Any other signer must chain to
// the trust store {issuer, root} at time at and carry the id-kp-OCSPSigning
// extended key usage.
//
// Returns:
//   - error: [ErrUnauthorizedSigner] wrapping the reason, or nil
func AuthorizeSigner(signer, issuer, root *x509certs.Certificate, at time.Time) error {
	if signer.Equal(issuer) {
		return nil
	}

	anchors := []*x509certs.Certificate{issuer}
	if root != nil && !root.Equal(issuer) {
		anchors = append(anchors, root)
	}

	ch, err := x509chain.Builder{}.Build(signer, nil, anchors)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorizedSigner, err)
	}
	if err := (x509chain.Verifier{}).Verify(ch, at); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorizedSigner, err)
	}
	if !signer.HasExtKeyUsage(x509certs.OIDExtKeyUsageOCSPSigning) {
		return fmt.Errorf("%w: %q lacks the OCSP signing extended key usage", ErrUnauthorizedSigner, signer.Subject())
	}

	return nil
}

// VerifySignature checks the signature of resp with the signer's public key
// and the response's declared algorithm.
func VerifySignature(resp *Response, signer *x509certs.Certificate) error {
	if err := resp.SignatureAlgorithm.Verify(signer.PublicKey(), resp.TBSResponseData, resp.Signature); err != nil {
		return fmt.Errorf("%w (%s): %v", ErrResponseSignature, resp.SignatureOID, err)
	}
	return nil
}
