// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ocsp

import (
	"bytes"
	"crypto"
	"fmt"
	"math/big"

	"golang.org/x/crypto/ocsp"

	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
)

// RequestHash is the CertID hash used for outgoing requests.
const RequestHash = crypto.SHA256

// CertID identifies one certificate to a responder.
type CertID struct {
	Hash         crypto.Hash
	NameHash     []byte
	KeyHash      []byte
	SerialNumber *big.Int
}

// DeriveCertID computes the CertID of cert under issuer with hash.
//
// Parameters:
//   - cert: Certificate in question
//   - issuer: Its issuer
//   - hash: Digest for the name and key hashes
//
// Returns:
//   - CertID: Expected identifier
//   - error: Error if hash is not available
func DeriveCertID(cert, issuer *x509certs.Certificate, hash crypto.Hash) (CertID, error) {
	nameHash, err := issuer.NameHash(hash)
	if err != nil {
		return CertID{}, err
	}
	keyHash, err := issuer.PublicKeyHash(hash)
	if err != nil {
		return CertID{}, err
	}
	return CertID{
		Hash:         hash,
		NameHash:     nameHash,
		KeyHash:      keyHash,
		SerialNumber: cert.SerialNumber(),
	}, nil
}

// Matches reports whether both identifiers name the same certificate with
// the same hash algorithm.
func (id CertID) Matches(other CertID) bool {
	return id.Hash == other.Hash &&
		id.SerialNumber != nil && other.SerialNumber != nil &&
		id.SerialNumber.Cmp(other.SerialNumber) == 0 &&
		bytes.Equal(id.NameHash, other.NameHash) &&
		bytes.Equal(id.KeyHash, other.KeyHash)
}

// BuildRequest encodes a single-certificate OCSPRequest for cert using
// [RequestHash].
//
// Returns:
//   - []byte: DER request body
//   - error: Error if encoding fails
func BuildRequest(cert, issuer *x509certs.Certificate) ([]byte, error) {
	der, err := ocsp.CreateRequest(cert.X509(), issuer.X509(), &ocsp.RequestOptions{Hash: RequestHash})
	if err != nil {
		return nil, fmt.Errorf("x509ocsp: create request: %w", err)
	}
	return der, nil
}
