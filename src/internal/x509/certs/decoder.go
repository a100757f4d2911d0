// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
)

var (
	// ErrInvalidBlockType indicates a PEM block that is not a CERTIFICATE.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a PEM block whose body is not a certificate.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrParsePKCS7 indicates binary input that is neither DER nor PKCS7.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates a PKCS7 bundle without certificates.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")
)

const certBlockType = "CERTIFICATE"

// Decoder reads certificate bundles in PEM, concatenated DER or PKCS7 form
// and writes chains back as PEM or DER.
type Decoder struct {
	blockType string
}

// New returns a Decoder for CERTIFICATE blocks.
func New() *Decoder { return &Decoder{blockType: certBlockType} }

// IsPEM reports whether data starts with, or contains, a PEM block.
func (d *Decoder) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// DecodeMultiple parses every certificate in data, keeping input order.
//
// PEM input is read block by block and every block must be a certificate.
// Binary input is tried as concatenated DER first and as a PKCS7 bundle
// second.
func (d *Decoder) DecodeMultiple(data []byte) ([]*x509.Certificate, error) {
	if d.IsPEM(data) {
		return d.decodePEM(data)
	}
	return d.decodeBinary(data)
}

// DecodeDER decodes data like [Decoder.DecodeMultiple] and returns the raw
// DER of each certificate, the form the verification engine consumes.
func (d *Decoder) DecodeDER(data []byte) ([][]byte, error) {
	certs, err := d.DecodeMultiple(data)
	if err != nil {
		return nil, err
	}

	ders := make([][]byte, len(certs))
	for i, cert := range certs {
		ders[i] = cert.Raw
	}
	return ders, nil
}

func (d *Decoder) decodePEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for n := 0; ; n++ {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return certs, nil
		}
		if block.Type != d.blockType {
			return nil, fmt.Errorf("%w: block %d is %q", ErrInvalidBlockType, n, block.Type)
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrParseCertificate, n, err)
		}
		certs = append(certs, cert)
	}
}

func (d *Decoder) decodeBinary(data []byte) ([]*x509.Certificate, error) {
	if certs, err := x509.ParseCertificates(data); err == nil && len(certs) > 0 {
		return certs, nil
	}

	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsePKCS7, err)
	}
	certs := p.Content.SignedData.Certificates
	if len(certs) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}
	return certs, nil
}

// EncodePEM writes ders as consecutive CERTIFICATE blocks.
func (d *Decoder) EncodePEM(ders [][]byte) []byte {
	var buf bytes.Buffer
	for _, der := range ders {
		// writes to a bytes.Buffer cannot fail
		_ = pem.Encode(&buf, &pem.Block{Type: d.blockType, Bytes: der})
	}
	return buf.Bytes()
}

// EncodeDER concatenates ders. [Decoder.DecodeMultiple] reads the result back.
func (d *Decoder) EncodeDER(ders [][]byte) []byte { return bytes.Join(ders, nil) }
