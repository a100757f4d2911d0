// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
)

// Revocation status labels used by the renderers.
const (
	StatusGood    = "good"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusTrusted = "trusted"
	StatusUnknown = "unknown"
)

// RenderASCIITree renders the certificate chain as an ASCII tree diagram.
//
// Parameters:
//   - statuses: Optional revocation labels, statuses[i] belongs to Certs[i]
//
// Returns:
//   - string: ASCII tree representation of the certificate chain
func (ch *Chain) RenderASCIITree(statuses []string) string {
	if ch.Len() == 0 {
		return "No certificates in chain"
	}

	var result strings.Builder
	for i, cert := range ch.Certs {
		connector := "├── "
		if i == ch.Len()-1 {
			connector = "└── "
		}

		icon := "✓"
		switch statusOf(i, statuses) {
		case StatusGood, StatusTrusted, StatusSkipped, StatusUnknown:
		default:
			icon = "✗"
		}

		fmt.Fprintf(&result, "%s%s[%s] %s (%s)\n",
			strings.Repeat("    ", i), connector, icon, commonName(cert), ch.Role(i))
	}

	return result.String()
}

// RenderTable renders the certificate chain as a markdown table.
//
// Parameters:
//   - statuses: Optional revocation labels, statuses[i] belongs to Certs[i]
//
// Returns:
//   - string: Markdown table representation of the certificate chain
func (ch *Chain) RenderTable(statuses []string) string {
	if ch.Len() == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"#", "Role", "Subject", "Issuer", "Valid Until", "Key", "Signature", "Status"})

	rows := make([][]string, 0, ch.Len())
	for i, cert := range ch.Certs {
		algo, bits := keyInfo(cert)
		key := algo
		if bits > 0 {
			key = fmt.Sprintf("%d-bit %s", bits, algo)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			ch.Role(i),
			commonName(cert),
			cert.Issuer().CommonName,
			cert.NotAfter().UTC().Format("2006-01-02"),
			key,
			cert.SignatureAlgorithm().String(),
			statusOf(i, statuses),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// CertificateView is the JSON shape of one chain element.
type CertificateView struct {
	Index              int       `json:"index"`
	Role               string    `json:"role"`
	Subject            string    `json:"subject"`
	Issuer             string    `json:"issuer"`
	SerialNumber       string    `json:"serialNumber"`
	SignatureAlgorithm string    `json:"signatureAlgorithm"`
	PublicKeyAlgorithm string    `json:"publicKeyAlgorithm"`
	KeySize            int       `json:"keySize"`
	NotBefore          time.Time `json:"notBefore"`
	NotAfter           time.Time `json:"notAfter"`
	IsCA               bool      `json:"isCA"`
	OCSPServers        []string  `json:"ocspServers,omitempty"`
	RevocationStatus   string    `json:"revocationStatus"`
}

// Views converts the chain into JSON-ready values. statuses is indexed
// like Certs.
func (ch *Chain) Views(statuses []string) []CertificateView {
	views := make([]CertificateView, 0, ch.Len())
	for i, cert := range ch.Certs {
		algo, bits := keyInfo(cert)
		views = append(views, CertificateView{
			Index:              i,
			Role:               ch.Role(i),
			Subject:            cert.Subject().String(),
			Issuer:             cert.Issuer().String(),
			SerialNumber:       cert.SerialNumber().String(),
			SignatureAlgorithm: cert.SignatureAlgorithm().String(),
			PublicKeyAlgorithm: algo,
			KeySize:            bits,
			NotBefore:          cert.NotBefore(),
			NotAfter:           cert.NotAfter(),
			IsCA:               cert.IsCA(),
			OCSPServers:        cert.OCSPServers(),
			RevocationStatus:   statusOf(i, statuses),
		})
	}
	return views
}

func statusOf(i int, statuses []string) string {
	if i < len(statuses) && statuses[i] != "" {
		return statuses[i]
	}
	return StatusUnknown
}

func commonName(cert *x509certs.Certificate) string {
	if cn := cert.Subject().CommonName; cn != "" {
		return cn
	}
	return cert.Subject().String()
}

func keyInfo(cert *x509certs.Certificate) (string, int) {
	switch key := cert.PublicKey().(type) {
	case *rsa.PublicKey:
		return "RSA", key.Size() * 8
	case *ecdsa.PublicKey:
		return "ECDSA", key.Curve.Params().BitSize
	case ed25519.PublicKey:
		return "Ed25519", 256
	default:
		return "unknown", 0
	}
}
