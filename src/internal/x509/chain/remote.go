// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// ErrNoPeerCertificates is returned when a TLS server presents no certificates.
var ErrNoPeerCertificates = errors.New("x509chain: no certificates received from server")

// FetchRemoteChain performs a TLS handshake with hostname:port and returns the
// DER certificates the server presented, leaf first.
//
// The handshake does not verify the server; the returned bytes are meant to
// be fed to the verifier.
//
// Parameters:
//   - ctx: Context for cancellation
//   - hostname: Server name, also sent as SNI
//   - port: TCP port
//   - timeout: Dial timeout
//
// Returns:
//   - [][]byte: Presented certificates in handshake order
//   - error: Connection failure or [ErrNoPeerCertificates]
func FetchRemoteChain(ctx context.Context, hostname string, port int, timeout time.Duration) ([][]byte, error) {
	addr := net.JoinHostPort(hostname, strconv.Itoa(port))
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		// We just want the cert chain, not to verify
		Config: &tls.Config{InsecureSkipVerify: true, ServerName: hostname},
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	peerCerts := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(peerCerts) == 0 {
		return nil, ErrNoPeerCertificates
	}

	ders := make([][]byte, 0, len(peerCerts))
	for _, c := range peerCerts {
		ders = append(ders, c.Raw)
	}
	return ders, nil
}
