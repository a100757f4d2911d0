// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ocsp_test

import (
	"bytes"
	"context"
	"crypto"
	"crypto/x509"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/pkitest"
	x509ocsp "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/ocsp"
	x509status "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

func TestCheckerSingleResponder(t *testing.T) {
	responder := pkitest.NewResponder()
	srv := httptest.NewServer(responder)
	t.Cleanup(srv.Close)

	h := pkitest.NewHierarchy(t, srv.URL)
	leaf, issuer, root := mustCert(t, h.Leaf), mustCert(t, h.Intermediate), mustCert(t, h.Root)

	other := pkitest.NewHierarchy(t)
	delegate := pkitest.NewOCSPSigner(t, h.Intermediate, "delegated responder")
	rsaDelegate := pkitest.NewOCSPSignerWithKey(t, h.Intermediate, "rsa responder", pkitest.NewRSAKey(t))
	edDelegate := pkitest.NewOCSPSignerWithKey(t, h.Intermediate, "ed25519 responder", pkitest.NewEd25519Key(t))

	checkLeaf := func(t *testing.T, e pkitest.Entry) error {
		t.Helper()
		if e.Issuer == nil {
			e.Issuer = h.Intermediate
		}
		responder.Set(h.Leaf.Cert.SerialNumber, e)
		checker := &x509ocsp.Checker{HTTPConfig: x509ocsp.NewHTTPConfig("test")}
		return checker.Check(context.Background(), leaf, issuer, root, pkitest.VerifyAt)
	}

	tests := []struct {
		name    string
		entry   pkitest.Entry
		wantErr error
	}{
		{
			name:  "Good From Issuer By Name",
			entry: pkitest.Entry{Status: pkitest.Good},
		},
		{
			name:  "Good From Issuer By RFC Key Hash",
			entry: pkitest.Entry{Status: pkitest.Good, ResponderID: pkitest.ByKeyHash},
		},
		{
			name:  "Good From Issuer By SPKI Key Hash",
			entry: pkitest.Entry{Status: pkitest.Good, ResponderID: pkitest.BySPKIHash},
		},
		{
			name:  "Single Response Hashed With SHA-256",
			entry: pkitest.Entry{Status: pkitest.Good, CertIDHash: crypto.SHA256},
		},
		{
			name:  "Single Response Hashed With SHA-512",
			entry: pkitest.Entry{Status: pkitest.Good, CertIDHash: crypto.SHA512},
		},
		{
			name:  "Good From Delegated Responder",
			entry: pkitest.Entry{Status: pkitest.Good, Signer: delegate, ResponderID: pkitest.ByKeyHash},
		},
		{
			name:  "Good From RSA PKCS1 Delegated Responder",
			entry: pkitest.Entry{Status: pkitest.Good, Signer: rsaDelegate},
		},
		{
			name:  "Good From Ed25519 Delegated Responder",
			entry: pkitest.Entry{Status: pkitest.Good, Signer: edDelegate, ResponderID: pkitest.BySPKIHash},
		},
		{
			name:    "Tampered RSA Signature",
			entry:   pkitest.Entry{Status: pkitest.Good, Signer: rsaDelegate, CorruptSignature: true},
			wantErr: x509ocsp.ErrResponseSignature,
		},
		{
			name:    "Tampered Ed25519 Signature",
			entry:   pkitest.Entry{Status: pkitest.Good, Signer: edDelegate, CorruptSignature: true},
			wantErr: x509ocsp.ErrResponseSignature,
		},
		{
			name:    "Revoked",
			entry:   pkitest.Entry{Status: pkitest.Revoked},
			wantErr: x509ocsp.ErrCertificateStatus,
		},
		{
			name:    "Unknown",
			entry:   pkitest.Entry{Status: pkitest.Unknown},
			wantErr: x509ocsp.ErrCertificateStatus,
		},
		{
			name: "Delegate Without OCSP Signing Usage",
			entry: pkitest.Entry{
				Status: pkitest.Good,
				Signer: pkitest.Issue(t, h.Intermediate, pkitest.Template{
					CommonName: "no eku",
					NotBefore:  pkitest.LeafNotBefore,
					NotAfter:   pkitest.LeafNotAfter,
				}),
			},
			wantErr: x509ocsp.ErrUnauthorizedSigner,
		},
		{
			name: "Spoofed Responder From Foreign Hierarchy",
			entry: pkitest.Entry{
				Status: pkitest.Good,
				Signer: pkitest.NewOCSPSigner(t, other.Intermediate, "spoofed responder"),
			},
			wantErr: x509ocsp.ErrUnauthorizedSigner,
		},
		{
			name: "Spoofed Responder Copying Issuer Name",
			entry: pkitest.Entry{
				Status: pkitest.Good,
				Signer: pkitest.Issue(t, nil, pkitest.Template{
					Subject:     &h.Intermediate.Cert.Subject,
					NotBefore:   pkitest.LeafNotBefore,
					NotAfter:    pkitest.LeafNotAfter,
					ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageOCSPSigning},
				}),
			},
			wantErr: x509ocsp.ErrResponseSignature,
		},
		{
			name: "Expired Delegate",
			entry: pkitest.Entry{
				Status: pkitest.Good,
				Signer: pkitest.Issue(t, h.Intermediate, pkitest.Template{
					CommonName:  "expired delegate",
					NotBefore:   pkitest.LeafNotBefore,
					NotAfter:    pkitest.LeafNotBefore.Add(30 * 24 * time.Hour),
					ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageOCSPSigning},
				}),
			},
			wantErr: x509ocsp.ErrUnauthorizedSigner,
		},
		{
			name:    "Delegate Not Embedded",
			entry:   pkitest.Entry{Status: pkitest.Good, Signer: delegate, Embed: []*x509.Certificate{}},
			wantErr: x509ocsp.ErrSignerNotFound,
		},
		{
			name:    "Tampered Response Signature",
			entry:   pkitest.Entry{Status: pkitest.Good, CorruptSignature: true},
			wantErr: x509ocsp.ErrResponseSignature,
		},
		{
			name:    "Missing Responder ID",
			entry:   pkitest.Entry{Status: pkitest.Good, ResponderID: pkitest.NoResponderID},
			wantErr: x509ocsp.ErrNoResponderID,
		},
		{
			name:    "Answer For Another Serial",
			entry:   pkitest.Entry{Status: pkitest.Good, CertIDSerial: big.NewInt(424242)},
			wantErr: x509ocsp.ErrNoMatchingResponse,
		},
		{
			name:    "Answer For Another Issuer",
			entry:   pkitest.Entry{Status: pkitest.Good, Issuer: other.Intermediate, Signer: h.Intermediate},
			wantErr: x509ocsp.ErrNoMatchingResponse,
		},
		{
			name:    "Try Later",
			entry:   pkitest.Entry{ResponseStatus: int(x509ocsp.TryLater)},
			wantErr: x509ocsp.ErrUnsuccessful,
		},
		{
			name:    "HTTP Error",
			entry:   pkitest.Entry{HTTPStatus: http.StatusServiceUnavailable, Body: []byte("down")},
			wantErr: x509ocsp.ErrHTTPStatus,
		},
		{
			name:    "Garbage Body",
			entry:   pkitest.Entry{Body: []byte("<html>hello</html>")},
			wantErr: x509ocsp.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkLeaf(t, tt.entry)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, x509status.ErrVerificationFailure)
			assert.Equal(t, x509status.VerificationFailure, x509status.CodeOf(err))
		})
	}

	t.Run("Request Uses SHA-256 And OCSP Content Type", func(t *testing.T) {
		require.NoError(t, checkLeaf(t, pkitest.Entry{Status: pkitest.Good}))
		assert.Equal(t, crypto.SHA256, responder.LastRequestHash())
		assert.Equal(t, "application/ocsp-request", responder.LastContentType())
	})

	t.Run("Intermediate Checked Against Root", func(t *testing.T) {
		responder.Set(h.Intermediate.Cert.SerialNumber, pkitest.Entry{Issuer: h.Root, Status: pkitest.Good})
		checker := &x509ocsp.Checker{}
		assert.NoError(t, checker.Check(context.Background(), issuer, root, root, pkitest.VerifyAt))
	})

	t.Run("Response Size Cap", func(t *testing.T) {
		responder.Set(h.Leaf.Cert.SerialNumber, pkitest.Entry{Issuer: h.Intermediate, Status: pkitest.Good})
		checker := &x509ocsp.Checker{MaxResponseSize: 16}
		err := checker.Check(context.Background(), leaf, issuer, root, pkitest.VerifyAt)
		assert.ErrorIs(t, err, x509ocsp.ErrResponseTooLarge)
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		checker := &x509ocsp.Checker{}
		err := checker.Check(ctx, leaf, issuer, root, pkitest.VerifyAt)
		assert.ErrorIs(t, err, x509status.ErrVerificationFailure)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Logger Records Attempts", func(t *testing.T) {
		responder.Set(h.Leaf.Cert.SerialNumber, pkitest.Entry{Issuer: h.Intermediate, Status: pkitest.Good})
		var buf bytes.Buffer
		checker := &x509ocsp.Checker{Logger: logger.NewStructuredLogger(&buf, false)}
		require.NoError(t, checker.Check(context.Background(), leaf, issuer, root, pkitest.VerifyAt))
		assert.Contains(t, buf.String(), "is good")
	})
}

func TestCheckerResponderOrder(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	first, second := pkitest.NewResponder(), pkitest.NewResponder()
	firstSrv, secondSrv := httptest.NewServer(first), httptest.NewServer(second)
	t.Cleanup(firstSrv.Close)
	t.Cleanup(secondSrv.Close)

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Unreachable Responder Falls Through",
			testFunc: func(t *testing.T) {
				h := pkitest.NewHierarchy(t, downURL, firstSrv.URL)
				first.SetGood(h.Leaf, h.Intermediate)

				err := (&x509ocsp.Checker{}).Check(context.Background(),
					mustCert(t, h.Leaf), mustCert(t, h.Intermediate), mustCert(t, h.Root), pkitest.VerifyAt)
				assert.NoError(t, err)
			},
		},
		{
			name: "Unsuccessful Responder Falls Through",
			testFunc: func(t *testing.T) {
				h := pkitest.NewHierarchy(t, firstSrv.URL, secondSrv.URL)
				first.Set(h.Leaf.Cert.SerialNumber, pkitest.Entry{ResponseStatus: int(x509ocsp.InternalError)})
				second.SetGood(h.Leaf, h.Intermediate)

				err := (&x509ocsp.Checker{}).Check(context.Background(),
					mustCert(t, h.Leaf), mustCert(t, h.Intermediate), mustCert(t, h.Root), pkitest.VerifyAt)
				assert.NoError(t, err)
			},
		},
		{
			name: "Authenticated Answer Is Final",
			testFunc: func(t *testing.T) {
				h := pkitest.NewHierarchy(t, firstSrv.URL, secondSrv.URL)
				first.Set(h.Leaf.Cert.SerialNumber, pkitest.Entry{Issuer: h.Intermediate, Status: pkitest.Revoked})
				second.SetGood(h.Leaf, h.Intermediate)
				before := second.Requests()

				err := (&x509ocsp.Checker{}).Check(context.Background(),
					mustCert(t, h.Leaf), mustCert(t, h.Intermediate), mustCert(t, h.Root), pkitest.VerifyAt)
				assert.ErrorIs(t, err, x509ocsp.ErrCertificateStatus)
				assert.Equal(t, before, second.Requests())
			},
		},
		{
			name: "All Responders Down",
			testFunc: func(t *testing.T) {
				h := pkitest.NewHierarchy(t, downURL, downURL)
				err := (&x509ocsp.Checker{}).Check(context.Background(),
					mustCert(t, h.Leaf), mustCert(t, h.Intermediate), mustCert(t, h.Root), pkitest.VerifyAt)
				require.ErrorIs(t, err, x509status.ErrVerificationFailure)
				assert.Contains(t, err.Error(), "all 2 responders failed")
			},
		},
		{
			name: "No Responder URL",
			testFunc: func(t *testing.T) {
				h := pkitest.NewHierarchy(t)
				err := (&x509ocsp.Checker{}).Check(context.Background(),
					mustCert(t, h.Leaf), mustCert(t, h.Intermediate), mustCert(t, h.Root), pkitest.VerifyAt)
				assert.ErrorIs(t, err, x509ocsp.ErrNoResponderURL)
				assert.ErrorIs(t, err, x509status.ErrVerificationFailure)
			},
		},
		{
			name: "Per Call Timeout",
			testFunc: func(t *testing.T) {
				release := make(chan struct{})
				slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					select {
					case <-release:
					case <-r.Context().Done():
					}
				}))
				t.Cleanup(slow.Close)
				t.Cleanup(func() { close(release) })

				h := pkitest.NewHierarchy(t, slow.URL)
				checker := &x509ocsp.Checker{HTTPConfig: &x509ocsp.HTTPConfig{Timeout: 50 * time.Millisecond}}

				start := time.Now()
				err := checker.Check(context.Background(),
					mustCert(t, h.Leaf), mustCert(t, h.Intermediate), mustCert(t, h.Root), pkitest.VerifyAt)
				assert.ErrorIs(t, err, x509status.ErrVerificationFailure)
				assert.Less(t, time.Since(start), 5*time.Second)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestAuthorizeSigner(t *testing.T) {
	h := pkitest.NewHierarchy(t)
	issuer, root := mustCert(t, h.Intermediate), mustCert(t, h.Root)

	assert.NoError(t, x509ocsp.AuthorizeSigner(issuer, issuer, root, pkitest.VerifyAt))

	delegate := mustCert(t, pkitest.NewOCSPSigner(t, h.Intermediate, "delegate"))
	assert.NoError(t, x509ocsp.AuthorizeSigner(delegate, issuer, root, pkitest.VerifyAt))
	assert.ErrorIs(t, x509ocsp.AuthorizeSigner(delegate, issuer, root, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)),
		x509ocsp.ErrUnauthorizedSigner)

	// the root may not answer for certificates the intermediate issued
	assert.ErrorIs(t, x509ocsp.AuthorizeSigner(root, issuer, root, pkitest.VerifyAt), x509ocsp.ErrUnauthorizedSigner)

	// the trust store holds both anchors, so a root-issued delegate qualifies
	rootDelegate := mustCert(t, pkitest.NewOCSPSigner(t, h.Root, "root delegate"))
	assert.NoError(t, x509ocsp.AuthorizeSigner(rootDelegate, issuer, root, pkitest.VerifyAt))

	selfSigned := mustCert(t, pkitest.Issue(t, nil, pkitest.Template{
		CommonName:  "self-signed responder",
		NotBefore:   pkitest.LeafNotBefore,
		NotAfter:    pkitest.LeafNotAfter,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageOCSPSigning},
	}))
	assert.ErrorIs(t, x509ocsp.AuthorizeSigner(selfSigned, issuer, root, pkitest.VerifyAt), x509ocsp.ErrUnauthorizedSigner)
}
