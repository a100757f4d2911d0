// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"crypto/x509"
	"encoding/asn1"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/pkitest"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
	x509status "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
)

func mustCert(t *testing.T, id *pkitest.Identity) *x509certs.Certificate {
	t.Helper()
	c, err := x509certs.FromX509(id.Cert)
	require.NoError(t, err)
	return c
}

func mustCerts(t *testing.T, ids ...*pkitest.Identity) []*x509certs.Certificate {
	t.Helper()
	out := make([]*x509certs.Certificate, 0, len(ids))
	for _, id := range ids {
		out = append(out, mustCert(t, id))
	}
	return out
}

func TestChainAccessors(t *testing.T) {
	h := pkitest.NewHierarchy(t)
	ch := &x509chain.Chain{Certs: mustCerts(t, h.Leaf, h.Intermediate, h.Root)}

	assert.Equal(t, 3, ch.Len())
	assert.True(t, ch.Leaf().Equal(mustCert(t, h.Leaf)))
	assert.True(t, ch.Root().Equal(mustCert(t, h.Root)))
	assert.True(t, ch.IssuerOf(0).Equal(mustCert(t, h.Intermediate)))
	assert.Nil(t, ch.IssuerOf(2))
	assert.Nil(t, ch.IssuerOf(-1))
	assert.Len(t, ch.NonRoot(), 2)
	require.Len(t, ch.FilterIntermediates(), 1)
	assert.True(t, ch.FilterIntermediates()[0].Equal(mustCert(t, h.Intermediate)))

	assert.Equal(t, "End-Entity (Leaf) Certificate", ch.Role(0))
	assert.Equal(t, "Intermediate CA Certificate", ch.Role(1))
	assert.Equal(t, "Root CA Certificate", ch.Role(2))

	empty := &x509chain.Chain{}
	assert.Nil(t, empty.Leaf())
	assert.Nil(t, empty.Root())
	assert.Nil(t, empty.NonRoot())
	assert.Nil(t, empty.FilterIntermediates())
}

func TestBuilder(t *testing.T) {
	h := pkitest.NewHierarchy(t)

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Builds Leaf To Root",
			testFunc: func(t *testing.T) {
				ch, err := x509chain.Builder{}.Build(mustCert(t, h.Leaf), mustCerts(t, h.Intermediate), mustCerts(t, h.Root))
				require.NoError(t, err)
				require.Equal(t, 3, ch.Len())
				assert.True(t, ch.Certs[0].Equal(mustCert(t, h.Leaf)))
				assert.True(t, ch.Certs[1].Equal(mustCert(t, h.Intermediate)))
				assert.True(t, ch.Certs[2].Equal(mustCert(t, h.Root)))
			},
		},
		{
			name: "Ignores Unrelated Intermediates",
			testFunc: func(t *testing.T) {
				other := pkitest.NewHierarchy(t)
				ch, err := x509chain.Builder{}.Build(mustCert(t, h.Leaf),
					mustCerts(t, other.Intermediate, h.Intermediate, other.Root), mustCerts(t, h.Root))
				require.NoError(t, err)
				assert.Equal(t, 3, ch.Len())
			},
		},
		{
			name: "Prefers Verifying Candidate Among Rotated Intermediates",
			testFunc: func(t *testing.T) {
				subject := h.Intermediate.Cert.Subject
				rotated := pkitest.Issue(t, h.Root, pkitest.Template{
					Subject:   &subject,
					NotBefore: pkitest.IntermediateNotBefore,
					NotAfter:  pkitest.IntermediateNotAfter,
					IsCA:      true,
				})
				require.Equal(t, h.Intermediate.Cert.RawSubject, rotated.Cert.RawSubject)

				ch, err := x509chain.Builder{}.Build(mustCert(t, h.Leaf),
					mustCerts(t, rotated, h.Intermediate), mustCerts(t, h.Root))
				require.NoError(t, err)
				assert.True(t, ch.Certs[1].Equal(mustCert(t, h.Intermediate)))
			},
		},
		{
			name: "Root Directly Issues Leaf",
			testFunc: func(t *testing.T) {
				leaf := pkitest.Issue(t, h.Root, pkitest.Template{
					CommonName: "direct leaf",
					NotBefore:  pkitest.LeafNotBefore,
					NotAfter:   pkitest.LeafNotAfter,
				})
				ch, err := x509chain.Builder{}.Build(mustCert(t, leaf), nil, mustCerts(t, h.Root))
				require.NoError(t, err)
				assert.Equal(t, 2, ch.Len())
				assert.Empty(t, ch.FilterIntermediates())
			},
		},
		{
			name: "Missing Root Match",
			testFunc: func(t *testing.T) {
				other := pkitest.NewRoot(t, "other root", pkitest.RootNotBefore, pkitest.RootNotAfter)
				_, err := x509chain.Builder{}.Build(mustCert(t, h.Leaf), mustCerts(t, h.Intermediate), mustCerts(t, other))
				assert.ErrorIs(t, err, x509status.ErrInvalidChain)
			},
		},
		{
			name: "Untrusted Self-Signed Tail",
			testFunc: func(t *testing.T) {
				other := pkitest.NewRoot(t, "other root", pkitest.RootNotBefore, pkitest.RootNotAfter)
				_, err := x509chain.Builder{}.Build(mustCert(t, h.Leaf), mustCerts(t, h.Intermediate, h.Root), mustCerts(t, other))
				require.ErrorIs(t, err, x509status.ErrInvalidChain)
				assert.Contains(t, err.Error(), "not a trusted root")
			},
		},
		{
			name: "No Roots Configured",
			testFunc: func(t *testing.T) {
				_, err := x509chain.Builder{}.Build(mustCert(t, h.Leaf), mustCerts(t, h.Intermediate), nil)
				assert.ErrorIs(t, err, x509status.ErrInvalidChain)
			},
		},
		{
			name: "Leaf That Is A Trusted Root",
			testFunc: func(t *testing.T) {
				_, err := x509chain.Builder{}.Build(mustCert(t, h.Root), nil, mustCerts(t, h.Root))
				assert.ErrorIs(t, err, x509status.ErrInvalidChain)
			},
		},
		{
			name: "Exceeds Max Length",
			testFunc: func(t *testing.T) {
				_, err := x509chain.Builder{MaxLength: 2}.Build(mustCert(t, h.Leaf), mustCerts(t, h.Intermediate), mustCerts(t, h.Root))
				assert.ErrorIs(t, err, x509status.ErrInvalidChainLength)
			},
		},
		{
			name: "Max Length Counts The Root",
			testFunc: func(t *testing.T) {
				ch, err := x509chain.Builder{MaxLength: 3}.Build(mustCert(t, h.Leaf), mustCerts(t, h.Intermediate), mustCerts(t, h.Root))
				require.NoError(t, err)
				assert.Equal(t, 3, ch.Len())
			},
		},
		{
			name: "Long Chain Uses Default Bound",
			testFunc: func(t *testing.T) {
				parent := h.Root
				var intermediates []*pkitest.Identity
				for i := 0; i < x509chain.DefaultMaxLength; i++ {
					parent = pkitest.Issue(t, parent, pkitest.Template{
						CommonName: "level " + string(rune('A'+i)),
						NotBefore:  pkitest.IntermediateNotBefore,
						NotAfter:   pkitest.IntermediateNotAfter,
						IsCA:       true,
						MaxPathLen: -1,
					})
					intermediates = append(intermediates, parent)
				}
				leaf := pkitest.Issue(t, parent, pkitest.Template{
					CommonName: "deep leaf",
					NotBefore:  pkitest.LeafNotBefore,
					NotAfter:   pkitest.LeafNotAfter,
				})
				_, err := x509chain.Builder{}.Build(mustCert(t, leaf), mustCerts(t, intermediates...), mustCerts(t, h.Root))
				assert.ErrorIs(t, err, x509status.ErrInvalidChainLength)
			},
		},
		{
			name: "Nil Leaf",
			testFunc: func(t *testing.T) {
				_, err := x509chain.Builder{}.Build(nil, nil, mustCerts(t, h.Root))
				assert.ErrorIs(t, err, x509status.ErrInvalidChain)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestVerifier(t *testing.T) {
	h := pkitest.NewHierarchy(t)

	build := func(t *testing.T, leaf *pkitest.Identity, intermediates []*pkitest.Identity, root *pkitest.Identity) *x509chain.Chain {
		t.Helper()
		ch, err := x509chain.Builder{}.Build(mustCert(t, leaf), mustCerts(t, intermediates...), mustCerts(t, root))
		require.NoError(t, err)
		return ch
	}

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Valid Chain At Reference Time",
			testFunc: func(t *testing.T) {
				ch := build(t, h.Leaf, []*pkitest.Identity{h.Intermediate}, h.Root)
				assert.NoError(t, x509chain.Verifier{}.Verify(ch, pkitest.VerifyAt))
				assert.NoError(t, x509chain.Verifier{Strict: true}.Verify(ch, pkitest.VerifyAt))
			},
		},
		{
			name: "Validity Bounds Are Inclusive",
			testFunc: func(t *testing.T) {
				ch := build(t, h.Leaf, []*pkitest.Identity{h.Intermediate}, h.Root)
				assert.NoError(t, x509chain.Verifier{}.Verify(ch, pkitest.LeafNotBefore))
				assert.NoError(t, x509chain.Verifier{}.Verify(ch, pkitest.LeafNotAfter))
				assert.ErrorIs(t, x509chain.Verifier{}.Verify(ch, pkitest.LeafNotAfter.Add(time.Second)), x509status.ErrInvalidChain)
			},
		},
		{
			name: "Expired Leaf",
			testFunc: func(t *testing.T) {
				ch := build(t, h.Leaf, []*pkitest.Identity{h.Intermediate}, h.Root)
				err := x509chain.Verifier{}.Verify(ch, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
				require.ErrorIs(t, err, x509status.ErrInvalidChain)
				assert.Contains(t, err.Error(), "certificate 0")
			},
		},
		{
			name: "Expired Root Is Still Trusted",
			testFunc: func(t *testing.T) {
				root := pkitest.NewRoot(t, "retired root",
					time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
				leaf := pkitest.Issue(t, root, pkitest.Template{
					CommonName: "leaf under retired root",
					NotBefore:  pkitest.LeafNotBefore,
					NotAfter:   pkitest.LeafNotAfter,
				})
				ch := build(t, leaf, nil, root)
				assert.NoError(t, x509chain.Verifier{}.Verify(ch, pkitest.VerifyAt))
			},
		},
		{
			name: "Tampered Signature",
			testFunc: func(t *testing.T) {
				der := append([]byte(nil), h.Leaf.DER()...)
				der[len(der)-1] ^= 0x01
				leaf, err := x509certs.Parse(der)
				require.NoError(t, err)

				ch, err := x509chain.Builder{}.Build(leaf, mustCerts(t, h.Intermediate), mustCerts(t, h.Root))
				require.NoError(t, err)
				assert.ErrorIs(t, x509chain.Verifier{}.Verify(ch, pkitest.VerifyAt), x509status.ErrInvalidChain)
			},
		},
		{
			name: "Broken Name Linkage",
			testFunc: func(t *testing.T) {
				ch := &x509chain.Chain{Certs: mustCerts(t, h.Leaf, h.Root)}
				err := x509chain.Verifier{}.Verify(ch, pkitest.VerifyAt)
				require.ErrorIs(t, err, x509status.ErrInvalidChain)
				assert.Contains(t, err.Error(), "does not match")
			},
		},
		{
			name: "Single Certificate Chain",
			testFunc: func(t *testing.T) {
				ch := &x509chain.Chain{Certs: mustCerts(t, h.Root)}
				assert.ErrorIs(t, x509chain.Verifier{}.Verify(ch, pkitest.VerifyAt), x509status.ErrInvalidChain)
				assert.ErrorIs(t, x509chain.Verifier{}.Verify(nil, pkitest.VerifyAt), x509status.ErrInvalidChain)
			},
		},
		{
			name: "Strict Rejects Non-CA Issuer",
			testFunc: func(t *testing.T) {
				notCA := pkitest.Issue(t, h.Root, pkitest.Template{
					CommonName: "not a ca",
					NotBefore:  pkitest.IntermediateNotBefore,
					NotAfter:   pkitest.IntermediateNotAfter,
				})
				leaf := pkitest.Issue(t, notCA, pkitest.Template{
					CommonName: "leaf under end entity",
					NotBefore:  pkitest.LeafNotBefore,
					NotAfter:   pkitest.LeafNotAfter,
				})
				ch := build(t, leaf, []*pkitest.Identity{notCA}, h.Root)
				assert.NoError(t, x509chain.Verifier{}.Verify(ch, pkitest.VerifyAt))

				err := x509chain.Verifier{Strict: true}.Verify(ch, pkitest.VerifyAt)
				require.ErrorIs(t, err, x509status.ErrInvalidChain)
				assert.Contains(t, err.Error(), "is not a CA")
			},
		},
		{
			name: "Strict Rejects Missing CertSign Usage",
			testFunc: func(t *testing.T) {
				ca := pkitest.Issue(t, h.Root, pkitest.Template{
					CommonName: "signing-only ca",
					NotBefore:  pkitest.IntermediateNotBefore,
					NotAfter:   pkitest.IntermediateNotAfter,
					IsCA:       true,
					MaxPathLen: -1,
					KeyUsage:   x509.KeyUsageDigitalSignature,
				})
				leaf := pkitest.Issue(t, ca, pkitest.Template{
					CommonName: "leaf",
					NotBefore:  pkitest.LeafNotBefore,
					NotAfter:   pkitest.LeafNotAfter,
				})
				ch := build(t, leaf, []*pkitest.Identity{ca}, h.Root)
				err := x509chain.Verifier{Strict: true}.Verify(ch, pkitest.VerifyAt)
				require.ErrorIs(t, err, x509status.ErrInvalidChain)
				assert.Contains(t, err.Error(), "may not sign certificates")
			},
		},
		{
			name: "Strict Enforces Path Length",
			testFunc: func(t *testing.T) {
				sub := pkitest.Issue(t, h.Intermediate, pkitest.Template{
					CommonName: "sub ca",
					NotBefore:  pkitest.IntermediateNotBefore,
					NotAfter:   pkitest.IntermediateNotAfter,
					IsCA:       true,
					MaxPathLen: -1,
				})
				leaf := pkitest.Issue(t, sub, pkitest.Template{
					CommonName: "leaf under sub ca",
					NotBefore:  pkitest.LeafNotBefore,
					NotAfter:   pkitest.LeafNotAfter,
				})
				ch := build(t, leaf, []*pkitest.Identity{sub, h.Intermediate}, h.Root)
				require.Equal(t, 4, ch.Len())
				assert.NoError(t, x509chain.Verifier{}.Verify(ch, pkitest.VerifyAt))

				err := x509chain.Verifier{Strict: true}.Verify(ch, pkitest.VerifyAt)
				require.ErrorIs(t, err, x509status.ErrInvalidChain)
				assert.Contains(t, err.Error(), "path length")
			},
		},
		{
			name: "Required Extensions Present",
			testFunc: func(t *testing.T) {
				ch := build(t, h.Leaf, []*pkitest.Identity{h.Intermediate}, h.Root)
				v := x509chain.Verifier{
					RequiredLeafExtensions:         []asn1.ObjectIdentifier{pkitest.OIDLeafMarker},
					RequiredIntermediateExtensions: []asn1.ObjectIdentifier{pkitest.OIDIntermediateMarker},
				}
				assert.NoError(t, v.Verify(ch, pkitest.VerifyAt))
			},
		},
		{
			name: "Required Extensions Missing",
			testFunc: func(t *testing.T) {
				ch := build(t, h.Leaf, []*pkitest.Identity{h.Intermediate}, h.Root)
				v := x509chain.Verifier{
					RequiredLeafExtensions: []asn1.ObjectIdentifier{pkitest.OIDIntermediateMarker},
				}
				err := v.Verify(ch, pkitest.VerifyAt)
				require.ErrorIs(t, err, x509status.ErrInvalidChain)
				assert.Contains(t, err.Error(), "lacks required extension")

				v = x509chain.Verifier{
					RequiredIntermediateExtensions: []asn1.ObjectIdentifier{pkitest.OIDLeafMarker},
				}
				assert.ErrorIs(t, v.Verify(ch, pkitest.VerifyAt), x509status.ErrInvalidChain)
			},
		},
		{
			name: "Fail Fast Reports First Link",
			testFunc: func(t *testing.T) {
				ch := build(t, h.Leaf, []*pkitest.Identity{h.Intermediate}, h.Root)
				// both leaf and intermediate are expired here; the leaf is reported
				err := x509chain.Verifier{}.Verify(ch, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
				require.ErrorIs(t, err, x509status.ErrInvalidChain)
				assert.Contains(t, err.Error(), "certificate 0")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestVisualization(t *testing.T) {
	h := pkitest.NewHierarchy(t, "http://ocsp.example.test")
	ch := &x509chain.Chain{Certs: mustCerts(t, h.Leaf, h.Intermediate, h.Root)}
	statuses := []string{x509chain.StatusFailed, x509chain.StatusGood, x509chain.StatusTrusted}

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "ASCII Tree",
			testFunc: func(t *testing.T) {
				tree := ch.RenderASCIITree(statuses)
				assert.Contains(t, tree, "[✗] pkitest Leaf (End-Entity (Leaf) Certificate)")
				assert.Contains(t, tree, "[✓] pkitest Intermediate CA")
				assert.Contains(t, tree, "└── [✓] pkitest Root CA")
				assert.Equal(t, "No certificates in chain", (&x509chain.Chain{}).RenderASCIITree(nil))
			},
		},
		{
			name: "Markdown Table",
			testFunc: func(t *testing.T) {
				table := ch.RenderTable(statuses)
				assert.Contains(t, table, "pkitest Leaf")
				assert.Contains(t, table, "256-bit ECDSA")
				assert.Contains(t, table, "ECDSA-SHA256")
				assert.Contains(t, table, x509chain.StatusFailed)
				assert.Equal(t, "No certificates to display", (&x509chain.Chain{}).RenderTable(nil))
			},
		},
		{
			name: "Views",
			testFunc: func(t *testing.T) {
				views := ch.Views(statuses[:1])
				require.Len(t, views, 3)
				assert.Equal(t, x509chain.StatusFailed, views[0].RevocationStatus)
				assert.Equal(t, x509chain.StatusUnknown, views[1].RevocationStatus)
				assert.Equal(t, x509chain.StatusUnknown, views[2].RevocationStatus)
				assert.Equal(t, []string{"http://ocsp.example.test"}, views[0].OCSPServers)
				assert.Equal(t, "Root CA Certificate", views[2].Role)
				assert.True(t, views[2].IsCA)
				assert.Equal(t, 256, views[0].KeySize)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}
