// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"fmt"
	"strings"
	"time"

	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
	x509status "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
)

// Report is the JSON shape of a [Verdict].
type Report struct {
	Verified      bool                        `json:"verified"`
	Status        x509status.Code             `json:"status"`
	Error         string                      `json:"error,omitempty"`
	VerifiedAt    time.Time                   `json:"verifiedAt"`
	ChainLength   int                         `json:"chainLength,omitempty"`
	Intermediates int                         `json:"intermediates,omitempty"`
	Certificates  []x509chain.CertificateView `json:"certificates,omitempty"`
}

// Report summarizes the verdict for JSON output.
func (v Verdict) Report() Report {
	r := Report{
		Verified:   v.Verified(),
		Status:     v.Status,
		VerifiedAt: v.At.UTC(),
	}
	if v.Err != nil {
		r.Error = v.Err.Error()
	}
	if v.Chain != nil {
		r.ChainLength = v.Chain.Len()
		r.Intermediates = len(v.Chain.FilterIntermediates())
		r.Certificates = v.Chain.Views(v.Revocation)
	}
	return r
}

// Text renders the chain as a markdown table, or as an ASCII tree when tree
// is set, followed by a one-line result.
func (v Verdict) Text(tree bool) string {
	var b strings.Builder
	if v.Chain != nil {
		if tree {
			b.WriteString(v.Chain.RenderASCIITree(v.Revocation))
		} else {
			b.WriteString(v.Chain.RenderTable(v.Revocation))
		}
		b.WriteString("\n")
	}

	result := "VERIFIED"
	if !v.Verified() {
		result = "FAILED"
	}
	fmt.Fprintf(&b, "Result: %s (%s) at %s\n", result, v.Status, v.At.UTC().Format(time.RFC3339))
	if v.Err != nil {
		fmt.Fprintf(&b, "Reason: %v\n", v.Err)
	}
	return b.String()
}
