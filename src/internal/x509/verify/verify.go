// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"context"
	"encoding/asn1"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
	x509ocsp "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/ocsp"
	x509status "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

// Config is the trust and policy input of a verification.
//
// It is passed by value on every call and never stored, so one Config can
// serve any number of concurrent verifications.
type Config struct {
	// Roots are the DER encoded trusted anchors.
	Roots [][]byte

	// MaxChainLength bounds chain construction; zero means x509chain.DefaultMaxLength.
	MaxChainLength int

	// Strict enables CA constraint checks on every issuer.
	Strict bool

	RequiredLeafExtensions         []asn1.ObjectIdentifier
	RequiredIntermediateExtensions []asn1.ObjectIdentifier

	// DisableOnlineChecks skips OCSP. The zero value keeps revocation checking on.
	DisableOnlineChecks bool

	// MaxConcurrentChecks limits parallel OCSP checks; zero means one per certificate.
	MaxConcurrentChecks int

	// HTTPConfig supplies timeout and User-Agent for OCSP requests.
	HTTPConfig *x509ocsp.HTTPConfig

	// Transport overrides the HTTP client used for OCSP.
	Transport x509ocsp.Transport

	// MaxResponseSize caps OCSP bodies; zero means x509ocsp.DefaultMaxResponseSize.
	MaxResponseSize int64

	// Logger traces the stages. Nil discards.
	Logger logger.Logger
}

// Request holds the certificates of one verification.
type Request struct {
	// Leaf is the DER end-entity certificate.
	Leaf []byte
	// Intermediates are DER certificates in any order.
	Intermediates [][]byte
	// At is the verification time; zero means now.
	At time.Time
}

// Verdict is the outcome of [VerifyChainAndRevocation].
//
// Status is OK exactly when Err is nil. Chain is set once a chain was built,
// even if a later stage failed.
type Verdict struct {
	Status x509status.Code
	Err    error
	Chain  *x509chain.Chain
	At     time.Time

	// Revocation holds one label per chain position; Revocation[i]
	// describes Chain.Certs[i]. Nil when the chain never reached the
	// revocation stage.
	Revocation []string
}

// Verified reports whether every stage passed.
func (v Verdict) Verified() bool { return v.Status == x509status.OK && v.Err == nil }

func failed(err error, ch *x509chain.Chain, at time.Time) Verdict {
	return Verdict{Status: x509status.CodeOf(err), Err: err, Chain: ch, At: at}
}

// VerifyChainAndRevocation builds a chain from req to one of cfg.Roots,
// verifies it and then checks every non-root certificate with OCSP.
//
// The OCSP checks run concurrently. The first failure cancels the checks
// still in flight and all of them are awaited before returning.
//
// Parameters:
//   - ctx: Context for cancellation of the OCSP stage
//   - cfg: Trust anchors and policy
//   - req: Certificates and verification time
//
// Returns:
//   - Verdict: Verified, or the first failure with its [x509status.Code]
//
// Thread Safety: Safe for concurrent use; no state is kept between calls.
func VerifyChainAndRevocation(ctx context.Context, cfg Config, req Request) Verdict {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard
	}

	at := req.At
	if at.IsZero() {
		at = time.Now()
	}

	leaf, err := x509certs.Parse(req.Leaf)
	if err != nil {
		return failed(x509status.Wrap(x509status.InvalidCertificate, "leaf", err), nil, at)
	}
	intermediates, err := x509certs.ParseAll(req.Intermediates)
	if err != nil {
		return failed(x509status.Wrap(x509status.InvalidCertificate, "intermediates", err), nil, at)
	}
	roots, err := x509certs.ParseAll(cfg.Roots)
	if err != nil {
		return failed(x509status.Wrap(x509status.InvalidCertificate, "roots", err), nil, at)
	}

	ch, err := x509chain.Builder{MaxLength: cfg.MaxChainLength}.Build(leaf, intermediates, roots)
	if err != nil {
		log.Printf("chain build failed: %v", err)
		return failed(err, nil, at)
	}
	log.Printf("chain built with %d certificates (%d intermediates)", ch.Len(), len(ch.FilterIntermediates()))

	verifier := x509chain.Verifier{
		Strict:                         cfg.Strict,
		RequiredLeafExtensions:         cfg.RequiredLeafExtensions,
		RequiredIntermediateExtensions: cfg.RequiredIntermediateExtensions,
	}
	if err := verifier.Verify(ch, at); err != nil {
		log.Printf("chain verification failed: %v", err)
		return failed(err, ch, at)
	}

	statuses := make([]string, ch.Len())
	statuses[ch.Len()-1] = x509chain.StatusTrusted
	if cfg.DisableOnlineChecks {
		for i := range ch.NonRoot() {
			statuses[i] = x509chain.StatusSkipped
		}
		log.Printf("online revocation checks disabled")
		return Verdict{Status: x509status.OK, Chain: ch, At: at, Revocation: statuses}
	}

	results, err := checkRevocation(ctx, cfg, ch, at, log)
	copy(statuses, results)
	if err != nil {
		log.Printf("revocation check failed: %v", err)
		v := failed(err, ch, at)
		v.Revocation = statuses
		return v
	}

	log.Printf("chain verified")
	return Verdict{Status: x509status.OK, Chain: ch, At: at, Revocation: statuses}
}

// checkRevocation runs one OCSP check per non-root certificate and returns
// the per-certificate outcome labels alongside the first error.
func checkRevocation(ctx context.Context, cfg Config, ch *x509chain.Chain, at time.Time, log logger.Logger) ([]string, error) {
	checker := &x509ocsp.Checker{
		Transport:       cfg.Transport,
		HTTPConfig:      cfg.HTTPConfig,
		MaxResponseSize: cfg.MaxResponseSize,
		Logger:          log,
	}

	certs := ch.NonRoot()
	results := make([]string, len(certs))

	g, gctx := errgroup.WithContext(ctx)
	if cfg.MaxConcurrentChecks > 0 {
		g.SetLimit(cfg.MaxConcurrentChecks)
	}

	for i, cert := range certs {
		g.Go(func() error {
			err := checker.Check(gctx, cert, ch.IssuerOf(i), ch.Root(), at)
			switch {
			case err == nil:
				results[i] = x509chain.StatusGood
			case errors.Is(err, context.Canceled) && ctx.Err() == nil:
				// cancelled because a sibling check failed first
				results[i] = x509chain.StatusUnknown
			default:
				results[i] = x509chain.StatusFailed
			}
			return err
		})
	}

	return results, g.Wait()
}
