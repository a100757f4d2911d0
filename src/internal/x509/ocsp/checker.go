// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ocsp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/gc"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509status "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

// DefaultMaxResponseSize caps the responder body read.
const DefaultMaxResponseSize = 1 << 20

var (
	// ErrNoResponderURL is returned when a certificate lists no OCSP responder.
	ErrNoResponderURL = errors.New("x509ocsp: certificate has no OCSP responder URL")

	// ErrResponseTooLarge is returned when a body exceeds the size cap.
	ErrResponseTooLarge = errors.New("x509ocsp: response exceeds size limit")

	// ErrHTTPStatus is returned for any reply code other than 200.
	ErrHTTPStatus = errors.New("x509ocsp: unexpected HTTP status")

	// ErrCertificateStatus is returned when the matching answer is not good.
	ErrCertificateStatus = errors.New("x509ocsp: certificate status is not good")

	// ErrNoMatchingResponse is returned when no single response names the certificate.
	ErrNoMatchingResponse = errors.New("x509ocsp: no single response for certificate")
)

// Checker asks a certificate's OCSP responders whether it is revoked.
//
// The zero value is usable: it sends requests with a default client and
// [DefaultTimeout].
type Checker struct {
	// Transport sends the requests. Nil means HTTPConfig.Client().
	Transport Transport
	// HTTPConfig supplies the per-call timeout and User-Agent.
	HTTPConfig *HTTPConfig
	// MaxResponseSize caps the body read; zero means DefaultMaxResponseSize.
	MaxResponseSize int64
	// Logger receives one line per responder attempt. Nil discards.
	Logger logger.Logger
}

// Check confirms that cert is not revoked.
//
// Responder URLs from the AIA extension are tried in order. A URL that
// cannot be reached, answers with a non-200 code, or returns a response that
// does not parse or is not successful is skipped. The first parseable,
// successful response is final: its signer must be found and authorized,
// its signature must verify and a single response matching cert must say
// good.
//
// Parameters:
//   - ctx: Context for cancellation
//   - cert: Certificate to check
//   - issuer: Its issuer in the verified chain
//   - root: Trusted root of the chain
//   - at: Time used to validate a delegated responder certificate
//
// Returns:
//   - error: nil when the certificate is good, otherwise an error carrying
//     [x509status.VerificationFailure]
//
// Thread Safety: Safe for concurrent use if Transport is.
func (c *Checker) Check(ctx context.Context, cert, issuer, root *x509certs.Certificate, at time.Time) error {
	const op = "ocsp"

	urls := cert.OCSPServers()
	if len(urls) == 0 {
		return x509status.Wrap(x509status.VerificationFailure, op,
			fmt.Errorf("%w: %q", ErrNoResponderURL, cert.Subject()))
	}

	reqDER, err := BuildRequest(cert, issuer)
	if err != nil {
		return x509status.Wrap(x509status.VerificationFailure, op, err)
	}

	var lastErr error
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return x509status.Wrap(x509status.VerificationFailure, op, err)
		}

		body, err := c.fetch(ctx, url, reqDER)
		if err != nil {
			c.logf("ocsp: %s: %v", url, err)
			lastErr = err
			continue
		}

		resp, err := ParseResponse(body)
		if err != nil {
			c.logf("ocsp: %s: %v", url, err)
			lastErr = err
			continue
		}

		if err := evaluate(resp, cert, issuer, root, at); err != nil {
			c.logf("ocsp: %s: serial %s rejected: %v", url, cert.SerialNumber(), err)
			return x509status.Wrap(x509status.VerificationFailure, op, fmt.Errorf("%s: %w", url, err))
		}

		c.logf("ocsp: %s: serial %s is good", url, cert.SerialNumber())
		return nil
	}

	return x509status.Wrap(x509status.VerificationFailure, op,
		fmt.Errorf("all %d responders failed, last: %w", len(urls), lastErr))
}

func evaluate(resp *Response, cert, issuer, root *x509certs.Certificate, at time.Time) error {
	signer, err := FindSigningCertificate(resp, issuer)
	if err != nil {
		return err
	}
	if err := AuthorizeSigner(signer, issuer, root, at); err != nil {
		return err
	}
	if err := VerifySignature(resp, signer); err != nil {
		return err
	}

	matched := false
	for _, single := range resp.Responses {
		if single.CertID.Hash == 0 {
			continue
		}
		want, err := DeriveCertID(cert, issuer, single.CertID.Hash)
		if err != nil || !want.Matches(single.CertID) {
			continue
		}
		if single.Status != Good {
			return fmt.Errorf("%w: %s", ErrCertificateStatus, single.Status)
		}
		matched = true
	}
	if !matched {
		return ErrNoMatchingResponse
	}

	return nil
}

func (c *Checker) fetch(ctx context.Context, url string, reqDER []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.HTTPConfig.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqDER))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/ocsp-request")
	req.Header.Set("Accept", "application/ocsp-response")
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.transport().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	limit := c.MaxResponseSize
	if limit <= 0 {
		limit = DefaultMaxResponseSize
	}

	body, err := gc.ReadLimited(gc.Default, resp.Body, limit)
	switch {
	case errors.Is(err, gc.ErrLimitExceeded):
		return nil, ErrResponseTooLarge
	case err != nil:
		return nil, fmt.Errorf("read response: %w", err)
	}

	return body, nil
}

func (c *Checker) transport() Transport {
	if c.Transport != nil {
		return c.Transport
	}
	if c.HTTPConfig != nil {
		return c.HTTPConfig.Client()
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func (c *Checker) userAgent() string {
	if c.HTTPConfig != nil {
		return c.HTTPConfig.GetUserAgent()
	}
	return (&HTTPConfig{Version: "dev"}).GetUserAgent()
}

func (c *Checker) logf(format string, v ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, v...)
	}
}
