// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package httpapi

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/config"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509verify "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
)

var errEmptyInput = errors.New("empty certificate input")

// ErrorResponse is the body of every non-verdict error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type verifyRequest struct {
	Certificate     string   `json:"certificate"`
	Intermediates   []string `json:"intermediates"`
	Roots           []string `json:"roots"`
	At              string   `json:"at"`
	CheckRevocation *bool    `json:"checkRevocation"`
	Strict          bool     `json:"strict"`
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": "x509-chain-verifier", "version": s.version})
}

func (s *Server) handleSchema(c *gin.Context) {
	c.Data(http.StatusOK, "application/schema+json", config.Schema())
}

func (s *Server) handleVerify(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBytes)

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.Certificate == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "certificate is required")
		return
	}

	var at time.Time
	if req.At != "" {
		t, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "at must be RFC 3339")
			return
		}
		at = t
	}

	certs, err := decodeCertificates(req.Certificate)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_CERTIFICATE", fmt.Sprintf("certificate: %v", err))
		return
	}
	vreq := x509verify.Request{Leaf: certs[0], Intermediates: certs[1:], At: at}
	for i, input := range req.Intermediates {
		ders, err := decodeCertificates(input)
		if err != nil {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_CERTIFICATE", fmt.Sprintf("intermediates[%d]: %v", i, err))
			return
		}
		vreq.Intermediates = append(vreq.Intermediates, ders...)
	}

	vcfg := s.base
	vcfg.Logger = s.log.WithField("route", "verify")
	vcfg.Strict = vcfg.Strict || req.Strict
	if req.CheckRevocation != nil && !*req.CheckRevocation {
		vcfg.DisableOnlineChecks = true
	}
	for i, input := range req.Roots {
		ders, err := decodeCertificates(input)
		if err != nil {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_CERTIFICATE", fmt.Sprintf("roots[%d]: %v", i, err))
			return
		}
		vcfg.Roots = append(slices.Clip(vcfg.Roots), ders...)
	}

	verdict := x509verify.VerifyChainAndRevocation(c.Request.Context(), vcfg, vreq)
	status := http.StatusOK
	if !verdict.Verified() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, verdict.Report())
}

// decodeCertificates accepts PEM text or base64 of any format the decoder reads.
func decodeCertificates(input string) ([][]byte, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errEmptyInput
	}

	data := []byte(input)
	if !strings.HasPrefix(input, "-----BEGIN") {
		decoded, err := base64.StdEncoding.DecodeString(input)
		if err != nil {
			return nil, fmt.Errorf("not PEM or base64: %w", err)
		}
		data = decoded
	}

	ders, err := x509certs.New().DecodeDER(data)
	if err != nil {
		return nil, err
	}
	if len(ders) == 0 {
		return nil, x509certs.ErrParseCertificate
	}
	return ders, nil
}
