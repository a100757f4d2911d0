// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ocsp

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"time"

	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
)

var (
	// ErrMalformedResponse is returned when the response is not valid DER.
	ErrMalformedResponse = errors.New("x509ocsp: malformed response")

	// ErrUnsuccessful is returned for any response status other than successful.
	ErrUnsuccessful = errors.New("x509ocsp: unsuccessful response status")

	// ErrUnsupportedResponseType is returned for response types other than basic.
	ErrUnsupportedResponseType = errors.New("x509ocsp: unsupported response type")
)

// ResponseStatus is the outer OCSPResponseStatus.
type ResponseStatus int

const (
	Successful       ResponseStatus = 0
	MalformedRequest ResponseStatus = 1
	InternalError    ResponseStatus = 2
	TryLater         ResponseStatus = 3
	SigRequired      ResponseStatus = 5
	Unauthorized     ResponseStatus = 6
)

func (s ResponseStatus) String() string {
	switch s {
	case Successful:
		return "successful"
	case MalformedRequest:
		return "malformedRequest"
	case InternalError:
		return "internalError"
	case TryLater:
		return "tryLater"
	case SigRequired:
		return "sigRequired"
	case Unauthorized:
		return "unauthorized"
	default:
		return fmt.Sprintf("ResponseStatus(%d)", int(s))
	}
}

// CertStatus is the per-certificate answer.
type CertStatus int

const (
	Good CertStatus = iota
	Revoked
	Unknown
)

func (s CertStatus) String() string {
	switch s {
	case Good:
		return "good"
	case Revoked:
		return "revoked"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("CertStatus(%d)", int(s))
	}
}

// ResponderIDKind tells how a response names its signer.
type ResponderIDKind int

const (
	// ResponderIDMissing covers a responder identifier that is neither form.
	ResponderIDMissing ResponderIDKind = iota
	ResponderIDByName
	ResponderIDByKeyHash
)

// SingleResponse is the status of one certificate.
//
// CertID.Hash is zero when the response used a hash algorithm this package
// does not support; such entries never match.
type SingleResponse struct {
	CertID         CertID
	HashAlgorithm  asn1.ObjectIdentifier
	Status         CertStatus
	ThisUpdate     time.Time
	NextUpdate     time.Time
	RevokedAt      time.Time
	RevocationCode int
}

// Response is a parsed BasicOCSPResponse.
type Response struct {
	Status       ResponseStatus
	ResponseType asn1.ObjectIdentifier

	ResponderIDKind ResponderIDKind
	// ResponderName is the DER Name when ResponderIDKind is ResponderIDByName.
	ResponderName []byte
	// ResponderKeyHash is set when ResponderIDKind is ResponderIDByKeyHash.
	ResponderKeyHash []byte

	ProducedAt time.Time

	// TBSResponseData holds the exact signed bytes.
	TBSResponseData    []byte
	SignatureAlgorithm x509certs.SignatureAlgorithm
	SignatureOID       asn1.ObjectIdentifier
	Signature          []byte

	Certificates []*x509certs.Certificate
	Responses    []SingleResponse
}

type responseASN1 struct {
	Status   asn1.Enumerated
	Response responseBytes `asn1:"explicit,tag:0,optional"`
}

type responseBytes struct {
	ResponseType asn1.ObjectIdentifier
	Response     []byte
}

type basicResponse struct {
	TBSResponseData    responseData
	SignatureAlgorithm pkix.AlgorithmIdentifier
	Signature          asn1.BitString
	Certificates       []asn1.RawValue `asn1:"explicit,tag:0,optional"`
}

type responseData struct {
	Raw            asn1.RawContent
	Version        int `asn1:"optional,default:0,explicit,tag:0"`
	RawResponderID asn1.RawValue
	ProducedAt     time.Time `asn1:"generalized"`
	Responses      []singleResponse
	Extensions     []pkix.Extension `asn1:"explicit,tag:1,optional"`
}

type singleResponse struct {
	CertID     certID
	CertStatus asn1.RawValue
	ThisUpdate time.Time        `asn1:"generalized"`
	NextUpdate time.Time        `asn1:"generalized,explicit,tag:0,optional"`
	Extensions []pkix.Extension `asn1:"explicit,tag:1,optional"`
}

type certID struct {
	HashAlgorithm pkix.AlgorithmIdentifier
	NameHash      []byte
	IssuerKeyHash []byte
	SerialNumber  *big.Int
}

type revokedInfo struct {
	RevocationTime time.Time       `asn1:"generalized"`
	Reason         asn1.Enumerated `asn1:"explicit,tag:0,optional"`
}

// ParseResponse decodes a DER OCSPResponse.
//
// A response whose outer status is not successful is returned together with
// [ErrUnsuccessful] so the caller can report the status. Responses other than
// id-pkix-ocsp-basic fail with [ErrUnsupportedResponseType].
//
// The signature is not checked here.
//
// Parameters:
//   - der: Response body
//
// Returns:
//   - *Response: Parsed response
//   - error: Decoding failure
func ParseResponse(der []byte) (*Response, error) {
	var outer responseASN1
	rest, err := asn1.Unmarshal(der, &outer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedResponse)
	}

	resp := &Response{Status: ResponseStatus(outer.Status)}
	if resp.Status != Successful {
		return resp, fmt.Errorf("%w: %s", ErrUnsuccessful, resp.Status)
	}

	resp.ResponseType = outer.Response.ResponseType
	if !resp.ResponseType.Equal(OIDResponseTypeBasic) {
		return resp, fmt.Errorf("%w: %s", ErrUnsupportedResponseType, resp.ResponseType)
	}

	var basic basicResponse
	rest, err = asn1.Unmarshal(outer.Response.Response, &basic)
	if err != nil {
		return nil, fmt.Errorf("%w: basic response: %v", ErrMalformedResponse, err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: trailing data after basic response", ErrMalformedResponse)
	}

	tbs := basic.TBSResponseData
	resp.TBSResponseData = tbs.Raw
	resp.ProducedAt = tbs.ProducedAt
	resp.SignatureOID = basic.SignatureAlgorithm.Algorithm
	resp.SignatureAlgorithm = x509certs.SignatureAlgorithmFromOID(basic.SignatureAlgorithm)
	resp.Signature = basic.Signature.RightAlign()

	if err := resp.parseResponderID(tbs.RawResponderID); err != nil {
		return nil, err
	}

	for i, raw := range basic.Certificates {
		cert, err := x509certs.Parse(raw.FullBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: embedded certificate %d: %v", ErrMalformedResponse, i, err)
		}
		resp.Certificates = append(resp.Certificates, cert)
	}

	for i, sr := range tbs.Responses {
		single, err := parseSingleResponse(sr)
		if err != nil {
			return nil, fmt.Errorf("%w: single response %d: %v", ErrMalformedResponse, i, err)
		}
		resp.Responses = append(resp.Responses, single)
	}

	return resp, nil
}

func (r *Response) parseResponderID(raw asn1.RawValue) error {
	if raw.Class != asn1.ClassContextSpecific {
		return nil
	}

	switch raw.Tag {
	case 1:
		var name asn1.RawValue
		if rest, err := asn1.Unmarshal(raw.Bytes, &name); err != nil || len(rest) > 0 {
			return fmt.Errorf("%w: responder name", ErrMalformedResponse)
		}
		r.ResponderIDKind = ResponderIDByName
		r.ResponderName = name.FullBytes

	case 2:
		var keyHash []byte
		if rest, err := asn1.Unmarshal(raw.Bytes, &keyHash); err != nil || len(rest) > 0 {
			return fmt.Errorf("%w: responder key hash", ErrMalformedResponse)
		}
		r.ResponderIDKind = ResponderIDByKeyHash
		r.ResponderKeyHash = keyHash
	}

	return nil
}

func parseSingleResponse(sr singleResponse) (SingleResponse, error) {
	out := SingleResponse{
		HashAlgorithm: sr.CertID.HashAlgorithm.Algorithm,
		CertID: CertID{
			Hash:         HashFromOID(sr.CertID.HashAlgorithm.Algorithm),
			NameHash:     sr.CertID.NameHash,
			KeyHash:      sr.CertID.IssuerKeyHash,
			SerialNumber: sr.CertID.SerialNumber,
		},
		ThisUpdate: sr.ThisUpdate,
		NextUpdate: sr.NextUpdate,
	}

	if sr.CertStatus.Class != asn1.ClassContextSpecific {
		return out, fmt.Errorf("unexpected cert status class %d", sr.CertStatus.Class)
	}
	switch sr.CertStatus.Tag {
	case 0:
		out.Status = Good
	case 1:
		var info revokedInfo
		if _, err := asn1.UnmarshalWithParams(sr.CertStatus.FullBytes, &info, "tag:1"); err != nil {
			return out, fmt.Errorf("revoked info: %v", err)
		}
		out.Status = Revoked
		out.RevokedAt = info.RevocationTime
		out.RevocationCode = int(info.Reason)
	case 2:
		out.Status = Unknown
	default:
		return out, fmt.Errorf("unknown cert status tag %d", sr.CertStatus.Tag)
	}

	return out, nil
}
