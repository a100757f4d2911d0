// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pkitest

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ocsp"
)

// Status values accepted by [Entry.Status], shared with x/crypto/ocsp.
const (
	Good    = ocsp.Good
	Revoked = ocsp.Revoked
	Unknown = ocsp.Unknown
)

var (
	oidOCSPBasic       = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 1}
	oidECDSAWithSHA256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}
	oidSHA256WithRSA   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}
	oidEd25519         = asn1.ObjectIdentifier{1, 3, 101, 112}

	hashOIDs = map[crypto.Hash]asn1.ObjectIdentifier{
		crypto.SHA1:   {1, 3, 14, 3, 2, 26},
		crypto.SHA256: {2, 16, 840, 1, 101, 3, 4, 2, 1},
		crypto.SHA384: {2, 16, 840, 1, 101, 3, 4, 2, 2},
		crypto.SHA512: {2, 16, 840, 1, 101, 3, 4, 2, 3},
	}
)

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

type singleResponse struct {
	CertID     certID
	Good       asn1.Flag   `asn1:"tag:0,optional"`
	Revoked    revokedInfo `asn1:"tag:1,optional"`
	Unknown    asn1.Flag   `asn1:"tag:2,optional"`
	ThisUpdate time.Time   `asn1:"generalized"`
	NextUpdate time.Time   `asn1:"generalized,explicit,tag:0,optional"`
}

type responseData struct {
	Version        int `asn1:"optional,default:0,explicit,tag:0"`
	RawResponderID asn1.RawValue
	ProducedAt     time.Time `asn1:"generalized"`
	Responses      []singleResponse
}

type basicResponse struct {
	TBSResponseData    asn1.RawValue
	SignatureAlgorithm pkix.AlgorithmIdentifier
	Signature          asn1.BitString
	Certificates       []asn1.RawValue `asn1:"explicit,tag:0,optional"`
}

type responseBytes struct {
	ResponseType asn1.ObjectIdentifier
	Response     []byte
}

type ocspResponse struct {
	Status   asn1.Enumerated
	Response responseBytes `asn1:"explicit,tag:0,optional"`
}

// ResponderIDKind selects how a response names its signer.
type ResponderIDKind int

const (
	ByName ResponderIDKind = iota
	ByKeyHash
	BySPKIHash
	NoResponderID
)

// Entry configures the answer for one certificate serial.
type Entry struct {
	// Issuer issued the certificate in question; its name and key feed the CertID.
	Issuer *Identity
	// Signer signs the response. Nil means Issuer.
	Signer *Identity
	// Embed lists the certificates carried in the response. When nil and the
	// signer differs from the issuer, the signer certificate is embedded.
	Embed []*x509.Certificate

	Status      int
	ResponderID ResponderIDKind
	// CertIDHash defaults to SHA-1.
	CertIDHash crypto.Hash
	// CertIDSerial replaces the serial in the single response.
	CertIDSerial *big.Int
	// ResponseStatus, when non-zero, yields an unsuccessful response without body.
	ResponseStatus int
	// CorruptSignature flips a byte of the signature.
	CorruptSignature bool
	// HTTPStatus replaces the 200 reply code.
	HTTPStatus int
	// Body replaces the whole reply body.
	Body []byte
}

// Responder is an http.Handler answering OCSP POST requests from configured entries.
type Responder struct {
	mu      sync.Mutex
	entries map[string]Entry

	requests    atomic.Int64
	lastHash    atomic.Int64
	contentType atomic.Value
}

// NewResponder returns an empty responder. Unknown serials get an
// "unauthorized" response.
func NewResponder() *Responder {
	return &Responder{entries: make(map[string]Entry)}
}

// Set configures the answer for serial.
func (r *Responder) Set(serial *big.Int, e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[serial.String()] = e
}

// SetGood answers good for cert, signed by issuer.
func (r *Responder) SetGood(cert, issuer *Identity) {
	r.Set(cert.Cert.SerialNumber, Entry{Issuer: issuer, Status: Good})
}

// Requests returns how many requests were served.
func (r *Responder) Requests() int { return int(r.requests.Load()) }

// LastRequestHash returns the CertID hash of the last parsed request.
func (r *Responder) LastRequestHash() crypto.Hash { return crypto.Hash(r.lastHash.Load()) }

// LastContentType returns the Content-Type of the last request.
func (r *Responder) LastContentType() string {
	v, _ := r.contentType.Load().(string)
	return v
}

// ServeHTTP implements http.Handler.
func (r *Responder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.requests.Add(1)
	r.contentType.Store(req.Header.Get("Content-Type"))

	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ocspReq, err := ocsp.ParseRequest(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	r.lastHash.Store(int64(ocspReq.HashAlgorithm))

	r.mu.Lock()
	entry, ok := r.entries[ocspReq.SerialNumber.String()]
	r.mu.Unlock()

	w.Header().Set("Content-Type", "application/ocsp-response")
	if !ok {
		w.Write(ocsp.UnauthorizedErrorResponse)
		return
	}
	if entry.HTTPStatus != 0 {
		w.WriteHeader(entry.HTTPStatus)
	}
	if entry.Body != nil {
		w.Write(entry.Body)
		return
	}

	resp, err := CreateResponse(entry, ocspReq.SerialNumber)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write(resp)
}

// ProducedAt is the fixed production time of generated responses.
var ProducedAt = time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)

// CreateResponse encodes and signs a BasicOCSPResponse for serial according to e.
func CreateResponse(e Entry, serial *big.Int) ([]byte, error) {
	if e.ResponseStatus != 0 {
		return asn1.Marshal(ocspResponse{Status: asn1.Enumerated(e.ResponseStatus)})
	}

	signer := e.Signer
	if signer == nil {
		signer = e.Issuer
	}
	hash := e.CertIDHash
	if hash == 0 {
		hash = crypto.SHA1
	}

	id, err := makeCertID(e.Issuer.Cert, serial, hash)
	if err != nil {
		return nil, err
	}
	if e.CertIDSerial != nil {
		id.SerialNumber = e.CertIDSerial
	}

	single := singleResponse{
		CertID:     id,
		ThisUpdate: ProducedAt,
		NextUpdate: ProducedAt.Add(7 * 24 * time.Hour),
	}
	switch e.Status {
	case Good:
		single.Good = true
	case Revoked:
		single.Revoked = revokedInfo{RevocationTime: ProducedAt.Add(-time.Hour)}
	default:
		single.Unknown = true
	}

	responderID, err := makeResponderID(e.ResponderID, signer.Cert)
	if err != nil {
		return nil, err
	}

	tbs, err := asn1.Marshal(responseData{
		RawResponderID: responderID,
		ProducedAt:     ProducedAt,
		Responses:      []singleResponse{single},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal response data: %w", err)
	}

	sig, sigAlg, err := sign(signer.Key, tbs)
	if err != nil {
		return nil, err
	}
	if e.CorruptSignature {
		sig[len(sig)/2] ^= 0xff
	}

	embed := e.Embed
	if embed == nil && signer != e.Issuer {
		embed = []*x509.Certificate{signer.Cert}
	}
	var certs []asn1.RawValue
	for _, c := range embed {
		certs = append(certs, asn1.RawValue{FullBytes: c.Raw})
	}

	basic, err := asn1.Marshal(basicResponse{
		TBSResponseData:    asn1.RawValue{FullBytes: tbs},
		SignatureAlgorithm: sigAlg,
		Signature:          asn1.BitString{Bytes: sig, BitLength: 8 * len(sig)},
		Certificates:       certs,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal basic response: %w", err)
	}

	return asn1.Marshal(ocspResponse{
		Status:   asn1.Enumerated(ocsp.Success),
		Response: responseBytes{ResponseType: oidOCSPBasic, Response: basic},
	})
}

// sign picks the algorithm from the key: ECDSA-SHA256, SHA256-RSA
// (PKCS #1 v1.5) or Ed25519.
func sign(key crypto.Signer, tbs []byte) ([]byte, pkix.AlgorithmIdentifier, error) {
	digest := sha256.Sum256(tbs)

	switch k := key.(type) {
	case *ecdsa.PrivateKey:
		sig, err := ecdsa.SignASN1(rand.Reader, k, digest[:])
		return sig, pkix.AlgorithmIdentifier{Algorithm: oidECDSAWithSHA256}, err
	case *rsa.PrivateKey:
		sig, err := rsa.SignPKCS1v15(rand.Reader, k, crypto.SHA256, digest[:])
		return sig, pkix.AlgorithmIdentifier{Algorithm: oidSHA256WithRSA, Parameters: asn1.NullRawValue}, err
	case ed25519.PrivateKey:
		return ed25519.Sign(k, tbs), pkix.AlgorithmIdentifier{Algorithm: oidEd25519}, nil
	default:
		return nil, pkix.AlgorithmIdentifier{}, fmt.Errorf("unsupported signer key %T", key)
	}
}

func makeCertID(issuer *x509.Certificate, serial *big.Int, hash crypto.Hash) (certID, error) {
	oid, ok := hashOIDs[hash]
	if !ok {
		return certID{}, fmt.Errorf("unsupported CertID hash %v", hash)
	}

	var spki struct {
		Algorithm pkix.AlgorithmIdentifier
		PublicKey asn1.BitString
	}
	if _, err := asn1.Unmarshal(issuer.RawSubjectPublicKeyInfo, &spki); err != nil {
		return certID{}, err
	}

	h := hash.New()
	h.Write(issuer.RawSubject)
	nameHash := h.Sum(nil)

	h.Reset()
	h.Write(spki.PublicKey.RightAlign())
	keyHash := h.Sum(nil)

	return certID{
		HashAlgorithm: pkix.AlgorithmIdentifier{Algorithm: oid, Parameters: asn1.NullRawValue},
		NameHash:      nameHash,
		IssuerKeyHash: keyHash,
		SerialNumber:  serial,
	}, nil
}

func makeResponderID(kind ResponderIDKind, signer *x509.Certificate) (asn1.RawValue, error) {
	switch kind {
	case ByName:
		return asn1.RawValue{Class: asn1.ClassContextSpecific, Tag: 1, IsCompound: true, Bytes: signer.RawSubject}, nil

	case ByKeyHash, BySPKIHash:
		var keyHash []byte
		if kind == BySPKIHash {
			sum := sha1.Sum(signer.RawSubjectPublicKeyInfo)
			keyHash = sum[:]
		} else {
			var spki struct {
				Algorithm pkix.AlgorithmIdentifier
				PublicKey asn1.BitString
			}
			if _, err := asn1.Unmarshal(signer.RawSubjectPublicKeyInfo, &spki); err != nil {
				return asn1.RawValue{}, err
			}
			sum := sha1.Sum(spki.PublicKey.RightAlign())
			keyHash = sum[:]
		}
		inner, err := asn1.Marshal(keyHash)
		if err != nil {
			return asn1.RawValue{}, err
		}
		return asn1.RawValue{Class: asn1.ClassContextSpecific, Tag: 2, IsCompound: true, Bytes: inner}, nil

	default:
		inner, _ := asn1.Marshal([]byte{})
		return asn1.RawValue{Class: asn1.ClassContextSpecific, Tag: 0, IsCompound: true, Bytes: inner}, nil
	}
}
