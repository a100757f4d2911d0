// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ocsp

import (
	"crypto"
	"encoding/asn1"
)

// OIDResponseTypeBasic identifies id-pkix-ocsp-basic responses.
var OIDResponseTypeBasic = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 1}

// CertID hash algorithms.
var (
	OIDHashSHA1   = asn1.ObjectIdentifier{1, 3, 14, 3, 2, 26}
	OIDHashSHA256 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}
	OIDHashSHA384 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 2}
	OIDHashSHA512 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 3}
)

// HashFromOID maps a CertID hash algorithm. Unknown OIDs yield zero.
func HashFromOID(oid asn1.ObjectIdentifier) crypto.Hash {
	switch {
	case oid.Equal(OIDHashSHA1):
		return crypto.SHA1
	case oid.Equal(OIDHashSHA256):
		return crypto.SHA256
	case oid.Equal(OIDHashSHA384):
		return crypto.SHA384
	case oid.Equal(OIDHashSHA512):
		return crypto.SHA512
	default:
		return 0
	}
}
