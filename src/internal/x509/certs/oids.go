// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import "encoding/asn1"

// Extension and key purpose OIDs used during verification.
var (
	// id-pe-authorityInfoAccess
	OIDExtensionAuthorityInfoAccess = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 1}

	// id-ce-extKeyUsage
	OIDExtensionExtKeyUsage = asn1.ObjectIdentifier{2, 5, 29, 37}

	// id-ce-basicConstraints
	OIDExtensionBasicConstraints = asn1.ObjectIdentifier{2, 5, 29, 19}

	// id-ce-keyUsage
	OIDExtensionKeyUsage = asn1.ObjectIdentifier{2, 5, 29, 15}

	// id-kp-OCSPSigning
	OIDExtKeyUsageOCSPSigning = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 9}
)
