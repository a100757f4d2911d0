// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain builds and validates [X.509] certificate chains.
// It provides capabilities to:
//   - Order a leaf and unordered intermediates into a chain ending at a pinned root.
//   - Verify each link for name linkage, validity and signature, with optional CA constraints.
//   - Render a verified chain as a tree, a markdown table or JSON.
//   - Fetch the certificates a TLS endpoint presents.
//
// Building and verifying are pure computations over immutable inputs and
// need no synchronization.
//
// [X.509]: https://grokipedia.com/page/X.509
package x509chain
