// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package gc pools the byte buffers used to read network responses so that
// concurrent revocation checks do not allocate a fresh buffer per request.
// It wraps [bytebufferpool] behind small interfaces.
//
// [bytebufferpool]: https://github.com/valyala/bytebufferpool
package gc
