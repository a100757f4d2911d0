// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"errors"
	"io"

	"github.com/valyala/bytebufferpool"
)

// ErrLimitExceeded is returned by [ReadLimited] when the reader holds more
// than the allowed number of bytes.
var ErrLimitExceeded = errors.New("gc: read limit exceeded")

// Buffer is the subset of [bytebufferpool.ByteBuffer] the application uses.
type Buffer interface {
	Write(p []byte) (int, error)
	Bytes() []byte
	Len() int
	Reset()
	ReadFrom(r io.Reader) (int64, error)
}

// Pool hands out reusable buffers.
//
// Implementations must be safe for concurrent use.
type Pool interface {
	Get() Buffer
	Put(b Buffer)
}

type pool struct{ p *bytebufferpool.Pool }

func (p *pool) Get() Buffer { return p.p.Get() }

// Put returns b to the pool. Buffers not obtained from a bytebufferpool are dropped.
func (p *pool) Put(b Buffer) {
	if buf, ok := b.(*bytebufferpool.ByteBuffer); ok {
		p.p.Put(buf)
	}
}

// NewPool returns an empty pool.
func NewPool() Pool { return &pool{p: &bytebufferpool.Pool{}} }

// Default is the process-wide pool.
//
// Example:
//
//	buf := gc.Default.Get()
//	defer func() {
//		buf.Reset()
//		gc.Default.Put(buf)
//	}()
//
//	if _, err := buf.ReadFrom(resp.Body); err != nil {
//		return nil, err
//	}
var Default = NewPool()

// ReadLimited reads r to EOF through a pooled buffer and returns a copy of
// at most limit bytes. A reader holding more than limit bytes yields
// [ErrLimitExceeded]; limit <= 0 disables the bound.
func ReadLimited(p Pool, r io.Reader, limit int64) ([]byte, error) {
	buf := p.Get()
	defer func() {
		buf.Reset()
		p.Put(buf)
	}()

	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	n, err := buf.ReadFrom(r)
	if err != nil {
		return nil, err
	}
	if limit > 0 && n > limit {
		return nil, ErrLimitExceeded
	}

	return append([]byte(nil), buf.Bytes()...), nil
}
