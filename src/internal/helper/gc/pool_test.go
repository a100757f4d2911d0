// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/gc"
)

type errorReader struct{ err error }

func (e errorReader) Read([]byte) (int, error) { return 0, e.err }

// countingPool records how many buffers are handed out and returned.
type countingPool struct {
	gc.Pool
	mu       sync.Mutex
	gets     int
	puts     int
	lastSeen gc.Buffer
}

func (c *countingPool) Get() gc.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	c.lastSeen = c.Pool.Get()
	return c.lastSeen
}

func (c *countingPool) Put(b gc.Buffer) {
	c.mu.Lock()
	c.puts++
	c.mu.Unlock()
	c.Pool.Put(b)
}

func TestReadLimited(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Within Limit",
			testFunc: func(t *testing.T) {
				data, err := gc.ReadLimited(gc.Default, strings.NewReader("ocsp-response"), 64)
				require.NoError(t, err)
				assert.Equal(t, []byte("ocsp-response"), data)
			},
		},
		{
			name: "Exactly At Limit",
			testFunc: func(t *testing.T) {
				data, err := gc.ReadLimited(gc.Default, bytes.NewReader(make([]byte, 16)), 16)
				require.NoError(t, err)
				assert.Len(t, data, 16)
			},
		},
		{
			name: "Over Limit",
			testFunc: func(t *testing.T) {
				_, err := gc.ReadLimited(gc.Default, bytes.NewReader(make([]byte, 17)), 16)
				assert.ErrorIs(t, err, gc.ErrLimitExceeded)
			},
		},
		{
			name: "No Limit",
			testFunc: func(t *testing.T) {
				data, err := gc.ReadLimited(gc.Default, bytes.NewReader(make([]byte, 1<<16)), 0)
				require.NoError(t, err)
				assert.Len(t, data, 1<<16)
			},
		},
		{
			name: "Reader Error",
			testFunc: func(t *testing.T) {
				want := errors.New("connection reset")
				_, err := gc.ReadLimited(gc.Default, errorReader{err: want}, 16)
				assert.ErrorIs(t, err, want)
			},
		},
		{
			name: "Result Outlives Buffer",
			testFunc: func(t *testing.T) {
				p := &countingPool{Pool: gc.NewPool()}
				data, err := gc.ReadLimited(p, strings.NewReader("first"), 0)
				require.NoError(t, err)

				assert.Equal(t, 1, p.gets)
				assert.Equal(t, 1, p.puts)
				assert.Zero(t, p.lastSeen.Len(), "buffer must be reset before reuse")

				_, err = gc.ReadLimited(p, strings.NewReader("second"), 0)
				require.NoError(t, err)
				assert.Equal(t, []byte("first"), data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestPool(t *testing.T) {
	p := gc.NewPool()

	buf := p.Get()
	_, err := buf.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, buf.Len())
	buf.Reset()
	p.Put(buf)

	assert.NotPanics(t, func() { p.Put(&bytes.Buffer{}) })
}

func TestConcurrentReads(t *testing.T) {
	const workers = 16
	payload := bytes.Repeat([]byte{0xAB}, 4096)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Go(func() {
			data, err := gc.ReadLimited(gc.Default, bytes.NewReader(payload), int64(len(payload)))
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(data, payload) {
				errs <- errors.New("payload mismatch")
			}
		})
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
