// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/config"
	x509verify "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/verify"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"

	// MaxRequestBytes caps the size of a verify request body.
	MaxRequestBytes = 1 << 20

	shutdownTimeout = 5 * time.Second
)

// Server is the HTTP front end of the verifier.
type Server struct {
	r       *gin.Engine
	base    x509verify.Config
	version string
	log     *logger.StructuredLogger
}

// NewServer loads cfg into the engine configuration and builds the router.
// Roots are read and the OCSP client is created here, once; requests only
// layer their overrides on a copy. A nil cfg means [config.Default] and a
// nil log discards output.
//
// Returns:
//   - *Server: Ready to serve
//   - error: Unreadable root file or malformed OID in cfg
func NewServer(cfg *config.Config, version string, log *logger.StructuredLogger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.NewStructuredLogger(io.Discard, true)
	}

	base, err := cfg.ToVerifyConfig(version, nil)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{r: r, base: base, version: version, log: log}
	r.Use(s.accessLog())
	s.routes()
	return s, nil
}

// Handler returns the router for use with a custom [http.Server] or httptest.
func (s *Server) Handler() http.Handler { return s.r }

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.r.Group("/v1")
	{
		v1.GET("/version", s.handleVersion)
		v1.GET("/schema", s.handleSchema)
		v1.POST("/verify", s.handleVerify)
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithField("method", c.Request.Method).
			WithField("path", c.FullPath()).
			WithField("status", c.Writer.Status()).
			WithField("latency_ms", time.Since(start).Milliseconds()).
			Printf("request served")
	}
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
//
// Returns:
//   - error: The listener error, or nil after a clean shutdown
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// ListenAndServe listens on addr, or [DefaultAddr] when empty, and calls [Server.Serve].
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.log.WithField("addr", ln.Addr().String()).Printf("http api listening")
	return s.Serve(ctx, ln)
}
