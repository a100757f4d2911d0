// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger defines the interface for logging operations.
//
// The CLI writes human-readable lines through [CLILogger]; the [MCP] server
// and the verification engine use [StructuredLogger] so that stdio stays
// reserved for protocol traffic.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
func NewCLILogger() *CLILogger {
	return &CLILogger{logger: log.New(os.Stdout, "", 0)}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// StructuredLogger implements Logger on top of [logrus], writing one JSON
// object per line.
//
// It suppresses output when silent, since [MCP] communication happens over
// stdio. Every entry carries the fields set with [StructuredLogger.WithField].
//
// StructuredLogger is safe for concurrent use by multiple goroutines.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type StructuredLogger struct {
	base   *logrus.Logger
	entry  *logrus.Entry
	silent bool
}

// NewStructuredLogger creates a JSON logger writing to writer.
// A nil writer discards output.
func NewStructuredLogger(writer io.Writer, silent bool) *StructuredLogger {
	if writer == nil {
		writer = io.Discard
	}
	base := logrus.New()
	base.SetOutput(writer)
	base.SetLevel(logrus.DebugLevel)
	base.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{logrus.FieldKeyMsg: "message"},
	})
	return &StructuredLogger{base: base, entry: logrus.NewEntry(base), silent: silent}
}

// WithField returns a logger that adds key=value to every entry.
func (s *StructuredLogger) WithField(key string, value any) *StructuredLogger {
	return &StructuredLogger{base: s.base, entry: s.entry.WithField(key, value), silent: s.silent}
}

// Printf logs an info entry.
func (s *StructuredLogger) Printf(format string, v ...any) {
	if s.silent {
		return
	}
	s.entry.Info(fmt.Sprintf(format, v...))
}

// Println logs an info entry.
func (s *StructuredLogger) Println(v ...any) {
	if s.silent {
		return
	}
	s.entry.Info(fmt.Sprint(v...))
}

// Errorf logs an error entry.
func (s *StructuredLogger) Errorf(format string, v ...any) {
	if s.silent {
		return
	}
	s.entry.Error(fmt.Sprintf(format, v...))
}

// SetOutput sets the output destination. A nil writer discards output.
// Loggers derived with WithField share the destination.
func (s *StructuredLogger) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	s.base.SetOutput(w)
}

// Discard is a Logger that drops everything.
var Discard Logger = discard{}

type discard struct{}

func (discard) Printf(string, ...any) {}
func (discard) Println(...any)        {}
func (discard) SetOutput(io.Writer)   {}
