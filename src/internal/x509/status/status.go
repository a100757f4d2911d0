// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509status

import (
	"errors"
	"fmt"
)

// Code is the closed set of verification outcomes reported by the engine.
type Code int

const (
	// OK means the chain and every revocation check passed.
	OK Code = iota
	// InvalidCertificate means a certificate could not be parsed or lacks required fields.
	InvalidCertificate
	// InvalidChainLength means the chain search exceeded the configured maximum depth.
	InvalidChainLength
	// InvalidChain means no path to a trusted root exists, or a link failed its checks.
	InvalidChain
	// VerificationFailure covers every failure of the OCSP stage.
	VerificationFailure
)

// String returns the stable name of the code.
func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case InvalidCertificate:
		return "INVALID_CERTIFICATE"
	case InvalidChainLength:
		return "INVALID_CHAIN_LENGTH"
	case InvalidChain:
		return "INVALID_CHAIN"
	case VerificationFailure:
		return "VERIFICATION_FAILURE"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// MarshalText lets the code appear by name in JSON and YAML output.
func (c Code) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Error is a typed verification failure.
//
// Op names the step that failed (for example "build" or "ocsp"), and Err
// carries the underlying cause, if any.
type Error struct {
	Code Code
	Op   string
	Err  error
}

var (
	// ErrInvalidCertificate matches any error with the InvalidCertificate code.
	ErrInvalidCertificate = &Error{Code: InvalidCertificate}

	// ErrInvalidChainLength matches any error with the InvalidChainLength code.
	ErrInvalidChainLength = &Error{Code: InvalidChainLength}

	// ErrInvalidChain matches any error with the InvalidChain code.
	ErrInvalidChain = &Error{Code: InvalidChain}

	// ErrVerificationFailure matches any error with the VerificationFailure code.
	ErrVerificationFailure = &Error{Code: VerificationFailure}
)

// New creates an Error with a formatted cause.
func New(code Code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a code and operation to err.
// An err that already carries a code keeps it.
func Wrap(code Code, op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return &Error{Code: code, Op: op, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := "x509 verify"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	msg += ": " + e.Code.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Code == e.Code
}

// CodeOf extracts the code carried by err.
//
// A nil error is OK. An error without a code is reported as
// VerificationFailure so that an unexpected failure never reads as a pass.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return VerificationFailure
}
