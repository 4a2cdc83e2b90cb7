package walletauth

import (
	"fmt"
	"time"
)

// ErrorCode represents auth core error categories.
type ErrorCode string

const (
	ErrCodeMalformedToken        ErrorCode = "malformed_token"
	ErrCodeDecode                ErrorCode = "decode_error"
	ErrCodeExpired               ErrorCode = "token_expired"
	ErrCodeAudienceMismatch      ErrorCode = "audience_mismatch"
	ErrCodeIssuerMismatch        ErrorCode = "issuer_mismatch"
	ErrCodeSigningUnavailable    ErrorCode = "signing_unavailable"
	ErrCodeKeyUnavailable        ErrorCode = "key_unavailable"
	ErrCodeInvalidSignature      ErrorCode = "invalid_signature"
	ErrCodeDelegationGrantFailed ErrorCode = "delegation_grant_failed"
	ErrCodeInternal              ErrorCode = "internal_error"
)

var errorMessages = map[ErrorCode]string{
	ErrCodeMalformedToken:        "Malformed token",
	ErrCodeDecode:                "Decode failed",
	ErrCodeExpired:               "Token expired",
	ErrCodeAudienceMismatch:      "Audience mismatch",
	ErrCodeIssuerMismatch:        "Issuer mismatch",
	ErrCodeSigningUnavailable:    "Signing unavailable",
	ErrCodeKeyUnavailable:        "Key unavailable",
	ErrCodeInvalidSignature:      "Invalid signature",
	ErrCodeDelegationGrantFailed: "Delegation grant failed",
	ErrCodeInternal:              "Internal error",
}

// Error wraps auth core errors with a stable code and message. The optional
// Expected/Actual and ExpiresAt/Observed fields carry structured detail for
// mismatch and expiry failures so callers never parse error strings.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error

	Expected string
	Actual   string

	ExpiresAt time.Time
	Observed  time.Time
}

// Error implements the error interface.
func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = string(e.Code)
	}
	if e.Err == nil {
		return base
	}
	return fmt.Sprintf("%s: %v", base, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, err error) *Error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = string(code)
	}
	return &Error{Code: code, Message: msg, Err: err}
}

func newMismatchError(code ErrorCode, expected, actual string) *Error {
	e := newError(code, fmt.Errorf("expected %q, got %q", expected, actual))
	e.Expected = expected
	e.Actual = actual
	return e
}

func newExpiredError(expiresAt, observed time.Time) *Error {
	e := newError(ErrCodeExpired, fmt.Errorf("expired at %d, observed %d", expiresAt.Unix(), observed.Unix()))
	e.ExpiresAt = expiresAt
	e.Observed = observed
	return e
}
