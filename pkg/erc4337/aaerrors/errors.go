// Package aaerrors holds the typed failures shared by the account builder and
// the bundler client. All of them are returned to the immediate caller, never
// logged or retried internally.
package aaerrors

import (
	"fmt"
	"math/big"
)

// ConfigurationError means a required external dependency (factory address,
// bundler URL, ...) is missing or malformed. Not retryable.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// InvalidKeyError means the passkey public key cannot initialise an account.
type InvalidKeyError struct {
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid passkey: %s", e.Reason)
}

// ChainMismatchError is returned when a bundler or provider reports a chain id
// other than the configured one. It is permanent for the client that saw it.
type ChainMismatchError struct {
	Endpoint string
	Expected *big.Int
	Actual   *big.Int
}

func (e *ChainMismatchError) Error() string {
	return fmt.Sprintf("bundler %s is on chainId %s, but provider is on chainId %s", e.Endpoint, e.Actual, e.Expected)
}

// SigningError wraps a failed passkey ceremony. Callers can match the cause
// with errors.Is against passkey.ErrUserCancelled or passkey.ErrAuthenticator.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("cannot sign user operation: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}
