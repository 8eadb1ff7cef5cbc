// Package clierrors defines the failure taxonomy shared by all commands.
//
// Every error that reaches the root command is classified into exactly one
// category, and each category maps to its own process exit code so callers
// can distinguish failure classes without parsing log output.
package clierrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category classifies a command failure.
type Category int

const (
	// CategoryUsage covers conflicting or missing arguments, detected before any I/O.
	CategoryUsage Category = iota + 1
	// CategoryMalformedInput covers unparseable paths, references and amounts.
	CategoryMalformedInput
	// CategoryUnknownChain covers chain names missing from the registry.
	CategoryUnknownChain
	// CategoryUnknownUnit covers unrecognized ether denomination suffixes.
	CategoryUnknownUnit
	// CategoryDevice covers failures reported by the signing device itself.
	CategoryDevice
	// CategoryNodeUnavailable covers unreachable chain/node endpoints when
	// required values could not be resolved without them.
	CategoryNodeUnavailable
	// CategoryFirmwareHeader covers firmware images without a recognized magic marker.
	CategoryFirmwareHeader
	// CategoryFingerprintMismatch covers firmware fingerprint verification failures.
	CategoryFingerprintMismatch
)

// Error is a categorized command failure.
type Error struct {
	Category Category
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a categorized error from a format string.
func New(category Category, format string, args ...interface{}) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a category and message to an underlying error.
func Wrap(category Category, err error, format string, args ...interface{}) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Cause:    err,
	}
}

// CategoryOf returns the category of err, or 0 for uncategorized errors.
func CategoryOf(err error) Category {
	var categorized *Error
	if errors.As(err, &categorized) {
		return categorized.Category
	}

	return 0
}

// ExitCode maps an error to the process exit code reported to the shell.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch CategoryOf(err) {
	case CategoryUsage:
		return 2
	case CategoryMalformedInput:
		return 3
	case CategoryUnknownChain, CategoryUnknownUnit:
		return 4
	case CategoryDevice:
		return 5
	case CategoryNodeUnavailable:
		return 6
	case CategoryFirmwareHeader, CategoryFingerprintMismatch:
		return 7
	default:
		return 1
	}
}
