package errors

import (
	gerrors "errors"
	"fmt"

	bugsnagerrors "github.com/bugsnag/bugsnag-go/v2/errors"
)

func New(text string) *bugsnagerrors.Error {
	return bugsnagerrors.New(text, 1)
}

// NewSentinelError returns a plain error with no stack attached, suitable
// for package-level sentinels matched with errors.Is.
func NewSentinelError(text string) error {
	return gerrors.New(text)
}

func Errorf(format string, a ...any) *bugsnagerrors.Error {
	return bugsnagerrors.New(fmt.Errorf(format, a...), 1)
}

func Wrap(err error) *bugsnagerrors.Error {
	if err == nil {
		return nil
	}
	return bugsnagerrors.New(err, 2)
}

// As unwraps through stack-carrying errors as well as standard wrapping.
func As(err error, target interface{}) bool {
	for err != nil {
		if bugsnagErr, ok := err.(*bugsnagerrors.Error); ok {
			if gerrors.As(bugsnagErr.Err, target) {
				return true
			}
		}
		if gerrors.As(err, target) {
			return true
		}
		err = Unwrap(err)
	}

	return false
}

// Is reports whether err matches original, looking through both standard
// wrapping and the contained error of a stack-carrying error.
func Is(e error, original error) bool {
	for e != nil {
		if gerrors.Is(e, original) {
			return true
		}

		if bugsnagErr, ok := e.(*bugsnagerrors.Error); ok {
			return Is(bugsnagErr.Err, original)
		}

		if bugsnagErr, ok := Unwrap(e).(*bugsnagerrors.Error); ok {
			return Is(bugsnagErr.Err, original)
		}

		if original, ok := original.(*bugsnagerrors.Error); ok {
			return Is(e, original.Err)
		}

		e = Unwrap(e)
	}

	return false
}

func Unwrap(err error) error {
	if bugsnagErr, ok := err.(*bugsnagerrors.Error); ok {
		return bugsnagErr.Err
	}

	if bugsnagErr, ok := gerrors.Unwrap(err).(*bugsnagerrors.Error); ok {
		return bugsnagErr.Err
	}

	return gerrors.Unwrap(err)
}
