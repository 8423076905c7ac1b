package manager

import (
	"errors"
	"fmt"
)

// unsupportedEnvironmentError: the capability provider is absent. Fatal for
// the feature's session, reported once at start.
type unsupportedEnvironmentError struct{ capability string }

func (e unsupportedEnvironmentError) Error() string {
	return "capability not supported in this environment: " + e.capability
}

// ErrUnsupportedEnvironment constructs an unsupportedEnvironmentError.
func ErrUnsupportedEnvironment(capability string) error {
	return unsupportedEnvironmentError{capability: capability}
}

// IsUnsupportedEnvironment reports whether err indicates a missing provider.
func IsUnsupportedEnvironment(err error) bool {
	var e unsupportedEnvironmentError
	return errors.As(err, &e)
}

// creationFailedError wraps a rejected capability creation.
type creationFailedError struct {
	feature string
	err     error
}

func (e creationFailedError) Error() string {
	return fmt.Sprintf("%s: creation failed: %v", e.feature, e.err)
}

func (e creationFailedError) Unwrap() error { return e.err }

// ErrCreationFailed constructs a creationFailedError.
func ErrCreationFailed(feature string, err error) error {
	return creationFailedError{feature: feature, err: err}
}

// IsCreationFailed reports whether err is a failed capability creation.
func IsCreationFailed(err error) bool {
	var e creationFailedError
	return errors.As(err, &e)
}

// emptyInputError is a local precondition failure; no host call was made.
type emptyInputError struct{ feature string }

func (e emptyInputError) Error() string { return e.feature + ": input is empty" }

// ErrEmptyInput constructs an emptyInputError.
func ErrEmptyInput(feature string) error { return emptyInputError{feature: feature} }

// IsEmptyInput reports whether err is an empty-input rejection.
func IsEmptyInput(err error) bool {
	var e emptyInputError
	return errors.As(err, &e)
}

// invocationFailedError wraps a host call or stream pull that failed
// mid-operation. The handle stays usable.
type invocationFailedError struct {
	feature string
	mode    Mode
	err     error
}

func (e invocationFailedError) Error() string {
	return fmt.Sprintf("%s: %s invocation failed: %v", e.feature, e.mode, e.err)
}

func (e invocationFailedError) Unwrap() error { return e.err }

// ErrInvocationFailed constructs an invocationFailedError.
func ErrInvocationFailed(feature string, mode Mode, err error) error {
	return invocationFailedError{feature: feature, mode: mode, err: err}
}

// IsInvocationFailed reports whether err is a failed invocation.
func IsInvocationFailed(err error) bool {
	var e invocationFailedError
	return errors.As(err, &e)
}

// detectionFailedError: the detector rejected or returned no candidates.
type detectionFailedError struct {
	reason string
	err    error
}

func (e detectionFailedError) Error() string {
	if e.err != nil {
		return "language detection failed: " + e.err.Error()
	}
	return "language detection failed: " + e.reason
}

func (e detectionFailedError) Unwrap() error { return e.err }

// ErrDetectionFailed constructs a detectionFailedError. err may be nil.
func ErrDetectionFailed(reason string, err error) error {
	return detectionFailedError{reason: reason, err: err}
}

// IsDetectionFailed reports whether err is a detection failure.
func IsDetectionFailed(err error) bool {
	var e detectionFailedError
	return errors.As(err, &e)
}

// sessionClosedError: the session was torn down; late results are discarded.
type sessionClosedError struct{ feature string }

func (e sessionClosedError) Error() string { return e.feature + ": session closed" }

// ErrSessionClosed constructs a sessionClosedError.
func ErrSessionClosed(feature string) error { return sessionClosedError{feature: feature} }

// IsSessionClosed reports whether err indicates teardown.
func IsSessionClosed(err error) bool {
	var e sessionClosedError
	return errors.As(err, &e)
}

// supersededError: a newer request with a different config won while this
// one was waiting or creating.
type supersededError struct{ feature string }

func (e supersededError) Error() string {
	return e.feature + ": request superseded by a newer configuration"
}

// ErrSuperseded constructs a supersededError.
func ErrSuperseded(feature string) error { return supersededError{feature: feature} }

// IsSuperseded reports whether err indicates a superseded request.
func IsSuperseded(err error) bool {
	var e supersededError
	return errors.As(err, &e)
}
