// Package status builds the error vocabulary the mock surfaces to callers:
// the same status codes real Firestore GAPIC clients produce. Every error
// returned across a commit, transaction, or query boundary carries one of
// these codes.
package status

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Errorf builds an error carrying code with a formatted message.
func Errorf(code codes.Code, format string, args ...interface{}) error {
	return status.Errorf(code, format, args...)
}

// New builds an error carrying code with a plain message.
func New(code codes.Code, message string) error {
	return status.Error(code, message)
}

// InvalidArgument: malformed request, unsupported feature, failed
// validation, missing required field.
func InvalidArgument(format string, args ...interface{}) error {
	return Errorf(codes.InvalidArgument, format, args...)
}

// NotFound: precondition exists=true failed, or referenced transaction
// unknown.
func NotFound(format string, args ...interface{}) error {
	return Errorf(codes.NotFound, format, args...)
}

// AlreadyExists: precondition exists=false failed.
func AlreadyExists(format string, args ...interface{}) error {
	return Errorf(codes.AlreadyExists, format, args...)
}

// FailedPrecondition: last_update_time mismatch.
func FailedPrecondition(format string, args ...interface{}) error {
	return Errorf(codes.FailedPrecondition, format, args...)
}

// Aborted: transactional snapshot conflict or transaction already
// completed.
func Aborted(format string, args ...interface{}) error {
	return Errorf(codes.Aborted, format, args...)
}

// Unimplemented: explicitly unsupported path.
func Unimplemented(format string, args ...interface{}) error {
	return Errorf(codes.Unimplemented, format, args...)
}

// Internal: unexpected invariant violation.
func Internal(format string, args ...interface{}) error {
	return Errorf(codes.Internal, format, args...)
}

// Unavailable: operation on a closed client/controller.
func Unavailable(format string, args ...interface{}) error {
	return Errorf(codes.Unavailable, format, args...)
}

// Code extracts the status code carried by err, or codes.Unknown if a
// non-nil err does not carry one. A nil err yields codes.OK.
func Code(err error) codes.Code {
	return status.Code(err)
}

// Is reports whether err carries the given code.
func Is(err error, code codes.Code) bool {
	return Code(err) == code
}

// Message formats err for display, falling back to fmt for non-status
// errors so callers never need a type switch.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if s, ok := status.FromError(err); ok {
		return s.Message()
	}
	return fmt.Sprint(err)
}
