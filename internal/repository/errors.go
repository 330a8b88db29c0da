package repository

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorClass is the closed set of backend failure kinds the pipeline knows
// how to explain to a user.
type ErrorClass int

const (
	ClassUnknown ErrorClass = iota
	ClassPermissionDenied
	ClassUnavailable
	ClassInvalidArgument
	ClassDeadlineExceeded
	ClassAlreadyExists
	ClassResourceExhausted
)

// ErrorClasses lists every class, in declaration order.
func ErrorClasses() []ErrorClass {
	return []ErrorClass{
		ClassUnknown,
		ClassPermissionDenied,
		ClassUnavailable,
		ClassInvalidArgument,
		ClassDeadlineExceeded,
		ClassAlreadyExists,
		ClassResourceExhausted,
	}
}

func (c ErrorClass) String() string {
	switch c {
	case ClassPermissionDenied:
		return "permission-denied"
	case ClassUnavailable:
		return "unavailable"
	case ClassInvalidArgument:
		return "invalid-argument"
	case ClassDeadlineExceeded:
		return "deadline-exceeded"
	case ClassAlreadyExists:
		return "already-exists"
	case ClassResourceExhausted:
		return "resource-exhausted"
	default:
		return "unknown"
	}
}

// BackendError is a classified persistence failure.
type BackendError struct {
	Class   ErrorClass
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error (%s)", e.Class)
	}
	return fmt.Sprintf("backend error (%s): %s", e.Class, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Classify converts any error returned by a backend client into a
// *BackendError. gRPC status codes and context errors are mapped; anything
// else is ClassUnknown with the raw message kept.
func Classify(err error) *BackendError {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &BackendError{Class: ClassDeadlineExceeded, Message: err.Error(), Err: err}
	case errors.Is(err, context.Canceled):
		return &BackendError{Class: ClassUnavailable, Message: err.Error(), Err: err}
	}

	if st, ok := status.FromError(err); ok {
		return &BackendError{Class: classForCode(st.Code()), Message: st.Message(), Err: err}
	}
	return &BackendError{Class: ClassUnknown, Message: err.Error(), Err: err}
}

func classForCode(code codes.Code) ErrorClass {
	switch code {
	case codes.PermissionDenied, codes.Unauthenticated:
		return ClassPermissionDenied
	case codes.Unavailable:
		return ClassUnavailable
	case codes.InvalidArgument:
		return ClassInvalidArgument
	case codes.DeadlineExceeded:
		return ClassDeadlineExceeded
	case codes.AlreadyExists:
		return ClassAlreadyExists
	case codes.ResourceExhausted:
		return ClassResourceExhausted
	default:
		return ClassUnknown
	}
}
