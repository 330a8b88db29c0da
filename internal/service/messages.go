package service

import (
	"strings"

	"github.com/osa911/waitlist/internal/repository"
)

// User-facing messages. Abuse rejections share one generic text so the
// response never tells a bot which heuristic fired.
const (
	SuccessMessage      = "Thank you for your inquiry. We will get back to you soon."
	RejectedMessage     = "We could not process your submission. Please try again later."
	UnexpectedMessage   = "An unexpected error occurred."
	validationMsgPrefix = "Validation failed: "
)

// ValidationMessage joins validation reasons into one message.
func ValidationMessage(reasons []string) string {
	return validationMsgPrefix + strings.Join(reasons, ", ")
}

// UserMessage turns a backend failure into the text shown to the visitor.
// Every ErrorClass has an arm; raw is only used for ClassUnknown.
func UserMessage(class repository.ErrorClass, raw string) string {
	switch class {
	case repository.ClassPermissionDenied:
		return "Permission denied. Please contact support."
	case repository.ClassUnavailable:
		return "Service temporarily unavailable. Please try again later."
	case repository.ClassInvalidArgument:
		return "Invalid data provided. Please check your input."
	case repository.ClassDeadlineExceeded:
		return "Request timeout. Please try again."
	case repository.ClassAlreadyExists:
		return "This inquiry already exists."
	case repository.ClassResourceExhausted:
		return "Service quota exceeded. Please try again later."
	case repository.ClassUnknown:
		if raw != "" {
			return raw
		}
		return UnexpectedMessage
	default:
		return UnexpectedMessage
	}
}
