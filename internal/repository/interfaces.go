package repository

import (
	"context"

	"github.com/osa911/waitlist/internal/models"
)

// InquiryRepository defines the document store operations used by the
// submission pipeline
type InquiryRepository interface {
	// Append stores doc in collection and returns the generated document ID.
	// Failures are returned as *BackendError.
	Append(ctx context.Context, collection string, doc *models.Inquiry) (string, error)
	// Close releases the underlying client
	Close() error
}
