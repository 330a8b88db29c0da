package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/osa911/waitlist/internal/models"
)

// firestoreRepository implements InquiryRepository on Cloud Firestore
type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new InquiryRepository backed by client
func NewFirestoreRepository(client *firestore.Client) InquiryRepository {
	return &firestoreRepository{
		client: client,
	}
}

// Append adds doc to collection with an auto-generated ID
func (r *firestoreRepository) Append(ctx context.Context, collection string, doc *models.Inquiry) (string, error) {
	ref, _, err := r.client.Collection(collection).Add(ctx, doc)
	if err != nil {
		return "", Classify(err)
	}
	return ref.ID, nil
}

// Close closes the Firestore client
func (r *firestoreRepository) Close() error {
	return r.client.Close()
}
