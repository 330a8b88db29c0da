package repository

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/osa911/waitlist/internal/models"
)

// MemoryRepository keeps documents in process. It backs local development
// when no Firestore credentials are available, and the tests.
type MemoryRepository struct {
	mu      sync.Mutex
	docs    map[string]map[string]models.Inquiry
	order   map[string][]string
	fail    error
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

// NewMemoryRepository creates an empty in-memory store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		docs:    make(map[string]map[string]models.Inquiry),
		order:   make(map[string][]string),
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// FailWith makes every following Append return err, classified. Passing nil
// restores normal behavior.
func (r *MemoryRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

// Append stores a copy of doc under a new ULID
func (r *MemoryRepository) Append(ctx context.Context, collection string, doc *models.Inquiry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", Classify(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail != nil {
		return "", Classify(r.fail)
	}

	now := r.now()
	id, err := ulid.New(ulid.Timestamp(now), r.entropy)
	if err != nil {
		return "", Classify(err)
	}

	stored := *doc
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now.UTC()
	}

	if r.docs[collection] == nil {
		r.docs[collection] = make(map[string]models.Inquiry)
	}
	key := id.String()
	r.docs[collection][key] = stored
	r.order[collection] = append(r.order[collection], key)
	return key, nil
}

// Get returns the stored document, if any
func (r *MemoryRepository) Get(collection, id string) (models.Inquiry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[collection][id]
	return doc, ok
}

// Count returns the number of documents in collection
func (r *MemoryRepository) Count(collection string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order[collection])
}

// Close is a no-op
func (r *MemoryRepository) Close() error {
	return nil
}
