package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/osa911/waitlist/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		class   ErrorClass
		message string
	}{
		{"permission denied", status.Error(codes.PermissionDenied, "missing rules"), ClassPermissionDenied, "missing rules"},
		{"unauthenticated", status.Error(codes.Unauthenticated, "no token"), ClassPermissionDenied, "no token"},
		{"unavailable", status.Error(codes.Unavailable, "down"), ClassUnavailable, "down"},
		{"invalid argument", status.Error(codes.InvalidArgument, "bad field"), ClassInvalidArgument, "bad field"},
		{"deadline status", status.Error(codes.DeadlineExceeded, "slow"), ClassDeadlineExceeded, "slow"},
		{"already exists", status.Error(codes.AlreadyExists, "dup"), ClassAlreadyExists, "dup"},
		{"resource exhausted", status.Error(codes.ResourceExhausted, "quota"), ClassResourceExhausted, "quota"},
		{"other grpc code", status.Error(codes.Internal, "boom"), ClassUnknown, "boom"},
		{"context deadline", fmt.Errorf("add: %w", context.DeadlineExceeded), ClassDeadlineExceeded, "add: context deadline exceeded"},
		{"plain error", errors.New("weird"), ClassUnknown, "weird"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := Classify(tt.err)
			require.NotNil(t, be)
			assert.Equal(t, tt.class, be.Class)
			assert.Equal(t, tt.message, be.Message)
			assert.True(t, errors.Is(be, tt.err))
		})
	}

	assert.Nil(t, Classify(nil))
}

func TestClassify_KeepsExistingBackendError(t *testing.T) {
	orig := &BackendError{Class: ClassAlreadyExists, Message: "dup"}
	assert.Same(t, orig, Classify(fmt.Errorf("wrapped: %w", orig)))
}

func TestErrorClassStringsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range ErrorClasses() {
		s := c.String()
		assert.False(t, seen[s], "duplicate %q", s)
		seen[s] = true
	}
}

func TestMemoryRepository_Append(t *testing.T) {
	repo := NewMemoryRepository()
	fixed := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	doc := &models.Inquiry{FirstName: "Jane", Email: "jane@example.com", Timestamp: fixed.UnixMilli()}
	id1, err := repo.Append(context.Background(), "inquiries", doc)
	require.NoError(t, err)
	id2, err := repo.Append(context.Background(), "inquiries", doc)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.Less(t, id1, id2, "ids sort by insertion")
	parsed, err := ulid.ParseStrict(id1)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(fixed), parsed.Time())

	got, ok := repo.Get("inquiries", id1)
	require.True(t, ok)
	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, fixed, got.CreatedAt)
	assert.True(t, doc.CreatedAt.IsZero(), "caller's document is not modified")
	assert.Equal(t, 2, repo.Count("inquiries"))
	assert.Equal(t, 0, repo.Count("other"))
}

func TestMemoryRepository_InjectedFailure(t *testing.T) {
	repo := NewMemoryRepository()
	repo.FailWith(status.Error(codes.Unavailable, "backend offline"))

	_, err := repo.Append(context.Background(), "inquiries", &models.Inquiry{})
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ClassUnavailable, be.Class)
	assert.Equal(t, 0, repo.Count("inquiries"))

	repo.FailWith(nil)
	_, err = repo.Append(context.Background(), "inquiries", &models.Inquiry{})
	assert.NoError(t, err)
}

func TestMemoryRepository_CanceledContext(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := repo.Append(ctx, "inquiries", &models.Inquiry{})
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ClassDeadlineExceeded, be.Class)
}
