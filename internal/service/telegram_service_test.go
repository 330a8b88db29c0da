package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa911/waitlist/internal/models"
)

func TestTelegramService_NotifyInquiry(t *testing.T) {
	var (
		gotPath string
		gotMsg  telegramMessage
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotMsg))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewTelegramService("bot-token", "42")
	svc.baseURL = srv.URL

	err := svc.NotifyInquiry(context.Background(), "01J0", &models.Inquiry{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Org:       "Tom & Jerry",
		Country:   "US",
		Notes:     "scriptalert(1)/script",
	})

	require.NoError(t, err)
	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
	assert.Equal(t, "42", gotMsg.ChatID)
	assert.Equal(t, "HTML", gotMsg.ParseMode)
	assert.Contains(t, gotMsg.Text, "Jane Doe")
	assert.Contains(t, gotMsg.Text, "Tom &amp; Jerry")
	assert.Contains(t, gotMsg.Text, "<b>Notes:</b>")
	assert.NotContains(t, gotMsg.Text, "<b>Title:</b>")
}

func TestTelegramService_Errors(t *testing.T) {
	err := NewTelegramService("", "").NotifyInquiry(context.Background(), "x", &models.Inquiry{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	svc := NewTelegramService("t", "c")
	svc.baseURL = srv.URL
	err = svc.NotifyInquiry(context.Background(), "x", &models.Inquiry{})
	assert.ErrorContains(t, err, "status 401")
}
