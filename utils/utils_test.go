package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSendEmail(t *testing.T) {
	var got emailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Zoho-enczapikey k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	z := NewZeptoMail(ZeptoConfig{APIURL: srv.URL, APIKey: "Zoho-enczapikey k", From: "noreply@sifia.ci", FromName: "SIFIA"}, nil)
	err := z.SendEmail(context.Background(), Message{To: "awa@example.com", ToName: "Awa", ReplyTo: "visitor@example.com", Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "noreply@sifia.ci", got.From.Address)
	assert.Equal(t, "SIFIA", got.From.Name)
	require.Len(t, got.To, 1)
	assert.Equal(t, "awa@example.com", got.To[0].Email.Address)
	require.Len(t, got.ReplyTo, 1)
	assert.Equal(t, "<p>x</p>", got.HtmlBody)
}

func TestSendEmailRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	z := NewZeptoMail(ZeptoConfig{APIURL: srv.URL, APIKey: "k", From: "noreply@sifia.ci"}, nil)
	err := z.SendEmail(context.Background(), Message{To: "awa@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSendEmailNotConfigured(t *testing.T) {
	z := NewZeptoMail(ZeptoConfig{}, nil)
	err := z.SendEmail(context.Background(), Message{To: "a@b.c"})
	assert.ErrorIs(t, err, ErrEmailNotConfigured)
}

func TestExtractPublicID(t *testing.T) {
	id, err := ExtractPublicID("https://res.cloudinary.com/demo/raw/upload/v1712345678/receipts/SIFIA-2025-ABC123.html")
	require.NoError(t, err)
	assert.Equal(t, "receipts/SIFIA-2025-ABC123", id)

	id, err = ExtractPublicID("https://res.cloudinary.com/demo/image/upload/events/pic.jpg")
	require.NoError(t, err)
	assert.Equal(t, "events/pic", id)

	_, err = ExtractPublicID("https://example.com/nothing")
	assert.Error(t, err)
}

func TestGenerateETag(t *testing.T) {
	id := primitive.NewObjectID()
	now := time.Now()

	a := GenerateETag(id, now)
	assert.Equal(t, a, GenerateETag(id, now))
	assert.NotEqual(t, a, GenerateETag(id, now.Add(time.Millisecond)))
	assert.Regexp(t, `^"[0-9a-f]{40}"$`, a)
}
