package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailer(t *testing.T, handler http.HandlerFunc) *ResendMailer {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := NewResendMailer("re_test")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	m.client.BaseURL = base
	return m
}

func TestResendMailerSendEmail(t *testing.T) {
	var got map[string]any
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/emails"))
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"email-123"}`))
	})

	id, err := m.SendEmail(context.Background(), Email{
		From:    "BuildAtScale <onboarding@resend.dev>",
		To:      []string{"accounts@buildatscale.tv"},
		Subject: "New Request from Ada",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "email-123", id)
	assert.Equal(t, "New Request from Ada", got["subject"])
	assert.Equal(t, "<p>hi</p>", got["html"])
}

func TestResendMailerCreateContact(t *testing.T) {
	var got map[string]any
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "aud-1")
		assert.True(t, strings.HasSuffix(r.URL.Path, "/contacts"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"contact","id":"contact-9"}`))
	})

	id, err := m.CreateContact(context.Background(), Contact{Email: "ada@example.com", AudienceID: "aud-1"})
	require.NoError(t, err)

	assert.Equal(t, "contact-9", id)
	assert.Equal(t, "ada@example.com", got["email"])
}

func TestResendMailerCreateContactError(t *testing.T) {
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Contact already exists"}`))
	})

	_, err := m.CreateContact(context.Background(), Contact{Email: "ada@example.com", AudienceID: "aud-1"})
	require.Error(t, err)
	assert.True(t, IsDuplicateContact(err))
}

func TestIsDuplicateContact(t *testing.T) {
	assert.False(t, IsDuplicateContact(nil))
	assert.False(t, IsDuplicateContact(errors.New("rate limited")))
	assert.True(t, IsDuplicateContact(errors.New("Contact already exists")))
	assert.True(t, IsDuplicateContact(errors.New("duplicate key")))
	assert.True(t, IsDuplicateContact(errors.New("DUPLICATE contact")))
}
