package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/buildatscale/bas-server/internal/mailer"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

var testMail = MailSettings{
	From: "BuildAtScale <onboarding@resend.dev>",
	To:   "accounts@buildatscale.tv",
}

type fakeMailer struct {
	sent       []mailer.Email
	contacts   []mailer.Contact
	sendErr    error
	contactErr error
}

func (m *fakeMailer) SendEmail(_ context.Context, email mailer.Email) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sent = append(m.sent, email)
	return "email-1", nil
}

func (m *fakeMailer) CreateContact(_ context.Context, contact mailer.Contact) (string, error) {
	if m.contactErr != nil {
		return "", m.contactErr
	}
	m.contacts = append(m.contacts, contact)
	return "contact-1", nil
}

func testLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func postForm(handler http.HandlerFunc, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// withURLParam runs handler as chi would for a route with a single {key}.
func withURLParam(handler http.HandlerFunc, method, key, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var got map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&got))
	return got
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decodeBody(t, rec.Body)["error"].(string)
	return msg
}

var errBoom = errors.New("boom")
