// Package mailer sends transactional email and manages newsletter contacts
// through Resend.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

type Email struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

type Contact struct {
	Email        string
	AudienceID   string
	Unsubscribed bool
}

type Mailer interface {
	SendEmail(ctx context.Context, email Email) (string, error)
	CreateContact(ctx context.Context, contact Contact) (string, error)
}

type ResendMailer struct {
	client *resend.Client
}

func NewResendMailer(apiKey string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey)}
}

func (m *ResendMailer) SendEmail(ctx context.Context, email Email) (string, error) {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		ReplyTo: email.ReplyTo,
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

func (m *ResendMailer) CreateContact(ctx context.Context, contact Contact) (string, error) {
	created, err := m.client.Contacts.CreateWithContext(ctx, &resend.CreateContactRequest{
		Email:        contact.Email,
		AudienceId:   contact.AudienceID,
		Unsubscribed: contact.Unsubscribed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create contact: %w", err)
	}
	return created.Id, nil
}

// IsDuplicateContact reports whether err says the contact is already in
// the audience.
func IsDuplicateContact(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate")
}
