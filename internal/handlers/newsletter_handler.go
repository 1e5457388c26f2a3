package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"

	"github.com/buildatscale/bas-server/internal/mailer"
	"github.com/buildatscale/bas-server/internal/models"
	"github.com/buildatscale/bas-server/internal/utils"
)

type NewsletterHandler struct {
	Mailer     mailer.Mailer
	AudienceID string
	Mail       MailSettings
	Logger     *log.Logger
}

func NewNewsletterHandler(m mailer.Mailer, audienceID string, mail MailSettings, logger *log.Logger) *NewsletterHandler {
	return &NewsletterHandler{
		Mailer:     m,
		AudienceID: audienceID,
		Mail:       mail,
		Logger:     logger,
	}
}

func (nh *NewsletterHandler) HandlerSignup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	signup := models.NewsletterSignup{
		Email:     strings.TrimSpace(r.FormValue("email")),
		Interests: []string{},
	}

	if signup.Email == "" {
		utils.WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if nh.Mailer == nil {
		nh.Logger.Println("RESEND_API_KEY not found in environment")
		utils.WriteError(w, http.StatusInternalServerError, "Email service not configured")
		return
	}

	if nh.AudienceID == "" {
		nh.Logger.Println("RESEND_AUDIENCE_ID not found in environment")
		utils.WriteError(w, http.StatusInternalServerError, "Audience ID not configured")
		return
	}

	if raw := strings.TrimSpace(r.FormValue("interests")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &signup.Interests); err != nil {
			nh.Logger.Printf("Error: invalid interests %q: %v", raw, err)
			utils.WriteError(w, http.StatusBadRequest, "Invalid interests")
			return
		}
	}

	id, err := nh.Mailer.CreateContact(r.Context(), mailer.Contact{
		Email:      signup.Email,
		AudienceID: nh.AudienceID,
	})
	if err != nil {
		nh.Logger.Printf("Resend error: %v", err)

		if mailer.IsDuplicateContact(err) {
			utils.WriteJSON(w, http.StatusOK, utils.Envelope{"success": true, "message": "You are already subscribed!"})
			return
		}

		utils.WriteError(w, http.StatusInternalServerError, "Failed to subscribe. Please try again.")
		return
	}

	if len(signup.Interests) > 0 {
		nh.notify(r.Context(), signup)
	}

	utils.WriteJSON(w, http.StatusOK, utils.Envelope{"success": true, "data": utils.Envelope{"id": id}})
}

// notify tells the site inbox about a subscriber who picked interests. A
// failure here does not fail the signup.
func (nh *NewsletterHandler) notify(ctx context.Context, signup models.NewsletterSignup) {
	escaped := make([]string, len(signup.Interests))
	for i, interest := range signup.Interests {
		escaped[i] = html.EscapeString(interest)
	}

	var b strings.Builder
	b.WriteString("<h2>New Newsletter Subscription</h2>\n")
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>\n", html.EscapeString(signup.Email))
	fmt.Fprintf(&b, "<p><strong>Interests:</strong> %s</p>\n", strings.Join(escaped, ", "))

	_, err := nh.Mailer.SendEmail(ctx, mailer.Email{
		From:    nh.Mail.From,
		To:      []string{nh.Mail.To},
		Subject: "New Newsletter Subscriber",
		HTML:    b.String(),
	})
	if err != nil {
		nh.Logger.Printf("Error sending subscriber notification for %s: %v", signup.Email, err)
	}
}
