package handlers

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"

	"github.com/buildatscale/bas-server/internal/mailer"
	"github.com/buildatscale/bas-server/internal/models"
	"github.com/buildatscale/bas-server/internal/utils"
)

const maxFormBytes = 1 << 20

// MailSettings addresses the notification emails sent to the site inbox.
type MailSettings struct {
	From string
	To   string
}

type RequestHandler struct {
	Mailer mailer.Mailer
	Mail   MailSettings
	Logger *log.Logger
}

// NewRequestHandler builds the contact form handler. m may be nil when no
// email service is configured.
func NewRequestHandler(m mailer.Mailer, mail MailSettings, logger *log.Logger) *RequestHandler {
	return &RequestHandler{
		Mailer: m,
		Mail:   mail,
		Logger: logger,
	}
}

func (rh *RequestHandler) HandlerSubmitRequest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	req := models.ContactRequest{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Type:    strings.TrimSpace(r.FormValue("type")),
		Message: r.FormValue("message"),
	}

	if req.Name == "" || req.Email == "" || strings.TrimSpace(req.Message) == "" {
		utils.WriteError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if rh.Mailer == nil {
		rh.Logger.Println("RESEND_API_KEY not found in environment")
		utils.WriteError(w, http.StatusInternalServerError, "Email service not configured")
		return
	}

	id, err := rh.Mailer.SendEmail(r.Context(), mailer.Email{
		From:    rh.Mail.From,
		To:      []string{rh.Mail.To},
		ReplyTo: req.Email,
		Subject: requestSubject(req),
		HTML:    requestHTML(req),
	})
	if err != nil {
		rh.Logger.Printf("Resend error: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to send email")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Envelope{"success": true, "data": utils.Envelope{"id": id}})
}

func requestSubject(req models.ContactRequest) string {
	kind := req.Type
	if kind == "" {
		kind = "Request"
	}
	return fmt.Sprintf("New %s from %s", kind, req.Name)
}

func requestHTML(req models.ContactRequest) string {
	kind := req.Type
	if kind == "" {
		kind = "Not specified"
	}

	var b strings.Builder
	b.WriteString("<h2>New Request from BuildAtScale Website</h2>\n")
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>\n", html.EscapeString(req.Name))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>\n", html.EscapeString(req.Email))
	fmt.Fprintf(&b, "<p><strong>Type:</strong> %s</p>\n", html.EscapeString(kind))
	b.WriteString("<p><strong>Message:</strong></p>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", multiline(req.Message))
	return b.String()
}

// multiline escapes text and turns its line breaks into <br>.
func multiline(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}
