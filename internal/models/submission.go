package models

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type NewsletterSignup struct {
	Email     string   `json:"email"`
	Interests []string `json:"interests"`
}
