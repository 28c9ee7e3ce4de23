package model

import (
	"net/mail"
	"strings"
	"time"
)

// ContactMessage is a note left through the contact form.  Messages start
// unread; an admin can mark them read or delete them.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// MessagePatch lists the fields an update may change.
type MessagePatch struct {
	Read *bool
}

// ContactInput is the public contact form.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate checks required fields and the address format.
func (in ContactInput) Validate() (ContactMessage, error) {
	var errs ValidationErrors
	if blank(in.Name) {
		errs.add("name", "name is required")
	}
	switch {
	case blank(in.Email):
		errs.add("email", "email is required")
	case !ValidEmail(in.Email):
		errs.add("email", "Please enter a valid email address")
	}
	if blank(in.Message) {
		errs.add("message", "message is required")
	}
	if err := errs.err(); err != nil {
		return ContactMessage{}, err
	}
	return ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Message: strings.TrimSpace(in.Message),
	}, nil
}

// ValidEmail reports whether s is a bare address such as "a@b.c".
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, "@")
}
