package model

import "time"

// ContactSubmission represents a message submitted via the contact form.
type ContactSubmission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactListOptions carries pagination parameters for listing contact submissions.
type ContactListOptions struct {
	Limit  int
	Offset int
}
