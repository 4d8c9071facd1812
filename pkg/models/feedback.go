package models

import "time"

// Feedback is one user verdict on a generated answer.
type Feedback struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Label     string    `json:"label"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
