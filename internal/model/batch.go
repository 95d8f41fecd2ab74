package model

import "time"

// Batch is a stored input text. Quotes holds the normalized lines at the
// time the batch was saved; generated reels are never stored.
type Batch struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Text       string     `json:"text"`
	Quotes     []Quote    `json:"quotes,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Version    int        `json:"version"`
	Supersedes string     `json:"supersedes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	QuoteCount int        `json:"quote_count"`
}
