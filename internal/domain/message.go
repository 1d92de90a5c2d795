package domain

import (
	"strings"
	"time"
)

// Message is a composed text delivered by the SEND key.
type Message struct {
	// ID is assigned by the history store; zero until persisted.
	ID int64

	// Text is the composed text as it was when SEND was committed.
	Text string

	// SentAt is the wall-clock time SEND was committed.
	SentAt time.Time
}

// NewMessage creates a message stamped with the given time.
// Returns ErrEmptyMessage if text is empty or whitespace only.
func NewMessage(text string, at time.Time) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}
	return Message{Text: text, SentAt: at.UTC()}, nil
}

// Draft is the composer buffer persisted between runs.
type Draft struct {
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty returns true if the draft has no text.
func (d Draft) IsEmpty() bool {
	return d.Text == ""
}
