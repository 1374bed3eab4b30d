package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxMessageLength bounds support chat messages, in runes.
const MaxMessageLength = 2000

// Sender identifies who wrote a support message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAdmin Sender = "admin"
)

// SupportMessage is one line of a user's support conversation.
type SupportMessage struct {
	ID        string
	UserID    string
	UserEmail string
	Sender    Sender
	Text      string
	CreatedAt time.Time
}

// Validate checks message text and sender.
func (m *SupportMessage) Validate() error {
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return fmt.Errorf("%w: text cannot be empty", ErrInvalidMessage)
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return fmt.Errorf("%w: text exceeds %d characters", ErrInvalidMessage, MaxMessageLength)
	}
	if m.Sender != SenderUser && m.Sender != SenderAdmin {
		return fmt.Errorf("%w: unknown sender %q", ErrInvalidMessage, m.Sender)
	}
	if m.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidMessage)
	}
	return nil
}
