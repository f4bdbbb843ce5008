package models

import "time"

// Role identifies who produced a conversation message and how the UI shows it.
type Role string

const (
	RoleUser       Role = "user"
	RoleBot        Role = "bot"
	RoleSuggestion Role = "suggestion"
	RoleTitle      Role = "title"
	RoleError      Role = "error"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleBot, RoleSuggestion, RoleTitle, RoleError:
		return true
	}
	return false
}

// Message is a single entry in a chat conversation.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSession is a conversation about one headline. It lives until the
// client closes it.
type ChatSession struct {
	ID        string    `json:"id"`
	Headline  Headline  `json:"headline"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}
