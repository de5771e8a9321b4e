package models

import "time"

type MessageRole string

const (
	RoleUser MessageRole = "user"
	RoleBot  MessageRole = "bot"
)

type Message struct {
	Role MessageRole `json:"role"`
	Text string      `json:"text"`
}

type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s ChatSession) Clone() ChatSession {
	out := s
	out.Messages = append([]Message(nil), s.Messages...)
	return out
}

type SendMessageRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text" validate:"required"`
}
