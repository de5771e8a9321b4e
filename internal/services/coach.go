package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/arnold/lifesync-api/internal/clock"
	"github.com/arnold/lifesync-api/internal/database"
	"github.com/arnold/lifesync-api/internal/models"
	"github.com/arnold/lifesync-api/internal/tracker"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionTitleRunes   = 30
	coachContextEntries = 5
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrEmptyMessage    = errors.New("message text is empty")
)

type SendRequest struct {
	SessionID string
	Text      string
	Language  string
	Model     string
	APIKey    string
	Goals     []models.Goal
	Entries   []models.JournalEntry
}

// Coach keeps the chat sessions with the AI coach.
type Coach struct {
	mu    sync.Mutex
	store tracker.Storage
	gen   Generator
	clock clock.Clock
	log   *zap.SugaredLogger

	sessions []models.ChatSession
	activeID string
}

func NewCoach(store tracker.Storage, gen Generator, clk clock.Clock, log *zap.SugaredLogger) *Coach {
	return &Coach{
		store:    store,
		gen:      gen,
		clock:    clk,
		log:      log,
		sessions: []models.ChatSession{},
	}
}

// Load reads sessions from storage. Unreadable data loads as no sessions.
func (c *Coach) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions = []models.ChatSession{}
	if _, err := c.store.Load(database.KeyChatSessions, &c.sessions); err != nil || c.sessions == nil {
		if err != nil {
			c.log.Warnw("Chat sessions unreadable, starting empty", "error", err)
		}
		c.sessions = []models.ChatSession{}
	}

	c.activeID = ""
	if _, err := c.store.Load(database.KeyActiveChatID, &c.activeID); err != nil || c.index(c.activeID) < 0 {
		c.activeID = ""
	}
}

func (c *Coach) Sessions() []models.ChatSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChatSession, len(c.sessions))
	for i := range c.sessions {
		out[i] = c.sessions[i].Clone()
	}
	return out
}

func (c *Coach) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Create starts an empty session with a greeting and makes it active.
func (c *Coach) Create(lang string) models.ChatSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	s := models.ChatSession{
		ID:        uuid.NewString(),
		Title:     fmt.Sprintf("%s %s", message(lang, msgChatDefaultTitle), clock.DateKey(now)),
		Messages:  []models.Message{{Role: models.RoleBot, Text: message(lang, msgChatGreeting)}},
		UpdatedAt: now,
	}
	c.sessions = append([]models.ChatSession{s}, c.sessions...)
	c.activeID = s.ID
	c.save()
	return s.Clone()
}

func (c *Coach) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return ErrSessionNotFound
	}
	c.sessions = append(c.sessions[:i], c.sessions[i+1:]...)
	if c.activeID == id {
		c.activeID = ""
	}
	c.save()
	return nil
}

// Send posts a user message and appends the coach's reply. Without a
// session id a new session titled after the message is started. The model
// call runs without holding the lock.
func (c *Coach) Send(ctx context.Context, req SendRequest) (models.ChatSession, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return models.ChatSession{}, ErrEmptyMessage
	}

	c.mu.Lock()
	now := c.clock.Now()
	i := c.index(req.SessionID)
	switch {
	case req.SessionID == "":
		c.sessions = append([]models.ChatSession{{
			ID:       uuid.NewString(),
			Title:    sessionTitle(text),
			Messages: []models.Message{},
		}}, c.sessions...)
		i = 0
	case i < 0:
		c.mu.Unlock()
		return models.ChatSession{}, ErrSessionNotFound
	}

	s := &c.sessions[i]
	if !hasUserMessage(s.Messages) && strings.HasPrefix(s.Title, message(req.Language, msgChatDefaultTitle)) {
		s.Title = sessionTitle(text)
	}
	history := chatHistory(s.Messages)
	s.Messages = append(s.Messages, models.Message{Role: models.RoleUser, Text: text})
	s.UpdatedAt = now
	id := s.ID
	c.activeID = id
	c.save()
	c.mu.Unlock()

	model := req.Model
	if model == "" {
		model = models.DefaultModel
	}
	reply, err := c.gen.Generate(ctx, req.APIKey, GenerateRequest{
		Model:   model,
		System:  coachSystemPrompt(req.Language, req.Goals, req.Entries),
		History: history,
		Prompt:  text,
	})
	switch {
	case errors.Is(err, ErrMissingAPIKey) || (err != nil && strings.Contains(err.Error(), "API key")):
		reply = message(req.Language, msgChatKeyMissing)
	case err != nil:
		c.log.Errorw("Coach reply failed", "session", id, "error", err)
		reply = message(req.Language, msgChatFailed)
	case strings.TrimSpace(reply) == "":
		reply = message(req.Language, msgChatFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i = c.index(id)
	if i < 0 {
		return models.ChatSession{}, ErrSessionNotFound
	}
	s = &c.sessions[i]
	s.Messages = append(s.Messages, models.Message{Role: models.RoleBot, Text: reply})
	s.UpdatedAt = c.clock.Now()
	c.save()
	return s.Clone(), nil
}

func (c *Coach) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range c.sessions {
		if c.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Coach) save() {
	if err := c.store.Save(database.KeyChatSessions, c.sessions); err != nil {
		c.log.Errorw("Failed to save chat sessions", "error", err)
	}
	if c.activeID == "" {
		if err := c.store.Remove(database.KeyActiveChatID); err != nil {
			c.log.Errorw("Failed to clear active chat", "error", err)
		}
		return
	}
	if err := c.store.Save(database.KeyActiveChatID, c.activeID); err != nil {
		c.log.Errorw("Failed to save active chat", "error", err)
	}
}

func sessionTitle(text string) string {
	r := []rune(text)
	if len(r) <= sessionTitleRunes {
		return text
	}
	return string(r[:sessionTitleRunes]) + "..."
}

func hasUserMessage(msgs []models.Message) bool {
	for _, m := range msgs {
		if m.Role == models.RoleUser {
			return true
		}
	}
	return false
}

// chatHistory converts prior messages into model turns. Leading bot
// greetings are dropped so the conversation opens with the user.
func chatHistory(msgs []models.Message) []ChatTurn {
	start := 0
	for start < len(msgs) && msgs[start].Role != models.RoleUser {
		start++
	}
	out := make([]ChatTurn, 0, len(msgs)-start)
	for _, m := range msgs[start:] {
		out = append(out, ChatTurn{Role: m.Role, Text: m.Text})
	}
	return out
}

func coachSystemPrompt(lang string, goals []models.Goal, entries []models.JournalEntry) string {
	var gb strings.Builder
	for _, g := range goals {
		fmt.Fprintf(&gb, "- %s: %s/%s (status: %s)\n", g.Title, formatFloat(g.Current), formatFloat(g.Target), g.Status)
	}

	var eb strings.Builder
	for _, e := range entries[:min(coachContextEntries, len(entries))] {
		note := "(note)"
		if e.Wellness != nil {
			note = fmt.Sprintf("(mood: %d/10)", e.Wellness.Mood)
		}
		fmt.Fprintf(&eb, "- %s: %s... %s\n", e.Date.Format("2006-01-02"), truncateRunes(e.Content, 100), note)
	}

	if lang == "en" {
		return "You are LifeSync, a supportive personal coach for goals and wellbeing. " +
			"Answer in English, briefly and practically.\n\nUser goals:\n" + gb.String() +
			"\nRecent journal entries:\n" + eb.String()
	}
	return "Ти LifeSync, уважний персональний коуч з цілей і добробуту. " +
		"Відповідай українською, коротко та практично.\n\nЦілі користувача:\n" + gb.String() +
		"\nОстанні записи щоденника:\n" + eb.String()
}

func formatFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
