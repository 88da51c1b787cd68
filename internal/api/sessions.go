package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	messageTypeUser      = "user"
	messageTypeAssistant = "assistant"

	sessionListLimit = 50
)

type chatMessage struct {
	MessageID string    `json:"message_id"`
	Type      string    `json:"message_type"`
	Content   string    `json:"content"`
	Sources   []string  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
}

type chatSession struct {
	SessionID string    `json:"session_id"`
	UploadID  string    `json:"upload_id"`
	CreatedAt time.Time `json:"created_at"`

	messages []chatMessage
}

type sessionSummary struct {
	SessionID    string    `json:"session_id"`
	UploadID     string    `json:"upload_id"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
}

// sessionStore keeps chat sessions in memory. Sessions live for the process
// lifetime, mirroring how run state outlives individual requests.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*chatSession
	order    []string
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*chatSession)}
}

func (s *sessionStore) Create(uploadID string) *chatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &chatSession{
		SessionID: uuid.New().String(),
		UploadID:  uploadID,
		CreatedAt: time.Now().UTC(),
	}
	s.sessions[session.SessionID] = session
	s.order = append(s.order, session.SessionID)
	return session
}

func (s *sessionStore) Get(sessionID string) (*chatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *sessionStore) Append(sessionID, messageType, content string, sources []string) (chatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chatMessage{}, false
	}
	if sources == nil {
		sources = []string{}
	}
	msg := chatMessage{
		MessageID: uuid.New().String(),
		Type:      messageType,
		Content:   content,
		Sources:   sources,
		Timestamp: time.Now().UTC(),
	}
	session.messages = append(session.messages, msg)
	return msg, true
}

func (s *sessionStore) Messages(sessionID string) ([]chatMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	out := make([]chatMessage, len(session.messages))
	copy(out, session.messages)
	return out, true
}

// List returns the most recent sessions, optionally filtered by upload.
func (s *sessionStore) List(uploadID string) []sessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]sessionSummary, 0)
	for i := len(s.order) - 1; i >= 0 && len(summaries) < sessionListLimit; i-- {
		session := s.sessions[s.order[i]]
		if uploadID != "" && session.UploadID != uploadID {
			continue
		}
		summaries = append(summaries, sessionSummary{
			SessionID:    session.SessionID,
			UploadID:     session.UploadID,
			CreatedAt:    session.CreatedAt,
			MessageCount: len(session.messages),
		})
	}
	return summaries
}
