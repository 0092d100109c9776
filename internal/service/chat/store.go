package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	model "github.com/aura-plataforma/chatbot-service/internal/model/chat"
)

// ErrSessionNotFound 表示请求的会话不存在。
var ErrSessionNotFound = errors.New("session not found")

// Store keeps sessions and their exchanges in memory for the lifetime of
// the process. Sessions are created lazily on first use of a session id.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]model.Session
	exchanges map[string][]model.Exchange
}

// NewStore bootstraps the in-memory transcript store.
func NewStore() *Store {
	return &Store{
		sessions:  make(map[string]model.Session),
		exchanges: make(map[string][]model.Exchange),
	}
}

// Append records an exchange under the given session, creating the session
// on first use.
func (s *Store) Append(sessionID, userID, userMessage string, resp model.MessageResponse) model.Exchange {
	exchange := model.Exchange{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		UserMessage: userMessage,
		Reply:       resp.Message,
		Metadata:    resp.Metadata,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		s.sessions[sessionID] = model.Session{
			ID:        sessionID,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}
		s.exchanges[sessionID] = make([]model.Exchange, 0, 8)
	}

	s.exchanges[sessionID] = append(s.exchanges[sessionID], exchange)
	return exchange
}

// Transcript returns a copy of the stored exchanges for the session.
func (s *Store) Transcript(sessionID string) ([]model.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exchanges, ok := s.exchanges[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]model.Exchange, len(exchanges))
	copy(copied, exchanges)
	return copied, nil
}
