// Package session tracks per-session conversation history. History is
// injected into later queries as rendered text, not as structured messages.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type exchange struct {
	user      string
	assistant string
}

// Manager stores the most recent exchanges per session. Safe for concurrent
// callers.
type Manager struct {
	mu         sync.Mutex
	maxHistory int
	sessions   map[string][]exchange
}

// NewManager creates a session manager keeping at most maxHistory exchange
// pairs per session.
func NewManager(maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = 2
	}
	return &Manager{
		maxHistory: maxHistory,
		sessions:   make(map[string][]exchange),
	}
}

// Create allocates a new session and returns its id.
func (m *Manager) Create() string {
	id := uuid.New().String()
	m.mu.Lock()
	m.sessions[id] = nil
	m.mu.Unlock()
	return id
}

// AddExchange records one completed user/assistant exchange, evicting the
// oldest pair beyond the history limit.
func (m *Manager) AddExchange(sessionID, userMessage, assistantMessage string) {
	if sessionID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.sessions[sessionID], exchange{user: userMessage, assistant: assistantMessage})
	if len(history) > m.maxHistory {
		history = history[len(history)-m.maxHistory:]
	}
	m.sessions[sessionID] = history
}

// History renders the session's prior exchanges for prompt injection.
// Returns "" for unknown or empty sessions.
func (m *Manager) History(sessionID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.sessions[sessionID]
	if len(history) == 0 {
		return ""
	}

	lines := make([]string, 0, len(history))
	for _, ex := range history {
		lines = append(lines, fmt.Sprintf("User: %s\nAssistant: %s", ex.user, ex.assistant))
	}
	return strings.Join(lines, "\n")
}

// Clear discards a session's history, keeping the session itself.
func (m *Manager) Clear(sessionID string) {
	m.mu.Lock()
	m.sessions[sessionID] = nil
	m.mu.Unlock()
}
