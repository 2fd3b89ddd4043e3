// Package session stores agent conversation snapshots in process memory.
package session

import (
	"context"
	"sync"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
)

var _ output.SessionStore = (*MemoryStore)(nil)

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]entity.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]entity.Message)}
}

func (s *MemoryStore) Load(_ context.Context, token string) ([]entity.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.sessions[token]
	if !ok {
		return nil, false, nil
	}
	return cloneMessages(history), true, nil
}

func (s *MemoryStore) Save(_ context.Context, token string, history []entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = cloneMessages(history)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func cloneMessages(in []entity.Message) []entity.Message {
	out := make([]entity.Message, len(in))
	for i, m := range in {
		out[i] = m
		if m.ToolCalls != nil {
			out[i].ToolCalls = append([]entity.ToolCall(nil), m.ToolCalls...)
		}
	}
	return out
}
