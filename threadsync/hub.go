package threadsync

import (
	"sync"

	"elsahm-admin/models"
)

// Hub tracks the live sessions per complaint so a persisted reply reaches
// every open view of that thread.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*Session]struct{})}
}

func (h *Hub) Join(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[s.complaintID]
	if !ok {
		set = make(map[*Session]struct{})
		h.sessions[s.complaintID] = set
	}
	set[s] = struct{}{}
}

func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.sessions[s.complaintID]
	delete(set, s)
	if len(set) == 0 {
		delete(h.sessions, s.complaintID)
	}
}

// Count returns the number of open views of a complaint.
func (h *Hub) Count(complaintID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[complaintID])
}

// Optimistic hands resp to every open view of complaintID.
func (h *Hub) Optimistic(complaintID string, resp models.Response) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions[complaintID] {
		s.Optimistic(resp)
	}
}
