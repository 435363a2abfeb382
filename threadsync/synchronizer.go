package threadsync

import (
	"sync"
	"time"

	"elsahm-admin/models"
)

// Event is what the console renders after each change.
type Event struct {
	Complaint     *models.Complaint `json:"complaint"`
	NewMessages   int               `json:"newMessages"`
	Alert         bool              `json:"alert"`
	PlaySound     bool              `json:"playSound"`
	LastRefreshed time.Time         `json:"lastRefreshed"`
	Paused        bool              `json:"paused"`
}

// Synchronizer holds the view state of one open complaint thread.
type Synchronizer struct {
	mu sync.Mutex

	complaint     *models.Complaint
	knownCount    int
	lastRefreshed time.Time
	alertUntil    time.Time
	alertDuration time.Duration
	paused        bool
	pending       []models.Response
}

func NewSynchronizer(alertDuration time.Duration) *Synchronizer {
	return &Synchronizer{alertDuration: alertDuration}
}

// Apply folds a fresh snapshot into the view. The first snapshot seeds the
// view. Later ones replace it and raise the alert only when they carry more
// responses than are known; otherwise only the refresh time moves.
// Snapshots are ignored while paused.
func (s *Synchronizer) Apply(snap Snapshot, now time.Time) Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return s.view(now, 0, false)
	}

	fresh := snap.Complaint
	freshCount := len(fresh.Responses)

	if s.complaint == nil {
		s.replace(fresh)
		s.knownCount = freshCount + len(s.pending)
		s.lastRefreshed = now
		return s.view(now, 0, false)
	}

	s.lastRefreshed = now

	if freshCount > s.knownCount {
		newMessages := freshCount - s.knownCount
		s.replace(fresh)
		s.knownCount = freshCount + len(s.pending)
		s.alertUntil = now.Add(s.alertDuration)
		return s.view(now, newMessages, true)
	}

	// Count did not grow, but an optimistic reply may now be confirmed.
	if len(s.pending) > 0 {
		_, still := models.ReconcileResponses(fresh.Responses, s.pending)
		if len(still) < len(s.pending) {
			s.replace(fresh)
		}
	}
	return s.view(now, 0, false)
}

// replace swaps in fresh and drops the pending entries it confirms.
func (s *Synchronizer) replace(fresh models.Complaint) {
	_, s.pending = models.ReconcileResponses(fresh.Responses, s.pending)
	fresh.Responses = append([]models.Response(nil), fresh.Responses...)
	s.complaint = &fresh
}

// AddOptimistic renders resp before the store confirms it. It counts as
// known, so confirming it never raises the new-message alert.
func (s *Synchronizer) AddOptimistic(resp models.Response, now time.Time) Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.complaint != nil {
		for _, r := range s.complaint.Responses {
			if models.SameMessage(resp, r) {
				return s.view(now, 0, false)
			}
		}
	}
	for _, p := range s.pending {
		if models.SameMessage(resp, p) {
			return s.view(now, 0, false)
		}
	}

	resp.Pending = true
	s.pending = append(s.pending, resp)
	s.knownCount++
	if resp.IsAdmin && s.complaint != nil {
		s.complaint.Status = models.StatusAfterAdminReply(s.complaint.Status)
	}
	return s.view(now, 0, false)
}

func (s *Synchronizer) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

func (s *Synchronizer) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

func (s *Synchronizer) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// AlertActive reports whether the new-message alert is still showing at now.
func (s *Synchronizer) AlertActive(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Before(s.alertUntil)
}

// KnownCount is the number of responses the view accounts for.
func (s *Synchronizer) KnownCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knownCount
}

func (s *Synchronizer) LastRefreshed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefreshed
}

// View returns the current state without changing it.
func (s *Synchronizer) View(now time.Time) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(now, 0, false)
}

func (s *Synchronizer) view(now time.Time, newMessages int, sound bool) Event {
	ev := Event{
		NewMessages:   newMessages,
		Alert:         now.Before(s.alertUntil),
		PlaySound:     sound,
		LastRefreshed: s.lastRefreshed,
		Paused:        s.paused,
	}
	if s.complaint != nil {
		c := *s.complaint
		c.Responses, _ = models.ReconcileResponses(s.complaint.Responses, s.pending)
		ev.Complaint = &c
	}
	return ev
}
