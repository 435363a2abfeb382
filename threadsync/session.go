package threadsync

import (
	"context"
	"errors"
	"log"
	"time"

	"elsahm-admin/apperr"
	"elsahm-admin/models"
)

// ErrSourceClosed is returned by Run when the change source stops on its
// own, for instance because the complaint was deleted.
var ErrSourceClosed = errors.New("threadsync: change source closed")

const (
	ActionPause  = "pause"
	ActionResume = "resume"

	defaultRetryInterval = 3 * time.Second
)

// Session drives one open complaint view: it feeds snapshots from a
// ChangeSource into a Synchronizer and emits the resulting events.
type Session struct {
	complaintID string
	source      ChangeSource
	sync        *Synchronizer
	alertAfter  time.Duration
	retryAfter  time.Duration

	control    chan string
	optimistic chan models.Response

	now func() time.Time
}

func NewSession(complaintID string, source ChangeSource, sync *Synchronizer) *Session {
	return &Session{
		complaintID: complaintID,
		source:      source,
		sync:        sync,
		alertAfter:  sync.alertDuration,
		retryAfter:  defaultRetryInterval,
		control:     make(chan string, 4),
		optimistic:  make(chan models.Response, 16),
		now:         time.Now,
	}
}

// WithRetryInterval sets how long Run waits before restarting a source
// that failed to come back after a resume.
func (s *Session) WithRetryInterval(d time.Duration) *Session {
	if d > 0 {
		s.retryAfter = d
	}
	return s
}

func (s *Session) ComplaintID() string {
	return s.complaintID
}

// Control queues a pause or resume request.
func (s *Session) Control(action string) bool {
	if action != ActionPause && action != ActionResume {
		return false
	}
	select {
	case s.control <- action:
		return true
	default:
		return false
	}
}

// Optimistic queues a just-persisted reply for immediate rendering.
func (s *Session) Optimistic(resp models.Response) {
	select {
	case s.optimistic <- resp:
	default:
		log.Printf("Optimistic queue full for complaint %s, waiting for refresh", s.complaintID)
	}
}

// Run blocks until ctx is cancelled, emit fails, or the source closes.
// While paused the source is stopped, so nothing is fetched. Only the
// first start is fatal: a source that fails to restart after a resume is
// retried every retry interval, like a failed polling tick.
func (s *Session) Run(ctx context.Context, emit func(Event) error) error {
	var (
		snaps <-chan Snapshot
		stop  context.CancelFunc
	)
	start := func() error {
		sctx, cancel := context.WithCancel(ctx)
		ch, err := s.source.Changes(sctx, s.complaintID)
		if err != nil {
			cancel()
			return err
		}
		snaps, stop = ch, cancel
		return nil
	}
	halt := func() {
		if stop != nil {
			stop()
		}
		snaps, stop = nil, nil
	}
	defer halt()

	if err := start(); err != nil {
		return err
	}

	alert := time.NewTimer(time.Hour)
	alert.Stop()
	defer alert.Stop()

	retry := time.NewTimer(time.Hour)
	retry.Stop()
	defer retry.Stop()

	restart := func() error {
		err := start()
		if err == nil {
			return nil
		}
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		log.Printf("Restarting updates for complaint %s failed, retrying in %s: %v", s.complaintID, s.retryAfter, err)
		retry.Reset(s.retryAfter)
		return nil
	}

	for {
		var ev Event
		select {
		case <-ctx.Done():
			return ctx.Err()

		case snap, ok := <-snaps:
			if !ok {
				return ErrSourceClosed
			}
			ev = s.sync.Apply(snap, s.now())

		case action := <-s.control:
			switch action {
			case ActionPause:
				s.sync.Pause()
				retry.Stop()
				halt()
			case ActionResume:
				s.sync.Resume()
				if snaps == nil {
					if err := restart(); err != nil {
						return err
					}
				}
			}
			ev = s.sync.View(s.now())

		case <-retry.C:
			if snaps != nil || s.sync.Paused() {
				continue
			}
			if err := restart(); err != nil {
				return err
			}
			continue

		case resp := <-s.optimistic:
			ev = s.sync.AddOptimistic(resp, s.now())

		case <-alert.C:
			ev = s.sync.View(s.now())
		}

		if ev.PlaySound {
			alert.Reset(s.alertAfter)
		}
		if err := emit(ev); err != nil {
			return err
		}
	}
}
