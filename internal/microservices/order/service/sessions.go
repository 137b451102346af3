package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"cafe-orders/internal/common/logger"
)

// Sessions hands out one Workflow per customer session, like one per open
// browser window. Sessions idle for longer than the TTL are dropped by Sweep.
type Sessions struct {
	mu      sync.Mutex
	byID    map[string]*session
	factory func() *Workflow
	idleTTL time.Duration
	now     func() time.Time
	lg      *logger.Logger
}

type session struct {
	wf       *Workflow
	lastSeen time.Time
}

// NewSessions keeps sessions until they sit idle for idleTTL. A non-positive
// TTL keeps them forever.
func NewSessions(factory func() *Workflow, idleTTL time.Duration) *Sessions {
	return &Sessions{
		byID:    make(map[string]*session),
		factory: factory,
		idleTTL: idleTTL,
		now:     time.Now,
		lg:      logger.New("order-service"),
	}
}

// New creates a session and returns its id.
func (s *Sessions) New() (string, *Workflow) {
	id := uuid.NewString()
	wf := s.factory()
	s.mu.Lock()
	s.byID[id] = &session{wf: wf, lastSeen: s.now()}
	s.mu.Unlock()
	return id, wf
}

// Get returns the session's workflow and marks it as used.
func (s *Sessions) Get(id string) (*Workflow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.wf, true
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Sweep drops idle sessions and returns how many went. A session with a
// submission in flight stays until it settles.
func (s *Sessions) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idleTTL)
	dropped := 0
	for id, sess := range s.byID {
		if !sess.lastSeen.Before(cutoff) || sess.wf.State() == StateSubmitting {
			continue
		}
		delete(s.byID, id)
		dropped++
	}
	return dropped
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sessions) Run(ctx context.Context, every time.Duration) {
	if s.idleTTL <= 0 || every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.lg.Debug("sessions_expired", map[string]any{"dropped": n, "remaining": s.Len()})
			}
		}
	}
}
