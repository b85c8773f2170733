package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// SessionSweeper periodically purges expired refresh-token rows.
// Expiry is otherwise detected lazily on use, so the sweep is purely
// hygiene; it is idempotent and safe to run concurrently with in-flight
// refreshes because both sides delete with if-exists semantics.
type SessionSweeper struct {
	sessions SessionStore
	interval time.Duration
	now      func() time.Time
	log      *logrus.Logger
}

// NewSessionSweeper builds a sweeper running every interval.
func NewSessionSweeper(sessions SessionStore, interval time.Duration, log *logrus.Logger) *SessionSweeper {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SessionSweeper{
		sessions: sessions,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep deletes every session row past its expiry.
func (s *SessionSweeper) Sweep(ctx context.Context) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		s.log.WithError(err).Warn("sweeper: delete expired sessions failed")
		return
	}
	if n > 0 {
		s.log.WithField("deleted", n).Info("sweeper: purged expired sessions")
	}
}
