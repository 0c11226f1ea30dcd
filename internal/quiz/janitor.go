package quiz

import (
	"context"
	"time"
)

// StartJanitor evicts idle rounds and expired retained results until ctx ends.
func (s *Service) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(s.now())
			}
		}
	}()
}

func (s *Service) sweep(now time.Time) {
	s.mu.Lock()
	users := make([]*userState, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	for id, g := range s.graded {
		if now.After(g.expiresAt) {
			delete(s.graded, id)
		}
	}
	s.mu.Unlock()

	for _, u := range users {
		u.mu.Lock()
		if u.active != nil && s.expired(u.active, now) {
			s.abandonLocked(u, "expired")
		}
		u.mu.Unlock()
	}
}
