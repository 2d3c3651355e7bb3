package service

import "time"

// SetClock replaces the clock used for token timestamps.
func SetClock(s *AuthService, now func() time.Time) {
	s.now = now
}
