package service

import "time"

// SetClock replaces the clock used for listing timestamps.
func (s *ListingService) SetClock(now func() time.Time) {
	s.now = now
}
