package state

import "time"

// StampStore tracks when each catalog path was last refreshed.
type StampStore interface {
	Stamp(path string) time.Time
	SetStamp(path string, ms int64)
}

type stampStore struct {
	stamps map[string]int64
}

func NewStampStore() StampStore {
	return &stampStore{stamps: map[string]int64{}}
}

func (s *stampStore) Stamp(path string) time.Time {
	ms, ok := s.stamps[path]
	if !ok || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func (s *stampStore) SetStamp(path string, ms int64) {
	s.stamps[path] = ms
}
