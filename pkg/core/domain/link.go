package domain

import "time"

// LinkRecord represents a shortened URL owned by a user.
// JSON names match the persisted document layout.
type LinkRecord struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner"`
	TargetURL string `json:"url"`
	Code      string `json:"code"`
	CreatedAt int64  `json:"createdAt"` // epoch ms
	ExpiresAt int64  `json:"expiresAt"` // epoch ms
	Clicks    int64  `json:"clicks"`
}

// ExpiredAt reports whether the link can no longer be resolved at t.
// A link is still valid at exactly its expiry instant.
func (l *LinkRecord) ExpiredAt(t time.Time) bool {
	return t.UnixMilli() > l.ExpiresAt
}

// State is the single persisted document shared by accounts and links.
type State struct {
	Users  []User       `json:"users"`
	Shorts []LinkRecord `json:"shorts"`
}

// NewState returns an empty document with non-nil collections.
func NewState() *State {
	return &State{Users: []User{}, Shorts: []LinkRecord{}}
}

// Normalize replaces nil collections with empty ones so the document
// always serializes both keys as arrays.
func (s *State) Normalize() *State {
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Shorts == nil {
		s.Shorts = []LinkRecord{}
	}
	return s
}

// FindByCode returns the index of the record with code, or -1.
func (s *State) FindByCode(code string) int {
	for i := range s.Shorts {
		if s.Shorts[i].Code == code {
			return i
		}
	}
	return -1
}

// FindUser returns the index of the user with username, or -1.
func (s *State) FindUser(username string) int {
	for i := range s.Users {
		if s.Users[i].Username == username {
			return i
		}
	}
	return -1
}
