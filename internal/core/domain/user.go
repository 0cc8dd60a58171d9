package domain

import "time"

// Identity is the platform-assigned description of a chat user as it arrives
// on an inbound event. Fields other than ID may be empty: Telegram users are
// free to hide their username or last name.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// UserProfile is the persisted registry row for one identity. Exactly one row
// exists per ID; RegistrationDate is write-once.
type UserProfile struct {
	ID               int64
	Username         string
	FirstName        string
	LastName         string
	RegistrationDate time.Time
	LastActivity     time.Time
}

// NewProfile builds the row stored on first sight of an identity. Both
// timestamps start at now.
func NewProfile(id Identity, now time.Time) *UserProfile {
	return &UserProfile{
		ID:               id.ID,
		Username:         id.Username,
		FirstName:        id.FirstName,
		LastName:         id.LastName,
		RegistrationDate: now,
		LastActivity:     now,
	}
}

// ApplyIdentity merges an inbound identity into an existing profile.
// LastActivity always advances; name fields are overwritten only when the
// incoming value is non-empty, so a user hiding their username later does not
// erase what we already know.
func (p *UserProfile) ApplyIdentity(id Identity, now time.Time) {
	p.LastActivity = now
	if id.Username != "" {
		p.Username = id.Username
	}
	if id.FirstName != "" {
		p.FirstName = id.FirstName
	}
	if id.LastName != "" {
		p.LastName = id.LastName
	}
}
