package model

import "time"

const (
	SessionSignedIn       = "signed_in"
	SessionSignedOut      = "signed_out"
	SessionProfileUpdated = "profile_updated"
)

// SessionEvent notifies subscribers that an account's session changed.
type SessionEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
}
