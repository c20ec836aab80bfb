package models

import "time"

// PresenceChanged is the payload of a presence.changed event.
type PresenceChanged struct {
	UserID       uint       `json:"userId"`
	Status       UserStatus `json:"status"`
	LastActiveAt time.Time  `json:"lastActiveAt"`
}
