package chat

import "time"

// Session captures a transient anonymous conversation with one assistant profile.
type Session struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profileId"`
	CreatedAt time.Time `json:"createdAt"`
}

// State is the observable view of a live session.
type State struct {
	Session        Session `json:"session"`
	Busy           bool    `json:"busy"`
	ActiveCategory string  `json:"activeCategory"`
	Expanded       bool    `json:"expanded"`
	MessageCount   int     `json:"messageCount"`
}
