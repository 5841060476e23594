// Package domain contains entities without logic, just meta-data.
package domain

// Participant is a caller's identity within one meeting.
// ID is empty for unauthenticated guests until the room mints one.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewParticipant avoids raw literals in adapters and keeps construction obvious.
func NewParticipant(id, name string) *Participant {
	return &Participant{ID: id, Name: name}
}
