package events

import "time"

const (
	TypeListInvalidated = "list.invalidated"
	TypeSessionClosed   = "session.closed"
)

// ListInvalidated tells dashboards of a manager that a section changed and must be
// reloaded wholesale. Changes to this struct should be additive.
type ListInvalidated struct {
	Type    string    `json:"type"`
	Section string    `json:"section"`
	At      time.Time `json:"at"`
}

func NewListInvalidated(section string) ListInvalidated {
	return ListInvalidated{Type: TypeListInvalidated, Section: section, At: time.Now().UTC()}
}

// SessionClosed is the last message a session's sockets receive after logout.
type SessionClosed struct {
	Type string `json:"type"`
}

func NewSessionClosed() SessionClosed {
	return SessionClosed{Type: TypeSessionClosed}
}
