package models

import (
	"log/slog"
	"time"
)

// Credential is the backend token of a signed-in manager. It is handed explicitly to
// every backend call and lives exactly as long as the session that owns it.
type Credential struct {
	Token string `json:"token"`
}

func (c Credential) Empty() bool { return c.Token == "" }

// LogValue keeps tokens out of logs.
func (c Credential) LogValue() slog.Value {
	return slog.StringValue("[redacted]")
}

// Session binds a dashboard login to the backend credential it acquired.
type Session struct {
	ID         string     `json:"id"`
	Manager    string     `json:"manager"`
	Credential Credential `json:"credential"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
}
