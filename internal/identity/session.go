// Package identity generates and normalizes session identifiers. A
// session scopes the confirmation handshake: one pending confirmation
// per session, and event streams subscribe by session ID.
package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultSessionID is used by clients that do not manage sessions.
const DefaultSessionID = "default"

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("sess-%x", time.Now().UnixNano())
	}
	return "sess-" + hex.EncodeToString(b)
}

// EnsureSessionID returns the given ID unchanged, or DefaultSessionID
// when empty. Requests never fail for lack of a session.
func EnsureSessionID(id string) string {
	if id == "" {
		return DefaultSessionID
	}
	return id
}
