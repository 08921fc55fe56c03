package dto

import (
	"time"

	"github.com/google/uuid"
)

type HeartbeatRequest struct {
	SessionID string `json:"session_id"`
}

type DisconnectRequest struct {
	SessionID string `json:"session_id"`
}

type PresenceEntryResponse struct {
	SessionID string    `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	LastSeen  time.Time `json:"last_seen"`
}
