package models

import (
	"time"

	"github.com/google/uuid"
)

// BoardInvitation carries denormalized snapshots of the inviter's display
// name and the board name taken at creation time, so renaming either later
// does not rewrite invitation history.
type BoardInvitation struct {
	ID          uuid.UUID `json:"id"`
	BoardID     uuid.UUID `json:"board_id"`
	InviterID   uuid.UUID `json:"inviter_id"`
	InviteeID   uuid.UUID `json:"invitee_id"`
	InviterName string    `json:"inviter_name"`
	BoardName   string    `json:"board_name"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Invitee     *User     `json:"invitee,omitempty"`
}

const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusRejected = "rejected"
)
