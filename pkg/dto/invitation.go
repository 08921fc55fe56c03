package dto

import "github.com/google/uuid"

type InviteRequest struct {
	Email string `json:"email"`
}

type InvitationResponse struct {
	ID          uuid.UUID     `json:"id"`
	BoardID     uuid.UUID     `json:"board_id"`
	InviterName string        `json:"inviter_name"`
	BoardName   string        `json:"board_name"`
	Status      string        `json:"status"`
	CreatedAt   string        `json:"created_at"`
	Invitee     *UserResponse `json:"invitee,omitempty"`
}
