package services

import (
	"testing"

	"github.com/avilaj/tablero-api/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestEmailService_IsConfigured(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      config.SMTPConfig
		expected bool
	}{
		{
			name: "fully configured",
			cfg: config.SMTPConfig{
				Host:     "smtp.example.com",
				Port:     "587",
				Username: "user",
				Password: "pass",
				From:     "noreply@example.com",
			},
			expected: true,
		},
		{
			name:     "empty config",
			cfg:      config.SMTPConfig{},
			expected: false,
		},
		{
			name: "missing password",
			cfg: config.SMTPConfig{
				Host:     "smtp.example.com",
				Port:     "587",
				Username: "user",
				From:     "noreply@example.com",
			},
			expected: false,
		},
		{
			name: "missing from address",
			cfg: config.SMTPConfig{
				Host:     "smtp.example.com",
				Port:     "587",
				Username: "user",
				Password: "pass",
			},
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewEmailService(tc.cfg)
			assert.Equal(t, tc.expected, svc.IsConfigured())
		})
	}
}

func TestEmailService_Send_Unconfigured(t *testing.T) {
	svc := NewEmailService(config.SMTPConfig{})

	// Sending without SMTP configured is a silent no-op.
	err := svc.Send("someone@example.com", "Subject", "<p>Body</p>")

	assert.NoError(t, err)
}

func TestEmailService_SendBoardInvite_Unconfigured(t *testing.T) {
	svc := NewEmailService(config.SMTPConfig{})

	err := svc.SendBoardInvite("someone@example.com", "Roadmap", "Alice", "https://app.example.com/invitations")

	assert.NoError(t, err)
}
