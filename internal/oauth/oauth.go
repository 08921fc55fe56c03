package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
)

// UserInfo is the provider-neutral identity a sign-in resolves to.
// ID is the provider's stable account id; (Provider, ID) is the key
// user rows are matched on.
type UserInfo struct {
	Email     string
	Name      string
	AvatarURL string
	ID        string
	Provider  string
}

// DisplayName is the name shown on boards and invitations. Providers
// may report an empty name; the email local part stands in then.
func (u *UserInfo) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// Provider is one sign-in backend. GetConsentURL starts the dance,
// ExchangeCode finishes it and resolves the account to a UserInfo.
type Provider interface {
	GetConsentURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*UserInfo, error)
	Name() string
}

// GenerateState returns the CSRF state carried through the consent
// round trip.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
