package tokensource

import (
	"fmt"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

// Keyring coordinates for the stored backend credential.
const (
	keyringService = "completions-bridge"
	keyringUser    = "backend-api-key"
)

// FromAPIKey wraps a static API key as an oauth2.TokenSource so the backend
// HTTP client can authenticate through oauth2.Transport.
func FromAPIKey(key string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: key,
		TokenType:   "Bearer",
	})
}

// FromKeyring returns a TokenSource backed by the API key saved in the OS
// keyring via Store.
func FromKeyring() (oauth2.TokenSource, error) {
	key, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		return nil, fmt.Errorf("read API key from keyring: %w", err)
	}
	return FromAPIKey(key), nil
}

// Store saves the API key in the OS keyring.
func Store(key string) error {
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if err := keyring.Set(keyringService, keyringUser, key); err != nil {
		return fmt.Errorf("write API key to keyring: %w", err)
	}
	return nil
}

// Clear removes the API key from the OS keyring. Clearing an absent key is
// not an error.
func Clear() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("clear API key from keyring: %w", err)
	}
	return nil
}
