package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/budeshi/budeshi/internal/repository"
)

// APIKeySetting is the settings key the persisted credential is stored under.
const APIKeySetting = "openai_api_key"

// CredentialSource yields the API key. A missing or blank key is
// ErrMissingCredential.
type CredentialSource interface {
	APIKey(ctx context.Context) (string, error)
}

// StaticCredential is a key fixed at construction, typically from config or
// the environment.
type StaticCredential string

func (s StaticCredential) APIKey(context.Context) (string, error) {
	key := strings.TrimSpace(string(s))
	if key == "" {
		return "", ErrMissingCredential
	}
	return key, nil
}

// StoredCredential reads and writes the key in the settings table.
type StoredCredential struct {
	settings repository.SettingRepo
}

func NewStoredCredential(settings repository.SettingRepo) *StoredCredential {
	return &StoredCredential{settings: settings}
}

func (s *StoredCredential) APIKey(ctx context.Context) (string, error) {
	key, err := s.settings.Get(ctx, APIKeySetting)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrMissingCredential
	}
	if err != nil {
		return "", fmt.Errorf("reading api key: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return "", ErrMissingCredential
	}
	return strings.TrimSpace(key), nil
}

// Set stores key. A blank key is rejected; use Clear instead.
func (s *StoredCredential) Set(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("api key must not be blank")
	}
	return s.settings.Set(ctx, APIKeySetting, key)
}

func (s *StoredCredential) Clear(ctx context.Context) error {
	return s.settings.Delete(ctx, APIKeySetting)
}

// CredentialChain tries each source in order and returns the first key found.
type CredentialChain []CredentialSource

func (c CredentialChain) APIKey(ctx context.Context) (string, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		key, err := src.APIKey(ctx)
		if errors.Is(err, ErrMissingCredential) {
			continue
		}
		return key, err
	}
	return "", ErrMissingCredential
}

// HasCredential reports whether src currently yields a key. Errors other
// than ErrMissingCredential count as absent.
func HasCredential(ctx context.Context, src CredentialSource) bool {
	if src == nil {
		return false
	}
	_, err := src.APIKey(ctx)
	return err == nil
}

// MaskKey shows only the last four characters of key.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
