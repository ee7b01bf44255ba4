package persist

import (
	"context"
	"sync"
)

// CredentialStore keeps the single API bearer credential under <namespace>:credential.
type CredentialStore struct {
	mu      sync.RWMutex
	backend Backend
	key     string
}

func NewCredentialStore(backend Backend, namespace string) *CredentialStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CredentialStore{backend: backend, key: namespace + ":credential"}
}

// Token returns the stored credential, or "" when none is set.
func (c *CredentialStore) Token(ctx context.Context) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok, err := c.backend.Get(ctx, c.key)
	if err != nil || !ok {
		return "", err
	}
	return string(raw), nil
}

func (c *CredentialStore) SetToken(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.Set(ctx, c.key, []byte(token))
}

// Clear drops the credential, typically after the server rejected it.
func (c *CredentialStore) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.Delete(ctx, c.key)
}
