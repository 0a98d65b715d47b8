// Package session holds the client-side session context: the access token and
// the remembered login, read and written through an injected storage port.
package session

import (
	"context"
	"fmt"
	"sync"
)

const (
	keyToken = "auth.token"
	keyEmail = "auth.email"
)

// Storage is a string key-value store.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Context is passed to views at construction instead of global state.
type Context struct {
	storage Storage
}

func New(storage Storage) *Context {
	return &Context{storage: storage}
}

// Token returns the stored access token, or "" when logged out.
func (c *Context) Token(ctx context.Context) (string, error) {
	v, _, err := c.storage.Get(ctx, keyToken)
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return v, nil
}

// SignIn stores the token and the email it was issued for.
func (c *Context) SignIn(ctx context.Context, email, token string) error {
	if err := c.storage.Set(ctx, keyToken, token); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	if err := c.storage.Set(ctx, keyEmail, email); err != nil {
		return fmt.Errorf("set email: %w", err)
	}
	return nil
}

func (c *Context) Email(ctx context.Context) (string, error) {
	v, _, err := c.storage.Get(ctx, keyEmail)
	if err != nil {
		return "", fmt.Errorf("get email: %w", err)
	}
	return v, nil
}

// SignOut forgets the token. The email is kept to prefill the next login.
func (c *Context) SignOut(ctx context.Context) error {
	if err := c.storage.Delete(ctx, keyToken); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
