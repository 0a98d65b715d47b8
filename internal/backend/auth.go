package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
)

// ValidateCredentials rejects malformed login/register input client-side.
func ValidateCredentials(c Credentials) error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(c.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, creds Credentials) (string, error) {
	return c.authenticate(ctx, "/auth/register", creds)
}

func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds Credentials) (string, error) {
	if err := ValidateCredentials(creds); err != nil {
		return "", err
	}
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, path, creds, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return out.AccessToken, nil
}
