package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

func validateEmployee(e Employee) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(e.Role) == "" {
		return fmt.Errorf("%w: role is required", ErrValidation)
	}
	if e.AvailabilityPct < 0 || e.AvailabilityPct > 100 {
		return fmt.Errorf("%w: availability must be between 0 and 100", ErrValidation)
	}
	return nil
}

func (c *Client) ListEmployees(ctx context.Context) ([]Employee, error) {
	var out []Employee
	if err := c.do(ctx, http.MethodGet, "/user/employees", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateEmployee(ctx context.Context, e Employee) (*Employee, error) {
	if err := validateEmployee(e); err != nil {
		return nil, err
	}
	var out Employee
	if err := c.do(ctx, http.MethodPost, "/user/employees", e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEmployee(ctx context.Context, id int, e Employee) (*Employee, error) {
	if err := validateEmployee(e); err != nil {
		return nil, err
	}
	var out Employee
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/user/employees/%d", id), e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEmployee(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/user/employees/%d", id), nil, nil)
}
