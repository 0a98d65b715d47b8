package chat

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/proposer/internal/backend"
)

// Employees lists the saved roster.
func (v *View) Employees(ctx context.Context) ([]backend.Employee, error) {
	api, err := v.requireAPI()
	if err != nil {
		return nil, err
	}
	list, err := api.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return list, nil
}

func (v *View) CreateEmployee(ctx context.Context, e backend.Employee) (*backend.Employee, error) {
	api, err := v.requireAPI()
	if err != nil {
		return nil, err
	}
	created, err := api.CreateEmployee(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	v.logger.Info("employee created", "employee_id", created.ID, "role", created.Role)
	return created, nil
}

func (v *View) UpdateEmployee(ctx context.Context, id int, e backend.Employee) (*backend.Employee, error) {
	api, err := v.requireAPI()
	if err != nil {
		return nil, err
	}
	updated, err := api.UpdateEmployee(ctx, id, e)
	if err != nil {
		return nil, fmt.Errorf("update employee %d: %w", id, err)
	}
	return updated, nil
}

func (v *View) DeleteEmployee(ctx context.Context, id int) error {
	api, err := v.requireAPI()
	if err != nil {
		return err
	}
	if err := api.DeleteEmployee(ctx, id); err != nil {
		return fmt.Errorf("delete employee %d: %w", id, err)
	}
	v.logger.Info("employee deleted", "employee_id", id)
	return nil
}
