package upstream

import (
	"context"

	"azv-admin-api/models"
)

func (c *Client) ListBaristas(ctx context.Context, cred models.Credential) ([]models.Employee, error) {
	const op = "list baristas"
	resp, err := c.request(ctx, cred).Get("/api/baristas/")
	if err := c.check(op, resp, err, "failed to load employees"); err != nil {
		return nil, err
	}
	var wire []baristaWire
	if err := decode(op, resp, &wire); err != nil {
		return nil, err
	}
	employees := make([]models.Employee, 0, len(wire))
	for _, w := range wire {
		employees = append(employees, w.toEmployee())
	}
	return employees, nil
}

func (c *Client) RegisterBarista(ctx context.Context, cred models.Credential, in models.EmployeeInput) error {
	resp, err := c.request(ctx, cred).
		SetBody(map[string]any{
			"coffee_shop_id": in.CoffeeShopID,
			"first_name":     in.FirstName,
			"last_name":      in.LastName,
			"phone":          in.Phone,
			"password":       in.Password,
			"role":           in.Role,
		}).
		Post("/api/manager/register-barista/")
	return c.check("register barista", resp, err, "failed to create employee")
}

// EditBarista updates an employee; the password is only sent when set.
func (c *Client) EditBarista(ctx context.Context, cred models.Credential, id int, in models.EmployeeEdit) error {
	body := map[string]any{
		"barista_id": id,
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"phone":      in.Phone,
		"role":       in.Role,
	}
	if in.Password != "" {
		body["password"] = in.Password
	}
	resp, err := c.request(ctx, cred).SetBody(body).Post("/api/edit-barista/")
	return c.check("edit barista", resp, err, "failed to update employee")
}

func (c *Client) AssignBarista(ctx context.Context, cred models.Credential, id int, a models.Assignment) error {
	resp, err := c.request(ctx, cred).
		SetBody(map[string]any{
			"barista_id":     id,
			"coffee_shop_id": a.CoffeeShopID,
			"is_responsible": a.IsResponsible,
		}).
		Post("/api/assign-barista/")
	return c.check("assign barista", resp, err, "failed to assign employee")
}
