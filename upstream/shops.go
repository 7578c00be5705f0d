package upstream

import (
	"context"

	"azv-admin-api/models"
)

// Login exchanges manager credentials for a backend token. Phone is sent as digits only.
func (c *Client) Login(ctx context.Context, phone, password string) (models.Credential, error) {
	const op = "login"
	var out struct {
		Token string `json:"token"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"phone": digitsOnly(phone), "password": password}).
		Post("/api/manager/login/")
	if err := c.check(op, resp, err, "authorization failed"); err != nil {
		return models.Credential{}, err
	}
	if err := decode(op, resp, &out); err != nil {
		return models.Credential{}, err
	}
	if out.Token == "" {
		return models.Credential{}, &Error{Op: op, Status: 401, Message: "authorization failed"}
	}
	return models.Credential{Token: out.Token}, nil
}

func (c *Client) ListCoffeeShops(ctx context.Context, cred models.Credential) ([]models.Branch, error) {
	const op = "list coffee shops"
	resp, err := c.request(ctx, cred).Get("/api/coffeeshops/")
	if err := c.check(op, resp, err, "failed to load branches"); err != nil {
		return nil, err
	}
	var wire []coffeeShopWire
	if err := decode(op, resp, &wire); err != nil {
		return nil, err
	}
	branches := make([]models.Branch, 0, len(wire))
	for _, w := range wire {
		branches = append(branches, w.toBranch())
	}
	return branches, nil
}

func (c *Client) RegisterCoffeeShop(ctx context.Context, cred models.Credential, in models.BranchInput) error {
	body := map[string]any{"name": in.Name, "address": in.Address}
	if in.Latitude != nil {
		body["latitude"] = *in.Latitude
	}
	if in.Longitude != nil {
		body["longitude"] = *in.Longitude
	}
	resp, err := c.request(ctx, cred).SetBody(body).Post("/api/manager/register-coffeeshop/")
	return c.check("register coffee shop", resp, err, "failed to create branch")
}

// CoffeeShopEdit changes a branch. Nil parts are left untouched.
type CoffeeShopEdit struct {
	Fields       *models.BranchInput
	OpeningHours models.OpeningHours
}

func (c *Client) EditCoffeeShop(ctx context.Context, cred models.Credential, id int, edit CoffeeShopEdit) error {
	body := map[string]any{"coffee_shop_id": id}
	if f := edit.Fields; f != nil {
		body["name"] = f.Name
		body["address"] = f.Address
		if f.Latitude != nil {
			body["latitude"] = *f.Latitude
		}
		if f.Longitude != nil {
			body["longitude"] = *f.Longitude
		}
	}
	if edit.OpeningHours != nil {
		body["opening_hours"] = edit.OpeningHours
	}
	resp, err := c.request(ctx, cred).SetBody(body).Post("/api/edit-coffeeshop/")
	return c.check("edit coffee shop", resp, err, "failed to update branch")
}

func digitsOnly(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
