package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"azv-admin-api/models"

	"github.com/go-resty/resty/v2"
)

// Upload is an image forwarded to the backend as a multipart file.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

func (c *Client) MenuTree(ctx context.Context, cred models.Credential) ([]models.Category, error) {
	const op = "menu tree"
	resp, err := c.request(ctx, cred).Get("/api/menu-tree/")
	if err := c.check(op, resp, err, "failed to load menu"); err != nil {
		return nil, err
	}
	var wire []categoryWire
	if err := decode(op, resp, &wire); err != nil {
		return nil, err
	}
	categories := make([]models.Category, 0, len(wire))
	for _, cw := range wire {
		cat := models.Category{ID: int(cw.ID), Name: cw.Name, Items: make([]models.MenuItem, 0, len(cw.Items))}
		for _, iw := range cw.Items {
			item, err := iw.toMenuItem(cat.ID)
			if err != nil {
				c.logger.Warn("skipping malformed menu item", "category", cat.ID, "err", err)
				continue
			}
			cat.Items = append(cat.Items, item)
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

func (c *Client) ListPortions(ctx context.Context, cred models.Credential) ([]models.Portion, error) {
	const op = "list portions"
	resp, err := c.request(ctx, cred).Get("/api/portions/")
	if err := c.check(op, resp, err, "failed to load portions"); err != nil {
		return nil, err
	}
	var wire []portionWire
	if err := decode(op, resp, &wire); err != nil {
		return nil, err
	}
	portions := make([]models.Portion, 0, len(wire))
	for _, w := range wire {
		portions = append(portions, w.toPortion())
	}
	return portions, nil
}

func menuItemBody(in models.MenuItemInput, withCategory bool) map[string]any {
	body := offerFields(in.Offer)
	body["name"] = in.Name
	body["description"] = in.Description
	body["ingredients"] = in.Ingredients
	body["is_active"] = in.IsActive
	if withCategory {
		body["category_id"] = in.CategoryID
	}
	return body
}

// multipartFields flattens a JSON body into form values; variants travel as a JSON string.
func multipartFields(body map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(body))
	for k, v := range body {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case int:
			out[k] = strconv.Itoa(val)
		default:
			raw, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", k, err)
			}
			out[k] = string(raw)
		}
	}
	return out, nil
}

// CreateMenuItem creates an item, as multipart when an image is attached.
// It returns the backend id of the new item, or 0 when the backend does not echo it.
func (c *Client) CreateMenuItem(ctx context.Context, cred models.Credential, in models.MenuItemInput, image *Upload) (int, error) {
	const op = "create menu item"
	body := menuItemBody(in, true)
	r := c.request(ctx, cred)
	if image != nil {
		fields, err := multipartFields(body)
		if err != nil {
			return 0, &Error{Op: op, Message: "invalid item", Err: err}
		}
		r = withImage(r.SetMultipartFormData(fields), image)
	} else {
		r = r.SetBody(body)
	}
	resp, err := r.Post("/api/menu-items/")
	if err := c.check(op, resp, err, "failed to create item"); err != nil {
		return 0, err
	}
	var created struct {
		ID flexInt `json:"id"`
	}
	if json.Unmarshal(resp.Body(), &created) != nil {
		return 0, nil
	}
	return int(created.ID), nil
}

func (c *Client) UpdateMenuItem(ctx context.Context, cred models.Credential, id int, in models.MenuItemInput) error {
	resp, err := c.request(ctx, cred).
		SetBody(menuItemBody(in, false)).
		Patch(fmt.Sprintf("/api/menu-items/%d/", id))
	return c.check("update menu item", resp, err, "failed to update item")
}

func (c *Client) UpdateMenuItemImage(ctx context.Context, cred models.Credential, id int, image Upload) error {
	resp, err := withImage(c.request(ctx, cred), &image).
		Patch(fmt.Sprintf("/api/menu-items/%d/image/", id))
	return c.check("update menu item image", resp, err, "failed to update image")
}

func (c *Client) DeleteMenuItem(ctx context.Context, cred models.Credential, id int) error {
	resp, err := c.request(ctx, cred).Delete(fmt.Sprintf("/api/menu-items/%d/", id))
	return c.check("delete menu item", resp, err, "failed to delete item")
}

func withImage(r *resty.Request, image *Upload) *resty.Request {
	return r.SetMultipartField("image", image.FileName, image.ContentType, bytes.NewReader(image.Data))
}
