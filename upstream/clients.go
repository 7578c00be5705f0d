package upstream

import (
	"context"
	"fmt"
	"strconv"

	"azv-admin-api/models"
)

// maxClientPages stops a misbehaving backend from keeping the walk alive forever.
const maxClientPages = 1000

// ListClients returns every guest matching q, walking the backend pages until
// "next" is empty.
func (c *Client) ListClients(ctx context.Context, cred models.Credential, q models.GuestQuery) ([]models.Guest, error) {
	const op = "list clients"
	var guests []models.Guest
	for page := 1; page <= maxClientPages; page++ {
		params := map[string]string{
			"page":      strconv.Itoa(page),
			"page_size": strconv.Itoa(c.pageSize),
		}
		if q.Search != "" {
			params["search"] = q.Search
		}
		if q.MinSpent != nil {
			params["min_spent"] = strconv.FormatFloat(*q.MinSpent, 'f', -1, 64)
		}
		if q.MinCoffee != nil {
			params["min_coffee"] = strconv.Itoa(*q.MinCoffee)
		}

		resp, err := c.request(ctx, cred).SetQueryParams(params).Get("/api/clients/")
		if err := c.check(op, resp, err, "failed to load guests"); err != nil {
			return nil, err
		}
		var body clientsPage
		if err := decode(op, resp, &body); err != nil {
			return nil, err
		}
		if guests == nil {
			guests = make([]models.Guest, 0, body.Count)
		}
		for _, g := range body.Results {
			g.LastVisit = g.RegistrationDate
			guests = append(guests, g)
		}
		if body.Next == nil || *body.Next == "" || len(body.Results) == 0 {
			return guests, nil
		}
	}
	return nil, &Error{Op: op, Message: "too many pages", Err: fmt.Errorf("stopped after %d pages", maxClientPages)}
}

func (c *Client) ListFeedbacks(ctx context.Context, cred models.Credential, q models.FeedbackQuery) ([]models.Feedback, error) {
	const op = "list feedbacks"
	r := c.request(ctx, cred)
	if q.Type != "" {
		r.SetQueryParam("type", string(q.Type))
	}
	if q.CoffeeShopID > 0 {
		r.SetQueryParam("coffee_shop_id", strconv.Itoa(q.CoffeeShopID))
	}
	resp, err := r.Get("/api/feedbacks/")
	if err := c.check(op, resp, err, "failed to load feedback"); err != nil {
		return nil, err
	}
	var out []models.Feedback
	if err := decode(op, resp, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Feedback{}
	}
	return out, nil
}
