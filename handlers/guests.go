package handlers

import (
	"context"
	"fmt"
	"strconv"

	"azv-admin-api/models"
	"azv-admin-api/pkg/notify"
	"azv-admin-api/upstream"

	"github.com/gin-gonic/gin"
)

// GuestsHandler serves the read-only guest and feedback lists.
type GuestsHandler struct {
	sectionBase
}

func NewGuestsHandler(backend *upstream.Client, lists *Lists, notifier notify.Notifier) *GuestsHandler {
	return &GuestsHandler{sectionBase{backend: backend, lists: lists, notifier: notifier}}
}

func guestQuery(req listRequest) (models.GuestQuery, error) {
	var q models.GuestQuery
	if raw := req.Param("minSpent"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return q, fmt.Errorf("minSpent must be a non-negative number")
		}
		q.MinSpent = &v
	}
	if raw := req.Param("minCoffee"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return q, fmt.Errorf("minCoffee must be a non-negative integer")
		}
		q.MinCoffee = &v
	}
	return q, nil
}

func (h *GuestsHandler) guests(c *gin.Context) (listRequest, fetchFunc[models.Guest], bool) {
	req, ok := h.lists.resolve(c, models.SectionGuests, guestDefaults, "minSpent", "minCoffee")
	if !ok {
		return req, nil, false
	}
	q, err := guestQuery(req)
	if err != nil {
		badRequest(c, err.Error())
		return req, nil, false
	}
	return req, func(ctx context.Context, cred models.Credential) ([]models.Guest, error) {
		return h.backend.ListClients(ctx, cred, q)
	}, true
}

func (h *GuestsHandler) ListGuests(c *gin.Context) {
	if req, fetch, ok := h.guests(c); ok {
		serveList(c, h.lists, req, guestSchema, fetch)
	}
}

func (h *GuestsHandler) ExportGuests(c *gin.Context) {
	if req, fetch, ok := h.guests(c); ok {
		serveExport(c, req, guestSchema, guestColumns, fetch)
	}
}

func feedbackQuery(req listRequest) (models.FeedbackQuery, error) {
	var q models.FeedbackQuery
	if raw := req.Param("type"); raw != "" {
		q.Type = models.FeedbackType(raw)
		if !q.Type.Valid() {
			return q, fmt.Errorf("type must be service or idea")
		}
	}
	if raw := req.Param("coffeeShopId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return q, fmt.Errorf("coffeeShopId must be a positive id")
		}
		q.CoffeeShopID = id
	}
	return q, nil
}

func (h *GuestsHandler) feedbacks(c *gin.Context) (listRequest, fetchFunc[models.Feedback], bool) {
	req, ok := h.lists.resolve(c, models.SectionFeedbacks, feedbackDefaults, "type", "coffeeShopId")
	if !ok {
		return req, nil, false
	}
	q, err := feedbackQuery(req)
	if err != nil {
		badRequest(c, err.Error())
		return req, nil, false
	}
	return req, func(ctx context.Context, cred models.Credential) ([]models.Feedback, error) {
		return h.backend.ListFeedbacks(ctx, cred, q)
	}, true
}

func (h *GuestsHandler) ListFeedbacks(c *gin.Context) {
	if req, fetch, ok := h.feedbacks(c); ok {
		serveList(c, h.lists, req, feedbackSchema, fetch)
	}
}

func (h *GuestsHandler) ExportFeedbacks(c *gin.Context) {
	if req, fetch, ok := h.feedbacks(c); ok {
		serveExport(c, req, feedbackSchema, feedbackColumns, fetch)
	}
}
