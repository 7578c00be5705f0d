package handlers

import (
	"net/http"

	"azv-admin-api/models"
	"azv-admin-api/pkg/events"
	"azv-admin-api/pkg/notify"
	"azv-admin-api/types"
	"azv-admin-api/upstream"

	"github.com/gin-gonic/gin"
)

// sectionBase is what every section handler needs: the backend, the list machinery and
// a way to tell the manager's dashboards that a section changed.
type sectionBase struct {
	backend  *upstream.Client
	lists    *Lists
	notifier notify.Notifier
}

func (b sectionBase) invalidate(c *gin.Context, section models.Section) {
	if b.notifier == nil {
		return
	}
	b.notifier.NotifyManager(currentSession(c).Manager, events.NewListInvalidated(string(section)))
}

type BranchesHandler struct {
	sectionBase
}

func NewBranchesHandler(backend *upstream.Client, lists *Lists, notifier notify.Notifier) *BranchesHandler {
	return &BranchesHandler{sectionBase{backend: backend, lists: lists, notifier: notifier}}
}

func (h *BranchesHandler) List(c *gin.Context) {
	req, ok := h.lists.resolve(c, models.SectionBranches, branchDefaults)
	if !ok {
		return
	}
	serveList(c, h.lists, req, branchSchema, h.backend.ListCoffeeShops)
}

func (h *BranchesHandler) Export(c *gin.Context) {
	req, ok := h.lists.resolve(c, models.SectionBranches, branchDefaults)
	if !ok {
		return
	}
	serveExport(c, req, branchSchema, branchColumns, h.backend.ListCoffeeShops)
}

func (h *BranchesHandler) Create(c *gin.Context) {
	var in models.BranchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.backend.RegisterCoffeeShop(c.Request.Context(), currentSession(c).Credential, in); err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, models.SectionBranches)
	c.JSON(http.StatusCreated, types.NewSuccessResponse(gin.H{"message": "Branch created"}))
}

func (h *BranchesHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in models.BranchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	edit := upstream.CoffeeShopEdit{Fields: &in}
	if err := h.backend.EditCoffeeShop(c.Request.Context(), currentSession(c).Credential, id, edit); err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, models.SectionBranches)
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Branch updated"}))
}

// UpdateHours replaces the weekly schedule. Days left out get the default hours.
func (h *BranchesHandler) UpdateHours(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		OpeningHours models.OpeningHours `json:"opening_hours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := req.OpeningHours.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}
	hours := req.OpeningHours.WithDefaults()
	edit := upstream.CoffeeShopEdit{OpeningHours: hours}
	if err := h.backend.EditCoffeeShop(c.Request.Context(), currentSession(c).Credential, id, edit); err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, models.SectionBranches)
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"opening_hours": hours}))
}
