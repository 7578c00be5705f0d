package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"azv-admin-api/models"
	"azv-admin-api/pkg/listview"
	"azv-admin-api/repository"
	"azv-admin-api/types"

	"github.com/gin-gonic/gin"
)

// sortable reports, per section, which fields a list can be sorted by.
var sortable = map[models.Section]func(string) bool{
	models.SectionBranches:  branchSchema.Has,
	models.SectionEmployees: employeeSchema.Has,
	models.SectionGuests:    guestSchema.Has,
	models.SectionFeedbacks: feedbackSchema.Has,
	models.SectionMenu:      menuItemSchema.Has,
}

// ViewsHandler manages the saved list states of the signed-in manager.
type ViewsHandler struct {
	repo *repository.SavedViewsRepository
}

func NewViewsHandler(repo *repository.SavedViewsRepository) *ViewsHandler {
	return &ViewsHandler{repo: repo}
}

func validateState(section models.Section, s listview.ListState) error {
	if s.Sort.Field != "" && !sortable[section](s.Sort.Field) {
		return fmt.Errorf("unknown sort field %q", s.Sort.Field)
	}
	if s.Sort.Direction != "" {
		if _, ok := listview.ParseDirection(string(s.Sort.Direction)); !ok {
			return fmt.Errorf("sort direction must be asc or desc")
		}
	}
	if s.Page.Index < 0 {
		return fmt.Errorf("page index must not be negative")
	}
	if s.Page.Size != 0 {
		if err := types.ValidatePageSize(s.Page.Size); err != nil {
			return err
		}
	}
	return nil
}

func validExtra(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var obj map[string]any
	return json.Unmarshal(raw, &obj) == nil
}

func (h *ViewsHandler) Create(c *gin.Context) {
	var req struct {
		Section models.Section     `json:"section" binding:"required"`
		Name    string             `json:"name" binding:"required"`
		State   listview.ListState `json:"state"`
		Extra   json.RawMessage    `json:"extra"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !req.Section.Valid() {
		badRequest(c, "unknown section")
		return
	}
	if err := validateState(req.Section, req.State); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !validExtra(req.Extra) {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "extra must be a JSON object"))
		return
	}

	view, err := h.repo.Create(currentSession(c).Manager, req.Section, req.Name, req.State, req.Extra)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(view))
}

func (h *ViewsHandler) List(c *gin.Context) {
	section := models.Section(c.Query("section"))
	if section != "" && !section.Valid() {
		badRequest(c, "unknown section")
		return
	}
	pagination := types.ParsePaginationParams(c)
	items, total, err := h.repo.List(currentSession(c).Manager, section, pagination.Page, pagination.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(pagination.BuildResponse(items, total)))
}

// owned loads a view of the current manager, deleted or not; others' views are missing.
func (h *ViewsHandler) owned(c *gin.Context) (*models.SavedView, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	view, err := h.repo.GetByID(id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if view == nil || view.Manager != currentSession(c).Manager {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "View not found"))
		return nil, false
	}
	return view, true
}

func (h *ViewsHandler) Update(c *gin.Context) {
	view, ok := h.owned(c)
	if !ok {
		return
	}
	var req struct {
		Name  *string             `json:"name"`
		State *listview.ListState `json:"state"`
		Extra *json.RawMessage    `json:"extra"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Name != nil && *req.Name == "" {
		badRequest(c, "name must not be empty")
		return
	}
	if req.State != nil {
		if err := validateState(view.Section, *req.State); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	if req.Extra != nil && !validExtra(*req.Extra) {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "extra must be a JSON object"))
		return
	}

	if err := h.repo.Update(view.ID, req.Name, req.State, req.Extra); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "View updated successfully"}))
}

// ToggleSort applies a header click to the stored state: the same field flips
// direction, another field starts ascending.
func (h *ViewsHandler) ToggleSort(c *gin.Context) {
	view, ok := h.owned(c)
	if !ok {
		return
	}
	var req struct {
		Field string `json:"field" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !sortable[view.Section](req.Field) {
		badRequest(c, fmt.Sprintf("unknown sort field %q", req.Field))
		return
	}

	state := view.State
	state.ToggleSort(req.Field)
	if err := h.repo.Update(view.ID, nil, &state, nil); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(state))
}

func (h *ViewsHandler) Delete(c *gin.Context) {
	h.setDeleted(c, true, "View deleted successfully")
}

func (h *ViewsHandler) Restore(c *gin.Context) {
	h.setDeleted(c, false, "View restored successfully")
}

func (h *ViewsHandler) setDeleted(c *gin.Context, deleted bool, msg string) {
	view, ok := h.owned(c)
	if !ok {
		return
	}
	if err := h.repo.SetDeleted(view.ID, deleted); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": msg}))
}
