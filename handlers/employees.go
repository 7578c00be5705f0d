package handlers

import (
	"net/http"

	"azv-admin-api/models"
	"azv-admin-api/pkg/notify"
	"azv-admin-api/types"
	"azv-admin-api/upstream"

	"github.com/gin-gonic/gin"
)

type EmployeesHandler struct {
	sectionBase
}

func NewEmployeesHandler(backend *upstream.Client, lists *Lists, notifier notify.Notifier) *EmployeesHandler {
	return &EmployeesHandler{sectionBase{backend: backend, lists: lists, notifier: notifier}}
}

func (h *EmployeesHandler) List(c *gin.Context) {
	req, ok := h.lists.resolve(c, models.SectionEmployees, employeeDefaults)
	if !ok {
		return
	}
	serveList(c, h.lists, req, employeeSchema, h.backend.ListBaristas)
}

func (h *EmployeesHandler) Export(c *gin.Context) {
	req, ok := h.lists.resolve(c, models.SectionEmployees, employeeDefaults)
	if !ok {
		return
	}
	serveExport(c, req, employeeSchema, employeeColumns, h.backend.ListBaristas)
}

func (h *EmployeesHandler) Create(c *gin.Context) {
	var in models.EmployeeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !in.Role.Valid() {
		badRequest(c, "role must be barista or senior_barista")
		return
	}
	if err := h.backend.RegisterBarista(c.Request.Context(), currentSession(c).Credential, in); err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, models.SectionEmployees)
	// Branch employee counts change too.
	h.invalidate(c, models.SectionBranches)
	c.JSON(http.StatusCreated, types.NewSuccessResponse(gin.H{"message": "Employee created"}))
}

func (h *EmployeesHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in models.EmployeeEdit
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !in.Role.Valid() {
		badRequest(c, "role must be barista or senior_barista")
		return
	}
	if err := h.backend.EditBarista(c.Request.Context(), currentSession(c).Credential, id, in); err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, models.SectionEmployees)
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Employee updated"}))
}

// Assign moves an employee to a branch, optionally as its responsible senior barista.
func (h *EmployeesHandler) Assign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in models.Assignment
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.backend.AssignBarista(c.Request.Context(), currentSession(c).Credential, id, in); err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, models.SectionEmployees)
	h.invalidate(c, models.SectionBranches)
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Employee assigned"}))
}
