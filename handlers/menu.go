package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"azv-admin-api/initializers"
	"azv-admin-api/models"
	"azv-admin-api/pkg/notify"
	"azv-admin-api/repository"
	"azv-admin-api/types"
	"azv-admin-api/upstream"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct {
	sectionBase
	media mediaBox
}

func NewMenuHandler(backend *upstream.Client, lists *Lists, notifier notify.Notifier, limits initializers.MediaConfig) *MenuHandler {
	return &MenuHandler{
		sectionBase: sectionBase{backend: backend, lists: lists, notifier: notifier},
		media:       mediaBox{limits: limits},
	}
}

// WithArchive enables archiving of uploaded images.
func (h *MenuHandler) WithArchive(archive MediaArchive, repo *repository.MediaRepository) *MenuHandler {
	h.media.archive = archive
	h.media.repo = repo
	return h
}

func (h *MenuHandler) Categories(c *gin.Context) {
	tree, err := h.backend.MenuTree(c.Request.Context(), currentSession(c).Credential)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.CategorySummary, 0, len(tree))
	for _, cat := range tree {
		out = append(out, models.CategorySummary{ID: cat.ID, Name: cat.Name, ItemCount: len(cat.Items)})
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(out))
}

// CategoryItems renders one category as a card grid through the list machinery.
func (h *MenuHandler) CategoryItems(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, ok := h.lists.resolve(c, models.SectionMenu, menuDefaults)
	if !ok {
		return
	}
	serveList(c, h.lists, req, menuItemSchema, func(ctx context.Context, cred models.Credential) ([]models.MenuItem, error) {
		tree, err := h.backend.MenuTree(ctx, cred)
		if err != nil {
			return nil, err
		}
		for _, cat := range tree {
			if cat.ID == id {
				return cat.Items, nil
			}
		}
		return nil, &upstream.Error{Op: "menu tree", Status: http.StatusNotFound, Message: "Category not found"}
	})
}

func (h *MenuHandler) Portions(c *gin.Context) {
	portions, err := h.backend.ListPortions(c.Request.Context(), currentSession(c).Credential)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(portions))
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// bindItem reads the item from a JSON body, or from the "item" field of a multipart form
// together with an optional image.
func (h *MenuHandler) bindItem(c *gin.Context, requireCategory bool) (models.MenuItemInput, *upstream.Upload, bool) {
	var in models.MenuItemInput
	var image *upstream.Upload
	if isMultipart(c) {
		h.media.limitBody(c)
		var ok bool
		if image, ok = h.media.readImage(c, false); !ok {
			return in, nil, false
		}
		raw := c.PostForm("item")
		if raw == "" {
			badRequest(c, "item is required")
			return in, nil, false
		}
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			badRequest(c, err.Error())
			return in, nil, false
		}
	} else if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return in, nil, false
	}
	if err := in.Validate(requireCategory); err != nil {
		badRequest(c, err.Error())
		return in, nil, false
	}
	return in, image, true
}

func (h *MenuHandler) CreateItem(c *gin.Context) {
	in, image, ok := h.bindItem(c, true)
	if !ok {
		return
	}
	session := currentSession(c)
	id, err := h.backend.CreateMenuItem(c.Request.Context(), session.Credential, in, image)
	if err != nil {
		respondError(c, err)
		return
	}
	h.media.store(c.Request.Context(), id, session.Manager, image)
	h.invalidate(c, models.SectionMenu)
	c.JSON(http.StatusCreated, types.NewSuccessResponse(gin.H{"id": id}))
}

func (h *MenuHandler) UpdateItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, image, ok := h.bindItem(c, false)
	if !ok {
		return
	}
	session := currentSession(c)
	if err := h.backend.UpdateMenuItem(c.Request.Context(), session.Credential, id, in); err != nil {
		respondError(c, err)
		return
	}
	if image != nil {
		if err := h.backend.UpdateMenuItemImage(c.Request.Context(), session.Credential, id, *image); err != nil {
			respondError(c, err)
			return
		}
		h.media.store(c.Request.Context(), id, session.Manager, image)
	}
	h.invalidate(c, models.SectionMenu)
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Item updated"}))
}

func (h *MenuHandler) ReplaceImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.media.limitBody(c)
	image, ok := h.media.readImage(c, true)
	if !ok {
		return
	}
	session := currentSession(c)
	if err := h.backend.UpdateMenuItemImage(c.Request.Context(), session.Credential, id, *image); err != nil {
		respondError(c, err)
		return
	}
	h.media.store(c.Request.Context(), id, session.Manager, image)
	h.invalidate(c, models.SectionMenu)
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"fileName":    image.FileName,
		"contentType": image.ContentType,
		"size":        len(image.Data),
	}))
}

func (h *MenuHandler) DeleteItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.backend.DeleteMenuItem(c.Request.Context(), currentSession(c).Credential, id); err != nil {
		respondError(c, err)
		return
	}
	h.media.forget(c.Request.Context(), id)
	h.invalidate(c, models.SectionMenu)
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Item deleted"}))
}

// ItemImages lists archived uploads of an item with temporary download links.
func (h *MenuHandler) ItemImages(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.media.list(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(items))
}
