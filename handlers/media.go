package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"azv-admin-api/initializers"
	"azv-admin-api/models"
	"azv-admin-api/repository"
	"azv-admin-api/types"
	"azv-admin-api/upstream"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for the form fields sent next to the image.
const multipartOverhead = 64 << 10

// MediaArchive keeps copies of uploaded menu images.
type MediaArchive interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key, fileName string) (string, error)
}

// mediaBox checks uploads against the configured limits and archives accepted images.
// Archiving is skipped when no archive or metadata store is configured.
type mediaBox struct {
	limits  initializers.MediaConfig
	archive MediaArchive
	repo    *repository.MediaRepository
}

func (m mediaBox) enabled() bool { return m.archive != nil && m.repo != nil }

// readImage reads the "image" form file, sniffs its real type and checks it against the
// limits. It answers the request itself and returns false when the file is rejected.
// A missing file is not an error unless required is set.
func (m mediaBox) readImage(c *gin.Context, required bool) (*upstream.Upload, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, types.NewErrorResponse(types.ErrorCodeFileRejected, "file size exceeds the limit"))
			return nil, false
		}
		if errors.Is(err, http.ErrMissingFile) && !required {
			return nil, true
		}
		badRequest(c, "image is required")
		return nil, false
	}
	if header.Size > m.limits.MaxSize {
		c.JSON(http.StatusRequestEntityTooLarge, types.NewErrorResponse(types.ErrorCodeFileRejected, "file size exceeds the limit"))
		return nil, false
	}

	src, err := header.Open()
	if err != nil {
		badRequest(c, "cannot open uploaded file")
		return nil, false
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		badRequest(c, "cannot read uploaded file")
		return nil, false
	}

	// The client's Content-Type is ignored.
	mt := mimetype.Detect(data)
	contentType := mt.String()
	if err := m.limits.CheckFileAllowed(int64(len(data)), contentType); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeFileRejected, err.Error()))
		return nil, false
	}
	return &upstream.Upload{FileName: header.Filename, ContentType: contentType, Data: data}, true
}

// limitBody caps a multipart request before it is parsed.
func (m mediaBox) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, m.limits.MaxSize+multipartOverhead)
}

// store archives an image that the backend already accepted. Failures are logged; the
// backend copy is authoritative.
func (m mediaBox) store(ctx context.Context, menuItemID int, manager string, img *upstream.Upload) {
	if !m.enabled() || img == nil || menuItemID <= 0 {
		return
	}
	id, err := m.repo.Create(menuItemID, manager, img.FileName, img.ContentType, int64(len(img.Data)))
	if err != nil {
		slog.Warn("failed to record menu image", "item", menuItemID, "err", err)
		return
	}
	key := initializers.ObjectKey(menuItemID, id)
	if err := m.archive.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), img.ContentType); err != nil {
		slog.Warn("failed to archive menu image", "item", menuItemID, "key", key, "err", err)
		if err := m.repo.Delete(id); err != nil {
			slog.Warn("failed to drop menu image record", "id", id, "err", err)
		}
	}
}

// forget removes the archived images of a deleted item.
func (m mediaBox) forget(ctx context.Context, menuItemID int) {
	if !m.enabled() {
		return
	}
	items, err := m.repo.ListByItem(menuItemID)
	if err != nil {
		slog.Warn("failed to list menu images", "item", menuItemID, "err", err)
		return
	}
	for _, media := range items {
		if err := m.archive.Remove(ctx, initializers.ObjectKey(menuItemID, media.ID)); err != nil {
			slog.Warn("failed to remove archived image", "id", media.ID, "err", err)
			continue
		}
		if err := m.repo.Delete(media.ID); err != nil {
			slog.Warn("failed to drop menu image record", "id", media.ID, "err", err)
		}
	}
}

// list returns the archived images of an item with download links.
func (m mediaBox) list(ctx context.Context, menuItemID int) ([]models.MenuMedia, error) {
	if !m.enabled() {
		return []models.MenuMedia{}, nil
	}
	items, err := m.repo.ListByItem(menuItemID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		u, err := m.archive.PresignedURL(ctx, initializers.ObjectKey(menuItemID, items[i].ID), items[i].FileName)
		if err != nil {
			return nil, fmt.Errorf("presign image %s: %w", items[i].ID, err)
		}
		items[i].URL = u
	}
	return items, nil
}
