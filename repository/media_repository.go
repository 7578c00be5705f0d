package repository

import (
	"database/sql"

	"azv-admin-api/models"

	"github.com/google/uuid"
)

type MediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create stores metadata of an archived image and returns its id, which is also the
// object key suffix in the bucket.
func (r *MediaRepository) Create(menuItemID int, manager, fileName, contentType string, size int64) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(`
		INSERT INTO menu_media (id, menu_item_id, manager, file_name, content_type, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, id, menuItemID, manager, fileName, contentType, size)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *MediaRepository) GetByID(id string) (*models.MenuMedia, error) {
	var m models.MenuMedia
	err := r.db.QueryRow(`
		SELECT id, menu_item_id, manager, file_name, content_type, size, created_at
		FROM menu_media
		WHERE id = $1
	`, id).Scan(&m.ID, &m.MenuItemID, &m.Manager, &m.FileName, &m.ContentType, &m.Size, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByItem returns the archived images of a menu item, newest first.
func (r *MediaRepository) ListByItem(menuItemID int) ([]models.MenuMedia, error) {
	rows, err := r.db.Query(`
		SELECT id, menu_item_id, manager, file_name, content_type, size, created_at
		FROM menu_media
		WHERE menu_item_id = $1
		ORDER BY created_at DESC
	`, menuItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.MenuMedia{}
	for rows.Next() {
		var m models.MenuMedia
		if err := rows.Scan(&m.ID, &m.MenuItemID, &m.Manager, &m.FileName, &m.ContentType, &m.Size, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// Delete removes a metadata row, used when the object upload fails after the insert.
func (r *MediaRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM menu_media WHERE id = $1`, id)
	return err
}
