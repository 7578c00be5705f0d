package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"azv-admin-api/models"
	"azv-admin-api/pkg/listview"
)

type SavedViewsRepository struct {
	db *sql.DB
}

func NewSavedViewsRepository(db *sql.DB) *SavedViewsRepository {
	return &SavedViewsRepository{db: db}
}

const savedViewColumns = `id, manager, section, name, state, extra, is_deleted, created_at, modified_at`

func (r *SavedViewsRepository) Create(manager string, section models.Section, name string, state listview.ListState, extra json.RawMessage) (*models.SavedView, error) {
	rawState, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode view state: %w", err)
	}
	var id int
	err = r.db.QueryRow(`
		INSERT INTO saved_views (manager, section, name, state, extra, is_deleted, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
		RETURNING id
	`, manager, section, name, rawState, nullableJSON(extra)).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// Update changes the provided fields of a live view.
func (r *SavedViewsRepository) Update(id int, name *string, state *listview.ListState, extra *json.RawMessage) error {
	var rawState []byte
	if state != nil {
		encoded, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("encode view state: %w", err)
		}
		rawState = encoded
	}
	var rawExtra []byte
	if extra != nil {
		rawExtra = nullableJSON(*extra)
	}
	res, err := r.db.Exec(`
		UPDATE saved_views SET
			name = COALESCE($2, name),
			state = COALESCE($3, state),
			extra = COALESCE($4, extra),
			modified_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`, id, name, rawState, rawExtra)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *SavedViewsRepository) SetDeleted(id int, isDeleted bool) error {
	res, err := r.db.Exec(`
		UPDATE saved_views SET is_deleted = $2, modified_at = NOW() WHERE id = $1
	`, id, isDeleted)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// GetByID returns nil, nil when the view does not exist. Deleted views are returned
// so they can be restored.
func (r *SavedViewsRepository) GetByID(id int) (*models.SavedView, error) {
	row := r.db.QueryRow(`SELECT `+savedViewColumns+` FROM saved_views WHERE id = $1`, id)
	v, err := scanSavedView(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// List returns a page of the manager's live views, optionally narrowed to one section.
func (r *SavedViewsRepository) List(manager string, section models.Section, page, pageSize int) ([]*models.SavedView, int, error) {
	offset := (page - 1) * pageSize
	rows, err := r.db.Query(`
		SELECT `+savedViewColumns+`
		FROM saved_views
		WHERE manager = $1 AND ($2 = '' OR section = $2) AND is_deleted = FALSE
		ORDER BY modified_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`, manager, string(section), pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*models.SavedView{}
	for rows.Next() {
		v, err := scanSavedView(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRow(`
		SELECT COUNT(*) FROM saved_views
		WHERE manager = $1 AND ($2 = '' OR section = $2) AND is_deleted = FALSE
	`, manager, string(section)).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedView(row rowScanner) (*models.SavedView, error) {
	var v models.SavedView
	var state []byte
	var extra []byte
	if err := row.Scan(&v.ID, &v.Manager, &v.Section, &v.Name, &state, &extra, &v.IsDeleted, &v.CreatedAt, &v.ModifiedAt); err != nil {
		return nil, err
	}
	if len(state) > 0 {
		if err := json.Unmarshal(state, &v.State); err != nil {
			return nil, fmt.Errorf("decode state of view %d: %w", v.ID, err)
		}
	}
	if len(extra) > 0 {
		v.Extra = json.RawMessage(extra)
	}
	return &v, nil
}

func nullableJSON(raw json.RawMessage) []byte {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
