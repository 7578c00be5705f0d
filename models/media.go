package models

import "time"

// MenuMedia is an archived copy of an image uploaded for a menu item.
type MenuMedia struct {
	ID          string    `json:"id"`
	MenuItemID  int       `json:"menuItemId"`
	Manager     string    `json:"manager"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	URL         string    `json:"url,omitempty"`
}
