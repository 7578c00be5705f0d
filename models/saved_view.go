package models

import (
	"encoding/json"
	"time"

	"azv-admin-api/pkg/listview"
)

// Section names a dashboard list.
type Section string

const (
	SectionBranches  Section = "branches"
	SectionEmployees Section = "employees"
	SectionGuests    Section = "guests"
	SectionFeedbacks Section = "feedbacks"
	SectionMenu      Section = "menu"
)

var Sections = []Section{SectionBranches, SectionEmployees, SectionGuests, SectionFeedbacks, SectionMenu}

func (s Section) Valid() bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}

// SavedView is a named list state a manager keeps for one section.
// Extra holds section-specific backend filters (minSpent, type, ...) as raw JSON.
type SavedView struct {
	ID         int                `json:"id"`
	Manager    string             `json:"manager"`
	Section    Section            `json:"section"`
	Name       string             `json:"name"`
	State      listview.ListState `json:"state"`
	Extra      json.RawMessage    `json:"extra,omitempty"`
	IsDeleted  bool               `json:"-"`
	CreatedAt  time.Time          `json:"createdAt"`
	ModifiedAt time.Time          `json:"modifiedAt"`
}
