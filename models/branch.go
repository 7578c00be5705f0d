package models

import (
	"fmt"
	"strconv"
	"time"
)

// DayHours is one day's opening window in "HH:MM" form.
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// OpeningHours maps weekday ids "0" (Monday) through "6" (Sunday) to hours.
type OpeningHours map[string]DayHours

const (
	DefaultOpen  = "09:00"
	DefaultClose = "18:00"
)

// WithDefaults returns a copy covering all seven days; missing days get 09:00-18:00.
func (h OpeningHours) WithDefaults() OpeningHours {
	out := make(OpeningHours, 7)
	for day := 0; day < 7; day++ {
		key := strconv.Itoa(day)
		if v, ok := h[key]; ok {
			out[key] = v
			continue
		}
		out[key] = DayHours{Open: DefaultOpen, Close: DefaultClose}
	}
	return out
}

// Validate checks day keys and that every window opens before it closes.
func (h OpeningHours) Validate() error {
	for key, v := range h {
		day, err := strconv.Atoi(key)
		if err != nil || day < 0 || day > 6 {
			return fmt.Errorf("invalid weekday %q", key)
		}
		open, err := time.Parse("15:04", v.Open)
		if err != nil {
			return fmt.Errorf("day %s: invalid open time %q", key, v.Open)
		}
		closing, err := time.Parse("15:04", v.Close)
		if err != nil {
			return fmt.Errorf("day %s: invalid close time %q", key, v.Close)
		}
		if !open.Before(closing) {
			return fmt.Errorf("day %s: open time must be before close time", key)
		}
	}
	return nil
}

// Branch is one coffee shop of the chain.
type Branch struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Address          string       `json:"address"`
	EmployeesCount   int          `json:"employeesCount"`
	ContactPerson    string       `json:"contactPerson"`
	Bonuses          float64      `json:"bonuses"`
	Latitude         *float64     `json:"latitude,omitempty"`
	Longitude        *float64     `json:"longitude,omitempty"`
	OpeningHours     OpeningHours `json:"opening_hours,omitempty"`
	ResponsiblePhone *string      `json:"responsible_senior_barista_phone"`
}

// BranchInput carries the editable fields of a branch.
type BranchInput struct {
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address" binding:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}
