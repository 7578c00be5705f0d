package models

import "strings"

// Guest is a loyalty account of the chain.
type Guest struct {
	ID                    int     `json:"id"`
	Phone                 string  `json:"phone"`
	FirstName             string  `json:"first_name"`
	LastName              string  `json:"last_name"`
	BirthDate             *string `json:"birth_date"`
	Points                float64 `json:"points"`
	CoffeeCount           int     `json:"coffee_count"`
	TotalSpent            float64 `json:"total_spent"`
	TotalSpentRubles      float64 `json:"total_spent_rubles"`
	FreeCoffeeCount       int     `json:"free_coffee_count"`
	RegistrationDate      string  `json:"registration_date"`
	Rank                  string  `json:"rank"`
	CashbackPercent       float64 `json:"cashback_percent"`
	NextRank              *string `json:"next_rank,omitempty"`
	ProgressToNextPercent float64 `json:"progress_to_next_percent"`
	RankColor             *string `json:"rank_color,omitempty"`
	RankIcon              *string `json:"rank_icon,omitempty"`
	// LastVisit falls back to the registration date; the backend reports no visits.
	LastVisit string `json:"lastVisit"`
}

func (g Guest) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

// GuestQuery narrows the guest collection on the backend side.
type GuestQuery struct {
	Search    string
	MinSpent  *float64
	MinCoffee *int
}
