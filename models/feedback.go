package models

import (
	"strings"
	"time"
)

type FeedbackType string

const (
	FeedbackService FeedbackType = "service"
	FeedbackIdea    FeedbackType = "idea"
)

func (t FeedbackType) Valid() bool {
	return t == FeedbackService || t == FeedbackIdea
}

type FeedbackUser struct {
	ID        int    `json:"id"`
	Phone     string `json:"phone"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName is the author's full name, or "Гость" when the guest left none.
func (u FeedbackUser) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return "Гость"
}

type ShopRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Feedback struct {
	ID         int          `json:"id"`
	Type       FeedbackType `json:"type"`
	Text       string       `json:"text"`
	CreatedAt  time.Time    `json:"created_at"`
	User       FeedbackUser `json:"user"`
	CoffeeShop ShopRef      `json:"coffee_shop"`
}

// FeedbackQuery narrows feedback on the backend side; zero values mean "all".
type FeedbackQuery struct {
	Type         FeedbackType
	CoffeeShopID int
}
