package models

import (
	"encoding/json"
	"errors"
	"strings"
)

// MenuItemInput is what the dashboard sends to create or edit a menu item.
type MenuItemInput struct {
	CategoryID  int
	Name        string
	Description string
	Ingredients string
	IsActive    bool
	Offer       Offer
}

type menuItemInputJSON struct {
	CategoryID  int             `json:"categoryId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Ingredients string          `json:"ingredients"`
	IsActive    *bool           `json:"isActive"`
	Offer       json.RawMessage `json:"offer"`
}

func (in *MenuItemInput) UnmarshalJSON(data []byte) error {
	var raw menuItemInputJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	offer, err := UnmarshalOffer(raw.Offer)
	if err != nil {
		return err
	}
	active := true
	if raw.IsActive != nil {
		active = *raw.IsActive
	}
	*in = MenuItemInput{
		CategoryID:  raw.CategoryID,
		Name:        strings.TrimSpace(raw.Name),
		Description: raw.Description,
		Ingredients: raw.Ingredients,
		IsActive:    active,
		Offer:       offer,
	}
	return nil
}

// Validate checks the fields needed by both create and edit.
func (in MenuItemInput) Validate(requireCategory bool) error {
	if in.Name == "" {
		return errors.New("name is required")
	}
	if requireCategory && in.CategoryID <= 0 {
		return errors.New("categoryId is required")
	}
	if v, ok := in.Offer.(VariantOffer); ok {
		for _, variant := range v.Variants {
			if variant.PortionID <= 0 {
				return errors.New("every variant needs a portionId")
			}
			if strings.TrimSpace(variant.Price) == "" {
				return errors.New("every variant needs a price")
			}
		}
	}
	return nil
}
