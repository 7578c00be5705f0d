package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"azv-admin-api/models"
)

// flexInt accepts 12 and "12".
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("id %q is not numeric", s)
		}
		*f = flexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}

// flexFloat accepts 250, 250.5 and "250.00"; null leaves the pointer nil.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("price %q is not numeric", s)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type coffeeShopWire struct {
	ID                            flexInt             `json:"id"`
	Name                          string              `json:"name"`
	Address                       string              `json:"address"`
	StaffCount                    int                 `json:"staff_count"`
	ResponsibleSeniorBarista      *string             `json:"responsible_senior_barista"`
	ResponsibleSeniorBaristaPhone *string             `json:"responsible_senior_barista_phone"`
	Bonuses                       *float64            `json:"bonuses"`
	Latitude                      *float64            `json:"latitude"`
	Longitude                     *float64            `json:"longitude"`
	OpeningHours                  models.OpeningHours `json:"opening_hours"`
}

func (w coffeeShopWire) toBranch() models.Branch {
	b := models.Branch{
		ID:               strconv.Itoa(int(w.ID)),
		Name:             w.Name,
		Address:          w.Address,
		EmployeesCount:   w.StaffCount,
		ContactPerson:    "-",
		Latitude:         w.Latitude,
		Longitude:        w.Longitude,
		OpeningHours:     w.OpeningHours,
		ResponsiblePhone: w.ResponsibleSeniorBaristaPhone,
	}
	if w.ResponsibleSeniorBarista != nil && *w.ResponsibleSeniorBarista != "" {
		b.ContactPerson = *w.ResponsibleSeniorBarista
	}
	if w.Bonuses != nil {
		b.Bonuses = *w.Bonuses
	}
	return b
}

type baristaWire struct {
	ID             flexInt     `json:"id"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	CoffeeShopName *string     `json:"coffee_shop_name"`
	Phone          string      `json:"phone"`
	Role           models.Role `json:"role"`
}

func (w baristaWire) toEmployee() models.Employee {
	e := models.Employee{
		ID:        strconv.Itoa(int(w.ID)),
		Name:      strings.TrimSpace(w.FirstName + " " + w.LastName),
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Phone:     w.Phone,
		Role:      w.Role,
		RoleLabel: w.Role.Label(),
	}
	if w.CoffeeShopName != nil {
		e.Company = *w.CoffeeShopName
	}
	return e
}

type clientsPage struct {
	Count   int            `json:"count"`
	Next    *string        `json:"next"`
	Results []models.Guest `json:"results"`
}

type portionWire struct {
	ID     flexInt   `json:"id"`
	Name   string    `json:"name"`
	Volume flexFloat `json:"volume"`
	Unit   string    `json:"unit"`
}

func (w portionWire) toPortion() models.Portion {
	return models.Portion{ID: int(w.ID), Name: w.Name, Volume: float64(w.Volume), Unit: w.Unit}
}

type variantWire struct {
	ID        flexInt     `json:"id"`
	Portion   portionWire `json:"portion"`
	Price     flexFloat   `json:"price"`
	IsDefault bool        `json:"is_default"`
}

type menuItemWire struct {
	ID          flexInt       `json:"id"`
	Name        string        `json:"name"`
	Price       *flexFloat    `json:"price"`
	Image       *string       `json:"image"`
	IsActive    *bool         `json:"is_active"`
	Description *string       `json:"description"`
	Ingredients *string       `json:"ingredients"`
	Volume      *string       `json:"volume"`
	Variants    []variantWire `json:"variants"`
}

func (w menuItemWire) toMenuItem(categoryID int) (models.MenuItem, error) {
	item := models.MenuItem{
		ID:         int(w.ID),
		CategoryID: categoryID,
		Name:       w.Name,
		IsActive:   w.IsActive == nil || *w.IsActive,
	}
	if w.Image != nil {
		item.Image = *w.Image
	}
	if w.Description != nil {
		item.Description = *w.Description
	}
	if w.Ingredients != nil {
		item.Ingredients = *w.Ingredients
	}

	variants := make([]models.Variant, 0, len(w.Variants))
	for _, v := range w.Variants {
		portion := v.Portion.toPortion()
		variants = append(variants, models.Variant{
			ID:        int(v.ID),
			PortionID: portion.ID,
			Portion:   portion,
			Price:     strconv.FormatFloat(float64(v.Price), 'f', 2, 64),
			IsDefault: v.IsDefault,
		})
	}
	var price *float64
	if w.Price != nil && len(variants) == 0 {
		p := float64(*w.Price)
		price = &p
	}
	offer, err := models.NewOffer(variants, price, w.Volume)
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("menu item %d: %w", item.ID, err)
	}
	item.Offer = offer
	return item, nil
}

type categoryWire struct {
	ID    flexInt        `json:"id"`
	Name  string         `json:"name"`
	Items []menuItemWire `json:"items"`
}

type variantOut struct {
	PortionID int    `json:"portion_id"`
	Price     string `json:"price"`
	IsDefault bool   `json:"is_default"`
}

// offerFields renders an offer the way the backend expects it: "variants", or
// "price" and "volume" as strings.
func offerFields(o models.Offer) map[string]any {
	out := map[string]any{}
	switch v := o.(type) {
	case models.VariantOffer:
		variants := make([]variantOut, 0, len(v.Variants))
		for _, variant := range v.Variants {
			variants = append(variants, variantOut{PortionID: variant.PortionID, Price: variant.Price, IsDefault: variant.IsDefault})
		}
		out["variants"] = variants
	case models.FlatOffer:
		out["price"] = strconv.FormatFloat(v.Price, 'f', -1, 64)
		out["volume"] = v.Volume
	}
	return out
}
