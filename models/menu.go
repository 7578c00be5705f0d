package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Portion is a size option offered by the backend, e.g. "M 350 ml".
type Portion struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
	Unit   string  `json:"unit"`
}

// Variant is a purchasable portion of a menu item with its own price.
type Variant struct {
	ID        int     `json:"id,omitempty"`
	PortionID int     `json:"portionId"`
	Portion   Portion `json:"portion"`
	Price     string  `json:"price"`
	IsDefault bool    `json:"isDefault"`
}

type OfferKind string

const (
	OfferVariants OfferKind = "variants"
	OfferFlat     OfferKind = "flat"
)

// Offer is how a menu item is sold: either a list of variants or a single
// price and volume, never both.
type Offer interface {
	Kind() OfferKind
	// MinPrice is the cheapest price of the offer.
	MinPrice() (float64, bool)
	isOffer()
}

type VariantOffer struct {
	Variants []Variant `json:"variants"`
}

func (VariantOffer) Kind() OfferKind { return OfferVariants }
func (VariantOffer) isOffer()        {}

func (o VariantOffer) MinPrice() (float64, bool) {
	found := false
	var lowest float64
	for _, v := range o.Variants {
		p, err := strconv.ParseFloat(v.Price, 64)
		if err != nil {
			continue
		}
		if !found || p < lowest {
			lowest, found = p, true
		}
	}
	return lowest, found
}

// Default returns the default variant, or the first one when none is flagged.
func (o VariantOffer) Default() (Variant, bool) {
	for _, v := range o.Variants {
		if v.IsDefault {
			return v, true
		}
	}
	if len(o.Variants) > 0 {
		return o.Variants[0], true
	}
	return Variant{}, false
}

type FlatOffer struct {
	Price  float64 `json:"price"`
	Volume string  `json:"volume"`
}

func (FlatOffer) Kind() OfferKind             { return OfferFlat }
func (FlatOffer) isOffer()                    {}
func (o FlatOffer) MinPrice() (float64, bool) { return o.Price, true }

var ErrOfferConflict = errors.New("an item has either variants or a price, not both")

// NewOffer builds the offer from the loose form used by the backend and the
// dashboard forms. Variants win when present; price without volume is accepted.
// It returns nil when neither variants nor a price are given.
func NewOffer(variants []Variant, price *float64, volume *string) (Offer, error) {
	if len(variants) > 0 {
		if price != nil {
			return nil, ErrOfferConflict
		}
		return VariantOffer{Variants: NormalizeDefaults(variants)}, nil
	}
	if price == nil {
		return nil, nil
	}
	flat := FlatOffer{Price: *price}
	if volume != nil {
		flat.Volume = *volume
	}
	return flat, nil
}

// NormalizeDefaults returns a copy in which exactly one variant is the default:
// the first flagged one, or the first variant when none is flagged.
func NormalizeDefaults(variants []Variant) []Variant {
	out := make([]Variant, len(variants))
	copy(out, variants)
	chosen := -1
	for i := range out {
		if out[i].IsDefault && chosen < 0 {
			chosen = i
		}
		out[i].IsDefault = false
	}
	if len(out) == 0 {
		return out
	}
	if chosen < 0 {
		chosen = 0
	}
	out[chosen].IsDefault = true
	return out
}

// SetDefault flags variants[index] as default and clears the others.
func SetDefault(variants []Variant, index int) ([]Variant, error) {
	if index < 0 || index >= len(variants) {
		return nil, fmt.Errorf("variant index %d out of range", index)
	}
	out := make([]Variant, len(variants))
	copy(out, variants)
	for i := range out {
		out[i].IsDefault = i == index
	}
	return out, nil
}

type MenuItem struct {
	ID          int
	CategoryID  int
	Name        string
	Description string
	Ingredients string
	Image       string
	IsActive    bool
	Offer       Offer
}

type menuItemJSON struct {
	ID          int             `json:"id"`
	CategoryID  int             `json:"categoryId,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Ingredients string          `json:"ingredients"`
	Image       string          `json:"image,omitempty"`
	IsActive    bool            `json:"isActive"`
	Offer       json.RawMessage `json:"offer"`
}

type offerEnvelope struct {
	Kind     OfferKind `json:"kind"`
	Variants []Variant `json:"variants,omitempty"`
	Price    *float64  `json:"price,omitempty"`
	Volume   string    `json:"volume,omitempty"`
}

// MarshalOffer encodes an offer as {"kind": ..., ...}; a nil offer is null.
func MarshalOffer(o Offer) ([]byte, error) {
	switch v := o.(type) {
	case nil:
		return []byte("null"), nil
	case VariantOffer:
		return json.Marshal(offerEnvelope{Kind: OfferVariants, Variants: v.Variants})
	case FlatOffer:
		price := v.Price
		return json.Marshal(offerEnvelope{Kind: OfferFlat, Price: &price, Volume: v.Volume})
	default:
		return nil, fmt.Errorf("unknown offer type %T", o)
	}
}

// UnmarshalOffer decodes the tagged form produced by MarshalOffer.
func UnmarshalOffer(data []byte) (Offer, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env offerEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case OfferVariants:
		if len(env.Variants) == 0 {
			return nil, errors.New("variants offer needs at least one variant")
		}
		if env.Price != nil {
			return nil, ErrOfferConflict
		}
		return VariantOffer{Variants: NormalizeDefaults(env.Variants)}, nil
	case OfferFlat:
		if env.Price == nil {
			return nil, errors.New("flat offer needs a price")
		}
		if len(env.Variants) > 0 {
			return nil, ErrOfferConflict
		}
		return FlatOffer{Price: *env.Price, Volume: env.Volume}, nil
	default:
		return nil, fmt.Errorf("unknown offer kind %q", env.Kind)
	}
}

func (m MenuItem) MarshalJSON() ([]byte, error) {
	offer, err := MarshalOffer(m.Offer)
	if err != nil {
		return nil, err
	}
	return json.Marshal(menuItemJSON{
		ID:          m.ID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: m.Description,
		Ingredients: m.Ingredients,
		Image:       m.Image,
		IsActive:    m.IsActive,
		Offer:       offer,
	})
}

func (m *MenuItem) UnmarshalJSON(data []byte) error {
	var raw menuItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	offer, err := UnmarshalOffer(raw.Offer)
	if err != nil {
		return err
	}
	*m = MenuItem{
		ID:          raw.ID,
		CategoryID:  raw.CategoryID,
		Name:        raw.Name,
		Description: raw.Description,
		Ingredients: raw.Ingredients,
		Image:       raw.Image,
		IsActive:    raw.IsActive,
		Offer:       offer,
	}
	return nil
}

// Category groups menu items on the dashboard tabs.
type Category struct {
	ID    int        `json:"id"`
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

// CategorySummary is a category without its items.
type CategorySummary struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ItemCount int    `json:"itemCount"`
}
