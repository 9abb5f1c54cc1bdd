package models

import "time"

// Category is a persisted taxonomy category
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// Subcategory is a persisted taxonomy leaf. OwnerID is empty for
// catalog-backed rows and set for custom interests.
type Subcategory struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	Name       string    `json:"name"`
	Icon       string    `json:"icon"`
	OwnerID    string    `json:"owner_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsCustom reports whether the subcategory was authored by a user
func (s Subcategory) IsCustom() bool {
	return s.OwnerID != ""
}

// UserInterest records that an owner selected a subcategory
type UserInterest struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	SubcategoryID string    `json:"subcategory_id"`
	SelectedAt    time.Time `json:"selected_at"`
}

// Interest is a user interest joined with its taxonomy names
type Interest struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	SubcategoryID   string    `json:"subcategory_id"`
	SubcategoryName string    `json:"subcategory"`
	SubcategoryIcon string    `json:"subcategory_icon"`
	CategoryName    string    `json:"category"`
	CategoryIcon    string    `json:"category_icon"`
	Custom          bool      `json:"custom"`
	SelectedAt      time.Time `json:"selected_at"`
}
