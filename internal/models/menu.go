package models

import "github.com/shopspring/decimal"

// PlaceholderImage is shown for items without a picture
const PlaceholderImage = "🍽️"

// MenuItem represents a dish or drink on the menu
type MenuItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Available   bool            `json:"available"`
	Description string          `json:"description"`
}

// Category groups menu items. Name is the normalized slug items refer to.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
