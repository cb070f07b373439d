package models

import (
	"time"

	"food-ordering/money"
)

type Restaurant struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	City       string   `json:"city"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone"`
	OwnerID    string   `json:"ownerId"`
	ETAMinutes int      `json:"etaMinutes"`
	Rating     float64  `json:"rating"`
	Tags       []string `json:"tags"`
	CoverImage string   `json:"coverImage"`
}

type Product struct {
	ID           string      `json:"id"`
	RestaurantID string      `json:"restaurantId"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        money.Money `json:"price"`
	Image        string      `json:"image"`
	Available    bool        `json:"available"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// RestaurantMenu is a restaurant together with the products a caller may see.
type RestaurantMenu struct {
	Restaurant
	Products []Product `json:"products"`
}
