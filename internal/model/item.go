package model

import "time"

// Item is a physical object listed for hourly rent.
type Item struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	OwnerName    string    `json:"owner_name"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	RentPerHour  float64   `json:"rent_per_hour"`
	LocationName string    `json:"location_name"`
	Phone        string    `json:"phone"`
	Status       string    `json:"status"`
	ImageRef     string    `json:"image_ref"`
	MapsLink     string    `json:"maps_link"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasImage reports whether an uploaded image is attached.
func (i *Item) HasImage() bool {
	return i.ImageRef != ""
}

// ItemStatusAvailable is the status used when a listing does not name one.
// Item status is free text; this is not an exhaustive set.
const ItemStatusAvailable = "available"
