package model

import "time"

// Product is a catalog entry. Price is stored as a float to match the
// wire format the frontend already consumes; arithmetic on it stays in
// the client.
type Product struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price"       db:"price"`
	ImageURL    string    `json:"imageUrl"    db:"image_url"`
	Category    string    `json:"category"    db:"category"`
	Stock       int       `json:"stock"       db:"stock"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
