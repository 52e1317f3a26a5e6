package models

import "time"

type StoreLocation struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	City      string    `db:"city" json:"city"`
	Region    *string   `db:"region" json:"region,omitempty"`
	District  *string   `db:"district" json:"district,omitempty"`
	Postcode  *string   `db:"postcode" json:"postcode,omitempty"`
	Phone     string    `db:"phone" json:"phone"`
	Email     *string   `db:"email" json:"email,omitempty"`
	MapsURL   *string   `db:"maps_url" json:"maps_url,omitempty"`
	IsDefault bool      `db:"is_default" json:"is_default"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
