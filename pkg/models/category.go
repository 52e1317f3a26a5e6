package models

import "time"

type Category struct {
	ID                 string      `db:"id" json:"id"`
	Name               string      `db:"name" json:"name"`
	DefaultDisplayMode DisplayMode `db:"default_display_mode" json:"default_display_mode"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at" json:"updated_at"`
}

type CategoryWithCount struct {
	Category
	ProductCount int `db:"product_count" json:"product_count"`
}
