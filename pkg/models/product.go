package models

import "time"

// DisplayMode controls whether a product's variants render as one combined
// card ("grouped") or as separate cards ("individual").
type DisplayMode string

const (
	DisplayGrouped    DisplayMode = "grouped"
	DisplayIndividual DisplayMode = "individual"
)

func (m DisplayMode) Valid() bool {
	return m == DisplayGrouped || m == DisplayIndividual
}

type Product struct {
	ID                 string    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	CategoryID         *string   `db:"category_id" json:"category_id,omitempty"`
	Category           *string   `db:"category" json:"category,omitempty"`
	Description        *string   `db:"description" json:"description,omitempty"`
	DescriptionEnglish *string   `db:"description_english" json:"description_english,omitempty"`
	DisplayMode        *string   `db:"display_mode" json:"display_mode,omitempty"`
	IsFeatured         bool      `db:"is_featured" json:"is_featured"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// ExplicitDisplayMode returns the product's display_mode when it holds a
// recognized value, nil otherwise.
func (p *Product) ExplicitDisplayMode() *DisplayMode {
	if p.DisplayMode == nil {
		return nil
	}
	m := DisplayMode(*p.DisplayMode)
	if !m.Valid() {
		return nil
	}
	return &m
}

// CategoryLabel returns the product's category label or "" when unset.
func (p *Product) CategoryLabel() string {
	if p.Category == nil {
		return ""
	}
	return *p.Category
}

type Variant struct {
	ID          string         `db:"id" json:"id"`
	ProductID   string         `db:"product_id" json:"product_id"`
	SKU         string         `db:"sku" json:"sku"`
	Slug        *string        `db:"slug" json:"slug,omitempty"`
	VariantName string         `db:"variant_name" json:"variant_name"`
	Size        *string        `db:"size" json:"size,omitempty"`
	Color       *string        `db:"color" json:"color,omitempty"`
	ColorHex    *string        `db:"color_hex" json:"color_hex,omitempty"`
	Price       float64        `db:"price" json:"price"`
	Stock       int            `db:"stock" json:"stock"`
	ImageURL    *string        `db:"image_url" json:"image_url,omitempty"`
	IsActive    bool           `db:"is_active" json:"is_active"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	Images      []VariantImage `db:"-" json:"images,omitempty"`
}

type VariantImage struct {
	ID           string    `db:"id" json:"id"`
	VariantID    string    `db:"variant_id" json:"variant_id"`
	ImageURL     string    `db:"image_url" json:"image_url"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	IsPrimary    bool      `db:"is_primary" json:"is_primary"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type ProductWithVariants struct {
	Product
	CategoryName *string   `db:"category_name" json:"category_name,omitempty"`
	Variants     []Variant `db:"-" json:"variants"`
}

type ProductStats struct {
	TotalProducts   int `json:"total_products"`
	TotalVariants   int `json:"total_variants"`
	LowStockCount   int `json:"low_stock_count"`
	OutOfStockCount int `json:"out_of_stock_count"`
}
