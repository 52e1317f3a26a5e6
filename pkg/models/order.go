package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderPendingPayment  OrderStatus = "pending_payment"
	OrderPaymentUploaded OrderStatus = "payment_uploaded"
	OrderProcessing      OrderStatus = "processing"
	OrderShipped         OrderStatus = "shipped"
	OrderDelivered       OrderStatus = "delivered"
	OrderCancelled       OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPendingPayment, OrderPaymentUploaded, OrderProcessing,
		OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              string      `db:"id" json:"id"`
	UserID          string      `db:"user_id" json:"user_id"`
	OrderNumber     string      `db:"order_number" json:"order_number"`
	TotalAmount     float64     `db:"total_amount" json:"total_amount"`
	Status          OrderStatus `db:"status" json:"status"`
	RecipientName   string      `db:"recipient_name" json:"recipient_name"`
	Phone           string      `db:"phone" json:"phone"`
	Country         string      `db:"country" json:"country"`
	Region          string      `db:"region" json:"region"`
	District        string      `db:"district" json:"district"`
	City            string      `db:"city" json:"city"`
	Address         string      `db:"address" json:"address"`
	AddressOptional *string     `db:"address_optional" json:"address_optional,omitempty"`
	Postcode        string      `db:"postcode" json:"postcode"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// VariantSnapshot freezes the purchased variant's display fields at checkout
// time so later catalog edits don't rewrite order history.
type VariantSnapshot struct {
	VariantName string  `json:"variant_name"`
	Size        *string `json:"size,omitempty"`
	Color       *string `json:"color,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

func (s VariantSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *VariantSnapshot) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = VariantSnapshot{}
		return nil
	default:
		return fmt.Errorf("scan variant snapshot: unsupported type %T", src)
	}
}

type OrderItem struct {
	ID              string          `db:"id" json:"id"`
	OrderID         string          `db:"order_id" json:"order_id"`
	VariantID       string          `db:"variant_id" json:"variant_id"`
	Quantity        int             `db:"quantity" json:"quantity"`
	PriceAtPurchase float64         `db:"price_at_purchase" json:"price_at_purchase"`
	VariantSnapshot VariantSnapshot `db:"variant_snapshot" json:"variant_snapshot"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

type OrderWithItems struct {
	Order
	Items []OrderItem `db:"-" json:"order_items"`
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

type PaymentProof struct {
	ID         string        `db:"id" json:"id"`
	OrderID    string        `db:"order_id" json:"order_id"`
	ImageURL   string        `db:"image_url" json:"image_url"`
	Status     PaymentStatus `db:"status" json:"status"`
	AdminNotes *string       `db:"admin_notes" json:"admin_notes,omitempty"`
	UploadedAt time.Time     `db:"uploaded_at" json:"uploaded_at"`
	VerifiedAt *time.Time    `db:"verified_at" json:"verified_at,omitempty"`
	VerifiedBy *string       `db:"verified_by" json:"verified_by,omitempty"`
}

type OrderStats struct {
	Total           int `json:"total"`
	PendingPayment  int `json:"pending_payment"`
	PaymentUploaded int `json:"payment_uploaded"`
	Processing      int `json:"processing"`
	Shipped         int `json:"shipped"`
	Delivered       int `json:"delivered"`
	Cancelled       int `json:"cancelled"`
}
