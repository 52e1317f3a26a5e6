package events

import (
	"time"

	"github.com/deanAirre/saisoku-admin/pkg/models"
)

const (
	TypeOrderStatus     = "order.status"
	TypePaymentUploaded = "payment.uploaded"
	TypePaymentVerified = "payment.verified"
	TypePaymentRejected = "payment.rejected"
)

type OrderEvent struct {
	Type        string             `json:"type"`
	OrderID     string             `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Status      models.OrderStatus `json:"status,omitempty"`
	AdminID     string             `json:"admin_id,omitempty"`
	At          time.Time          `json:"at"`
}

func NewOrderStatus(order *models.Order, adminID string) OrderEvent {
	return OrderEvent{
		Type:        TypeOrderStatus,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		AdminID:     adminID,
		At:          time.Now().UTC(),
	}
}

func NewPaymentReviewed(order *models.Order, adminID string, approved bool) OrderEvent {
	typ := TypePaymentVerified
	if !approved {
		typ = TypePaymentRejected
	}
	return OrderEvent{
		Type:        typ,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		AdminID:     adminID,
		At:          time.Now().UTC(),
	}
}
