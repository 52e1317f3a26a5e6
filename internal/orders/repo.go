package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/deanAirre/saisoku-admin/pkg/models"
)

type Repo struct {
	DB *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Status models.OrderStatus
	Search string
	Page   int // zero-based
	Limit  int
}

type OrderPage struct {
	Orders []models.Order `json:"orders"`
	Total  int            `json:"total"`
}

func (r *Repo) List(ctx context.Context, q ListQuery) (OrderPage, error) {
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Page < 0 {
		q.Page = 0
	}

	where := []string{}
	args := []any{}
	if q.Status != "" {
		args = append(args, q.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(order_number ILIKE $%d OR recipient_name ILIKE $%d)", len(args), len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	page := OrderPage{Orders: []models.Order{}}
	if err := r.DB.GetContext(ctx, &page.Total, `SELECT COUNT(*) FROM orders`+cond, args...); err != nil {
		return page, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, q.Limit, q.Page*q.Limit)
	query := fmt.Sprintf(`SELECT * FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		cond, len(args)-1, len(args))
	if err := r.DB.SelectContext(ctx, &page.Orders, query, args...); err != nil {
		return page, fmt.Errorf("list orders: %w", err)
	}
	return page, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.OrderWithItems, error) {
	var order models.OrderWithItems
	err := r.DB.GetContext(ctx, &order.Order, `SELECT * FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	order.Items = []models.OrderItem{}
	err = r.DB.SelectContext(ctx, &order.Items,
		`SELECT * FROM order_items WHERE order_id = $1 ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	return &order, nil
}

// UpdateStatus moves the order to the requested status after validating the
// transition against the current row.
func (r *Repo) UpdateStatus(ctx context.Context, id string, to models.OrderStatus) (*models.Order, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var order models.Order
	err = tx.GetContext(ctx, &order, `SELECT * FROM orders WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := CheckTransition(order.Status, to); err != nil {
		return nil, err
	}

	err = tx.GetContext(ctx, &order,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING *`, to, id)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return &order, tx.Commit()
}

// LatestProof returns the most recently uploaded payment proof for an order,
// nil when the order has none.
func (r *Repo) LatestProof(ctx context.Context, orderID string) (*models.PaymentProof, error) {
	var proof models.PaymentProof
	err := r.DB.GetContext(ctx, &proof,
		`SELECT * FROM payment_proofs WHERE order_id = $1 ORDER BY uploaded_at DESC LIMIT 1`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get payment proof: %w", err)
	}
	return &proof, nil
}

// ReviewProof applies a payment verdict: the proof moves to verified or
// rejected and the order moves with it, both inside one transaction.
func (r *Repo) ReviewProof(ctx context.Context, orderID, adminID string, approve bool, notes *string) (*models.Order, *models.PaymentProof, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var order models.Order
	err = tx.GetContext(ctx, &order, `SELECT * FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status != models.OrderPaymentUploaded {
		return nil, nil, fmt.Errorf("%w: order is %s, expected %s", ErrTransition, order.Status, models.OrderPaymentUploaded)
	}

	var proof models.PaymentProof
	err = tx.GetContext(ctx, &proof,
		`SELECT * FROM payment_proofs WHERE order_id = $1 ORDER BY uploaded_at DESC LIMIT 1 FOR UPDATE`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: order has no payment proof", ErrTransition)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get payment proof: %w", err)
	}

	proofStatus := models.PaymentVerified
	orderStatus := models.OrderProcessing
	if !approve {
		proofStatus = models.PaymentRejected
		orderStatus = models.OrderPendingPayment
	}

	err = tx.GetContext(ctx, &proof, `
		UPDATE payment_proofs
		SET status = $1, admin_notes = $2, verified_at = NOW(), verified_by = $3
		WHERE id = $4
		RETURNING *`, proofStatus, notes, adminID, proof.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("update payment proof: %w", err)
	}

	err = tx.GetContext(ctx, &order,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING *`, orderStatus, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("update order: %w", err)
	}

	return &order, &proof, tx.Commit()
}

func (r *Repo) Stats(ctx context.Context) (models.OrderStats, error) {
	var stats models.OrderStats
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending_payment'),
			COUNT(*) FILTER (WHERE status = 'payment_uploaded'),
			COUNT(*) FILTER (WHERE status = 'processing'),
			COUNT(*) FILTER (WHERE status = 'shipped'),
			COUNT(*) FILTER (WHERE status = 'delivered'),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM orders`).Scan(
		&stats.Total, &stats.PendingPayment, &stats.PaymentUploaded,
		&stats.Processing, &stats.Shipped, &stats.Delivered, &stats.Cancelled)
	if err != nil {
		return stats, fmt.Errorf("order stats: %w", err)
	}
	return stats, nil
}
