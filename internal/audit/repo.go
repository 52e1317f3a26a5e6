package audit

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type Context map[string]any

func (c Context) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

func (c *Context) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = nil
		return nil
	default:
		return fmt.Errorf("scan log context: unsupported type %T", src)
	}
}

type Entry struct {
	ID         string    `db:"id" json:"id"`
	Level      string    `db:"level" json:"level"`
	Message    string    `db:"message" json:"message"`
	Source     string    `db:"source" json:"source"`
	Context    Context   `db:"context" json:"context,omitempty"`
	ErrorStack *string   `db:"error_stack" json:"error_stack,omitempty"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	OrderID    *string   `db:"order_id" json:"order_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Repo persists application log entries. Write failures degrade to the zap
// logger so an audit outage never surfaces as a request error.
type Repo struct {
	DB  *sqlx.DB
	Log *zap.Logger
}

func NewRepo(db *sqlx.DB, log *zap.Logger) *Repo {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repo{DB: db, Log: log}
}

func (r *Repo) Write(ctx context.Context, e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	switch e.Level {
	case "debug", "info", "warn", "error":
	default:
		e.Level = "info"
	}

	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO logs (id, level, message, source, context, error_stack, user_id, order_id)
		VALUES (:id, :level, :message, :source, :context, :error_stack, :user_id, :order_id)`, e)
	if err != nil {
		r.Log.Warn("audit write failed",
			zap.String("source", e.Source),
			zap.String("message", e.Message),
			zap.Error(err))
	}
}

type ListQuery struct {
	Level string
	Page  int
	Limit int
}

type Page struct {
	Entries []Entry `json:"logs"`
	Total   int     `json:"total"`
}

func (r *Repo) List(ctx context.Context, q ListQuery) (Page, error) {
	if q.Limit < 1 || q.Limit > 200 {
		q.Limit = 50
	}
	if q.Page < 0 {
		q.Page = 0
	}

	cond := ""
	args := []any{}
	if l := strings.TrimSpace(q.Level); l != "" {
		args = append(args, l)
		cond = fmt.Sprintf(" WHERE level = $%d", len(args))
	}

	page := Page{Entries: []Entry{}}
	if err := r.DB.GetContext(ctx, &page.Total, `SELECT COUNT(*) FROM logs`+cond, args...); err != nil {
		return page, fmt.Errorf("count logs: %w", err)
	}

	args = append(args, q.Limit, q.Page*q.Limit)
	query := fmt.Sprintf(`SELECT * FROM logs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		cond, len(args)-1, len(args))
	if err := r.DB.SelectContext(ctx, &page.Entries, query, args...); err != nil {
		return page, fmt.Errorf("list logs: %w", err)
	}
	return page, nil
}
