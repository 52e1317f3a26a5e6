package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/deanAirre/saisoku-admin/pkg/models"
)

var ErrNameExists = errors.New("category name already exists")

type Repo struct {
	DB *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.DB.SelectContext(ctx, &categories, `
		SELECT * FROM categories ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *Repo) ListWithCount(ctx context.Context) ([]models.CategoryWithCount, error) {
	categories := []models.CategoryWithCount{}
	err := r.DB.SelectContext(ctx, &categories, `
		SELECT c.*, COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories with count: %w", err)
	}
	return categories, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	err := r.DB.GetContext(ctx, &c, `SELECT * FROM categories WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *Repo) nameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var n int
	var err error
	if excludeID != "" {
		err = r.DB.GetContext(ctx, &n, `
			SELECT COUNT(*) FROM categories WHERE LOWER(name) = LOWER($1) AND id <> $2
		`, name, excludeID)
	} else {
		err = r.DB.GetContext(ctx, &n, `
			SELECT COUNT(*) FROM categories WHERE LOWER(name) = LOWER($1)
		`, name)
	}
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) Create(ctx context.Context, c models.Category) error {
	taken, err := r.nameTaken(ctx, c.Name, "")
	if err != nil {
		return err
	}
	if taken {
		return ErrNameExists
	}

	_, err = r.DB.NamedExecContext(ctx, `
		INSERT INTO categories (id, name, default_display_mode, created_at, updated_at)
		VALUES (:id, :name, :default_display_mode, now(), now())
	`, c)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

type Patch struct {
	Name               *string
	DefaultDisplayMode *models.DisplayMode
}

func (r *Repo) Update(ctx context.Context, id string, patch Patch) (bool, error) {
	set := []string{}
	args := []any{}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		taken, err := r.nameTaken(ctx, name, id)
		if err != nil {
			return false, err
		}
		if taken {
			return false, ErrNameExists
		}
		args = append(args, name)
		set = append(set, fmt.Sprintf("name = $%d", len(args)))
	}
	if patch.DefaultDisplayMode != nil {
		args = append(args, *patch.DefaultDisplayMode)
		set = append(set, fmt.Sprintf("default_display_mode = $%d", len(args)))
	}
	if len(set) == 0 {
		return true, nil
	}
	set = append(set, "updated_at = now()")

	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(
		"UPDATE categories SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args),
	), args...)
	if err != nil {
		return false, fmt.Errorf("update category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update category rows: %w", err)
	}
	return affected > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete category rows: %w", err)
	}
	return affected > 0, nil
}

// DisplayModesByName returns each category's default display mode keyed by
// name, for layering over the legacy static rules table.
func (r *Repo) DisplayModesByName(ctx context.Context) (map[string]models.DisplayMode, error) {
	rows := []struct {
		Name string             `db:"name"`
		Mode models.DisplayMode `db:"default_display_mode"`
	}{}
	err := r.DB.SelectContext(ctx, &rows, `
		SELECT name, default_display_mode FROM categories
	`)
	if err != nil {
		return nil, fmt.Errorf("category display modes: %w", err)
	}

	out := make(map[string]models.DisplayMode, len(rows))
	for _, row := range rows {
		out[row.Name] = row.Mode
	}
	return out, nil
}
