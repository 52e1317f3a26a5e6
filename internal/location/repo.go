package location

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

func (r *Repo) List(ctx context.Context, activeOnly bool) ([]models.StoreLocation, error) {
	query := `SELECT * FROM store_locations`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY is_default DESC, name ASC`

	locations := []models.StoreLocation{}
	if err := r.DB.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.StoreLocation, error) {
	var loc models.StoreLocation
	err := r.DB.GetContext(ctx, &loc, `SELECT * FROM store_locations WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &loc, nil
}

func (r *Repo) Create(ctx context.Context, loc models.StoreLocation) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if loc.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE store_locations SET is_default = FALSE WHERE is_default = TRUE`); err != nil {
			return fmt.Errorf("unset default: %w", err)
		}
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO store_locations (id, name, address, city, region, district, postcode,
			phone, email, maps_url, is_default, is_active)
		VALUES (:id, :name, :address, :city, :region, :district, :postcode,
			:phone, :email, :maps_url, :is_default, :is_active)`, loc)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}

	return tx.Commit()
}

type Patch struct {
	Name      *string
	Address   *string
	City      *string
	Region    *string
	District  *string
	Postcode  *string
	Phone     *string
	Email     *string
	MapsURL   *string
	IsDefault *bool
	IsActive  *bool
}

// Update applies the patch. Setting is_default on one location clears it on
// every other row inside the same transaction, so at most one default exists.
func (r *Repo) Update(ctx context.Context, id string, patch Patch) (bool, error) {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.City != nil {
		add("city", *patch.City)
	}
	if patch.Region != nil {
		add("region", *patch.Region)
	}
	if patch.District != nil {
		add("district", *patch.District)
	}
	if patch.Postcode != nil {
		add("postcode", *patch.Postcode)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.MapsURL != nil {
		add("maps_url", *patch.MapsURL)
	}
	if patch.IsDefault != nil {
		add("is_default", *patch.IsDefault)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if len(set) == 0 {
		return true, nil
	}
	set = append(set, "updated_at = NOW()")

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if patch.IsDefault != nil && *patch.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE store_locations SET is_default = FALSE WHERE id <> $1 AND is_default = TRUE`, id); err != nil {
			return false, fmt.Errorf("unset default: %w", err)
		}
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE store_locations SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update location: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	return true, tx.Commit()
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM store_locations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete location: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
