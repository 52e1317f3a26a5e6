package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/deanAirre/saisoku-admin/pkg/models"
)

var (
	ErrSKUExists   = errors.New("sku already exists")
	ErrHasVariants = errors.New("product has variants")
)

type Repo struct {
	DB *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{DB: db}
}

// FeedQuery selects the flat variant feed consumed by BuildGroupedPage.
// The feed is fetched unpaginated (bounded by Limit) because grouping and
// the final sort happen in memory.
type FeedQuery struct {
	Category string
	Search   string
	Featured bool
	SortBy   SortKey
	Limit    int
}

const feedColumns = `
	v.id, v.product_id, v.sku, v.slug, v.variant_name, v.size, v.color,
	v.color_hex, v.price, v.stock, v.image_url, v.is_active, v.created_at,
	p.id AS "product.id", p.name AS "product.name",
	p.category_id AS "product.category_id", p.category AS "product.category",
	p.description AS "product.description",
	p.description_english AS "product.description_english",
	p.display_mode AS "product.display_mode",
	p.is_featured AS "product.is_featured", p.is_active AS "product.is_active",
	p.created_at AS "product.created_at"`

func (r *Repo) ListVariantFeed(ctx context.Context, q FeedQuery) ([]VariantWithProduct, error) {
	where := []string{"v.is_active = TRUE", "p.is_active = TRUE"}
	args := []any{}

	if q.Category != "" && q.Category != CategoryAll {
		args = append(args, q.Category)
		where = append(where, fmt.Sprintf("p.category = $%d", len(args)))
	}
	if strings.TrimSpace(q.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(q.Search)+"%")
		where = append(where, fmt.Sprintf("v.variant_name ILIKE $%d", len(args)))
	}
	if q.Featured {
		where = append(where, "p.is_featured = TRUE")
	}

	limit := q.Limit
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d
	`, feedColumns, strings.Join(where, " AND "), feedOrder(q.SortBy), len(args))

	feed := []VariantWithProduct{}
	if err := r.DB.SelectContext(ctx, &feed, query, args...); err != nil {
		return nil, fmt.Errorf("list variant feed: %w", err)
	}

	if err := r.attachImages(ctx, feedVariants(feed)); err != nil {
		return nil, err
	}
	return feed, nil
}

// feedOrder maps the listing sort key onto the feed query. The
// single-category individual page slices the feed as-is, so the requested
// order has to come from the database; group ranking re-sorts in memory on
// top of it.
func feedOrder(key SortKey) string {
	switch key {
	case SortPriceLow:
		return "v.price ASC, v.id ASC"
	case SortPriceHigh:
		return "v.price DESC, v.id ASC"
	case SortNewest:
		return "v.created_at DESC, v.id ASC"
	default:
		return "v.variant_name ASC, v.id ASC"
	}
}

func feedVariants(feed []VariantWithProduct) []*models.Variant {
	out := make([]*models.Variant, len(feed))
	for i := range feed {
		out[i] = &feed[i].Variant
	}
	return out
}

// attachImages loads images for the given variants in display order.
func (r *Repo) attachImages(ctx context.Context, variants []*models.Variant) error {
	if len(variants) == 0 {
		return nil
	}
	ids := make([]string, len(variants))
	byID := make(map[string]*models.Variant, len(variants))
	for i, v := range variants {
		ids[i] = v.ID
		byID[v.ID] = v
	}

	images := []models.VariantImage{}
	err := r.DB.SelectContext(ctx, &images, `
		SELECT * FROM variant_images
		WHERE variant_id = ANY($1)
		ORDER BY display_order ASC, id ASC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("attach images: %w", err)
	}

	for _, img := range images {
		v := byID[img.VariantID]
		v.Images = append(v.Images, img)
	}
	return nil
}

// ---------- products ----------

func (r *Repo) ListProductsAdmin(ctx context.Context) ([]models.ProductWithVariants, error) {
	products := []models.ProductWithVariants{}
	err := r.DB.SelectContext(ctx, &products, `
		SELECT p.*, c.name AS category_name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	for i := range products {
		variants := []models.Variant{}
		err := r.DB.SelectContext(ctx, &variants, `
			SELECT * FROM variants WHERE product_id = $1 ORDER BY created_at ASC
		`, products[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list product variants: %w", err)
		}
		products[i].Variants = variants
	}
	return products, nil
}

func (r *Repo) GetProduct(ctx context.Context, id string) (*models.ProductWithVariants, error) {
	var p models.ProductWithVariants
	err := r.DB.GetContext(ctx, &p, `
		SELECT p.*, c.name AS category_name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	variants := []models.Variant{}
	err = r.DB.SelectContext(ctx, &variants, `
		SELECT * FROM variants WHERE product_id = $1 ORDER BY created_at ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get product variants: %w", err)
	}

	ptrs := make([]*models.Variant, len(variants))
	for i := range variants {
		ptrs[i] = &variants[i]
	}
	if err := r.attachImages(ctx, ptrs); err != nil {
		return nil, err
	}

	p.Variants = variants
	return &p, nil
}

func (r *Repo) CreateProduct(ctx context.Context, p models.Product) error {
	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO products (
			id, name, category_id, category, description, description_english,
			display_mode, is_featured, is_active, created_at
		) VALUES (
			:id, :name, :category_id, :category, :description, :description_english,
			:display_mode, :is_featured, :is_active, now()
		)
	`, p)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// ProductPatch carries sparse product updates; nil fields are untouched.
type ProductPatch struct {
	Name               *string
	CategoryID         *string
	Description        *string
	DescriptionEnglish *string
	DisplayMode        *string
	IsFeatured         *bool
	IsActive           *bool
}

func (r *Repo) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (bool, error) {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.DescriptionEnglish != nil {
		add("description_english", *patch.DescriptionEnglish)
	}
	if patch.DisplayMode != nil {
		add("display_mode", *patch.DisplayMode)
	}
	if patch.IsFeatured != nil {
		add("is_featured", *patch.IsFeatured)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if len(set) == 0 {
		return true, nil
	}

	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(
		"UPDATE products SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args),
	), args...)
	if err != nil {
		return false, fmt.Errorf("update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update product rows: %w", err)
	}
	return affected > 0, nil
}

func (r *Repo) DeleteProduct(ctx context.Context, id string) (bool, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM variants WHERE product_id = $1
	`, id); err != nil {
		return false, fmt.Errorf("count product variants: %w", err)
	}
	if n > 0 {
		return false, fmt.Errorf("%w: %d remaining", ErrHasVariants, n)
	}

	res, err := r.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete product rows: %w", err)
	}
	return affected > 0, nil
}

func (r *Repo) ProductStats(ctx context.Context) (models.ProductStats, error) {
	var stats models.ProductStats
	err := r.DB.QueryRowxContext(ctx, `
		SELECT
			COUNT(DISTINCT product_id),
			COUNT(*),
			COUNT(*) FILTER (WHERE stock > 0 AND stock < 10),
			COUNT(*) FILTER (WHERE stock = 0)
		FROM variants
		WHERE is_active = TRUE
	`).Scan(&stats.TotalProducts, &stats.TotalVariants, &stats.LowStockCount, &stats.OutOfStockCount)
	if err != nil {
		return stats, fmt.Errorf("product stats: %w", err)
	}
	return stats, nil
}

// ---------- variants ----------

func (r *Repo) GetVariant(ctx context.Context, id string) (*models.Variant, error) {
	var v models.Variant
	err := r.DB.GetContext(ctx, &v, `SELECT * FROM variants WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return &v, nil
}

func (r *Repo) CreateVariant(ctx context.Context, v models.Variant) error {
	var n int
	if err := r.DB.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM variants WHERE sku = $1
	`, v.SKU); err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if n > 0 {
		return ErrSKUExists
	}

	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO variants (
			id, product_id, sku, slug, variant_name, size, color, color_hex,
			price, stock, image_url, is_active, created_at
		) VALUES (
			:id, :product_id, :sku, :slug, :variant_name, :size, :color, :color_hex,
			:price, :stock, :image_url, :is_active, now()
		)
	`, v)
	if err != nil {
		return fmt.Errorf("create variant: %w", err)
	}
	return nil
}

type VariantPatch struct {
	SKU         *string
	Slug        *string
	VariantName *string
	Size        *string
	Color       *string
	ColorHex    *string
	Price       *float64
	Stock       *int
	ImageURL    *string
	IsActive    *bool
}

func (r *Repo) UpdateVariant(ctx context.Context, id string, patch VariantPatch) (bool, error) {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.SKU != nil {
		var n int
		if err := r.DB.GetContext(ctx, &n, `
			SELECT COUNT(*) FROM variants WHERE sku = $1 AND id <> $2
		`, *patch.SKU, id); err != nil {
			return false, fmt.Errorf("check sku: %w", err)
		}
		if n > 0 {
			return false, ErrSKUExists
		}
		add("sku", *patch.SKU)
	}
	if patch.Slug != nil {
		add("slug", *patch.Slug)
	}
	if patch.VariantName != nil {
		add("variant_name", *patch.VariantName)
	}
	if patch.Size != nil {
		add("size", *patch.Size)
	}
	if patch.Color != nil {
		add("color", *patch.Color)
	}
	if patch.ColorHex != nil {
		add("color_hex", *patch.ColorHex)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if len(set) == 0 {
		return true, nil
	}

	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(
		"UPDATE variants SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args),
	), args...)
	if err != nil {
		return false, fmt.Errorf("update variant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update variant rows: %w", err)
	}
	return affected > 0, nil
}

func (r *Repo) DeleteVariant(ctx context.Context, id string) (bool, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete variant: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM variant_images WHERE variant_id = $1
	`, id); err != nil {
		return false, fmt.Errorf("delete variant images: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM variants WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete variant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete variant rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete variant: %w", err)
	}
	return affected > 0, nil
}

func (r *Repo) SetStock(ctx context.Context, id string, stock int) (*models.Variant, error) {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE variants SET stock = $1 WHERE id = $2
	`, stock, id)
	if err != nil {
		return nil, fmt.Errorf("set stock: %w", err)
	}
	return r.GetVariant(ctx, id)
}

// DecreaseStock lowers stock by quantity, never below zero.
func (r *Repo) DecreaseStock(ctx context.Context, id string, quantity int) (*models.Variant, error) {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE variants SET stock = GREATEST(stock - $1, 0) WHERE id = $2
	`, quantity, id)
	if err != nil {
		return nil, fmt.Errorf("decrease stock: %w", err)
	}
	return r.GetVariant(ctx, id)
}

// ---------- images ----------

func (r *Repo) ListImages(ctx context.Context, variantID string) ([]models.VariantImage, error) {
	images := []models.VariantImage{}
	err := r.DB.SelectContext(ctx, &images, `
		SELECT * FROM variant_images
		WHERE variant_id = $1
		ORDER BY display_order ASC, id ASC
	`, variantID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

func (r *Repo) GetImage(ctx context.Context, id string) (*models.VariantImage, error) {
	var img models.VariantImage
	err := r.DB.GetContext(ctx, &img, `SELECT * FROM variant_images WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return &img, nil
}

// CreateImage inserts the image row. A primary image unsets its siblings'
// primary flags and becomes the variant's listing thumbnail, all in one
// transaction.
func (r *Repo) CreateImage(ctx context.Context, img models.VariantImage) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create image: %w", err)
	}
	defer tx.Rollback()

	if img.IsPrimary {
		if _, err := tx.ExecContext(ctx, `
			UPDATE variant_images SET is_primary = FALSE WHERE variant_id = $1
		`, img.VariantID); err != nil {
			return fmt.Errorf("unset primary: %w", err)
		}
	}

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO variant_images (id, variant_id, image_url, display_order, is_primary, created_at)
		VALUES (:id, :variant_id, :image_url, :display_order, :is_primary, now())
	`, img); err != nil {
		return fmt.Errorf("create image: %w", err)
	}

	if img.IsPrimary {
		if _, err := tx.ExecContext(ctx, `
			UPDATE variants SET image_url = $1 WHERE id = $2
		`, img.ImageURL, img.VariantID); err != nil {
			return fmt.Errorf("sync variant thumbnail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create image: %w", err)
	}
	return nil
}

type ImagePatch struct {
	DisplayOrder *int
	IsPrimary    *bool
}

func (r *Repo) UpdateImage(ctx context.Context, id string, patch ImagePatch) (bool, error) {
	set := []string{}
	args := []any{}
	if patch.DisplayOrder != nil {
		args = append(args, *patch.DisplayOrder)
		set = append(set, fmt.Sprintf("display_order = $%d", len(args)))
	}
	if patch.IsPrimary != nil {
		args = append(args, *patch.IsPrimary)
		set = append(set, fmt.Sprintf("is_primary = $%d", len(args)))
	}
	if len(set) == 0 {
		return true, nil
	}

	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(
		"UPDATE variant_images SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args),
	), args...)
	if err != nil {
		return false, fmt.Errorf("update image: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update image rows: %w", err)
	}
	return affected > 0, nil
}

// SetPrimaryImage makes one image primary, unsets its siblings and syncs
// the variant thumbnail.
func (r *Repo) SetPrimaryImage(ctx context.Context, imageID, variantID string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set primary: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE variant_images SET is_primary = FALSE WHERE variant_id = $1
	`, variantID); err != nil {
		return fmt.Errorf("unset primary: %w", err)
	}

	var imageURL string
	err = tx.QueryRowxContext(ctx, `
		UPDATE variant_images SET is_primary = TRUE
		WHERE id = $1 AND variant_id = $2
		RETURNING image_url
	`, imageID, variantID).Scan(&imageURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("set primary: image not found")
		}
		return fmt.Errorf("set primary: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE variants SET image_url = $1 WHERE id = $2
	`, imageURL, variantID); err != nil {
		return fmt.Errorf("sync variant thumbnail: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set primary: %w", err)
	}
	return nil
}

// DeleteImage removes the row; when the primary image goes away the next
// image by display order (if any) becomes the variant thumbnail.
func (r *Repo) DeleteImage(ctx context.Context, id string) (*models.VariantImage, error) {
	img, err := r.GetImage(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, nil
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delete image: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM variant_images WHERE id = $1
	`, id); err != nil {
		return nil, fmt.Errorf("delete image: %w", err)
	}

	if img.IsPrimary {
		var nextURL sql.NullString
		err := tx.QueryRowxContext(ctx, `
			SELECT image_url FROM variant_images
			WHERE variant_id = $1
			ORDER BY display_order ASC, id ASC
			LIMIT 1
		`, img.VariantID).Scan(&nextURL)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("next image: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE variants SET image_url = $1 WHERE id = $2
		`, nextURL, img.VariantID); err != nil {
			return nil, fmt.Errorf("sync variant thumbnail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete image: %w", err)
	}
	return img, nil
}
