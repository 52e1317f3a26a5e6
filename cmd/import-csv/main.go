package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/deanAirre/saisoku-admin/pkg/database"
	"github.com/deanAirre/saisoku-admin/pkg/utils"
)

func main() {
	var (
		productsIn = flag.String("products", "data/products.csv", "input CSV path for products")
		variantsIn = flag.String("variants", "data/variants.csv", "input CSV path for variants")
	)
	flag.Parse()

	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(utils.LoadDatabaseConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := importProducts(ctx, db, *productsIn); err != nil {
		log.Fatalf("import products failed: %v", err)
	}
	if err := importVariants(ctx, db, *variantsIn); err != nil {
		log.Fatalf("import variants failed: %v", err)
	}

	log.Printf("imported products from %s and variants from %s", *productsIn, *variantsIn)
}

func importProducts(ctx context.Context, db *sqlx.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PreparexContext(ctx, `
		INSERT INTO products (id, name, category_id, category, description,
			description_english, display_mode, is_featured, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		name := valueAt(header, row, "name")
		if name == "" {
			continue
		}
		id := valueAt(header, row, "id")
		if id == "" {
			id = uuid.NewString()
		}

		displayMode := valueAt(header, row, "display_mode")
		if displayMode != "grouped" && displayMode != "individual" {
			displayMode = "individual"
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			name,
			nullString(valueAt(header, row, "category_id")),
			nullString(valueAt(header, row, "category")),
			nullString(valueAt(header, row, "description")),
			nullString(valueAt(header, row, "description_english")),
			displayMode,
			valueAt(header, row, "is_featured") == "true",
			valueAt(header, row, "is_active") != "false",
		); err != nil {
			return fmt.Errorf("insert product %s: %w", id, err)
		}
	}

	return nil
}

func importVariants(ctx context.Context, db *sqlx.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PreparexContext(ctx, `
		INSERT INTO variants (id, product_id, sku, slug, variant_name, size,
			color, color_hex, price, stock, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (sku) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		productID := valueAt(header, row, "product_id")
		sku := valueAt(header, row, "sku")
		variantName := valueAt(header, row, "variant_name")
		if productID == "" || sku == "" || variantName == "" {
			continue
		}
		id := valueAt(header, row, "id")
		if id == "" {
			id = uuid.NewString()
		}

		price, err := parseFloat(valueAt(header, row, "price"))
		if err != nil {
			return fmt.Errorf("parse price for %s: %w", sku, err)
		}
		stock, err := parseInt(valueAt(header, row, "stock"))
		if err != nil {
			return fmt.Errorf("parse stock for %s: %w", sku, err)
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			productID,
			sku,
			nullString(valueAt(header, row, "slug")),
			variantName,
			nullString(valueAt(header, row, "size")),
			nullString(valueAt(header, row, "color")),
			nullString(valueAt(header, row, "color_hex")),
			price,
			stock,
			nullString(valueAt(header, row, "image_url")),
			valueAt(header, row, "is_active") != "false",
		); err != nil {
			return fmt.Errorf("insert variant %s: %w", sku, err)
		}
	}

	return nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func parseInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
