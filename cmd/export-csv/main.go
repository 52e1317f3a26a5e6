package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/deanAirre/saisoku-admin/pkg/database"
	"github.com/deanAirre/saisoku-admin/pkg/models"
	"github.com/deanAirre/saisoku-admin/pkg/utils"
)

func main() {
	var (
		ordersOut = flag.String("orders", "data/orders.csv", "output CSV path for orders")
		itemsOut  = flag.String("items", "data/order_items.csv", "output CSV path for order items")
	)
	flag.Parse()

	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(utils.LoadDatabaseConfig())
	defer db.Close()

	if err := exportOrders(ctx, db, *ordersOut); err != nil {
		log.Fatalf("export orders failed: %v", err)
	}
	if err := exportOrderItems(ctx, db, *itemsOut); err != nil {
		log.Fatalf("export order items failed: %v", err)
	}

	log.Printf("exported orders to %s and items to %s", *ordersOut, *itemsOut)
}

func exportOrders(ctx context.Context, db *sqlx.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "order_number", "status", "total_amount", "recipient_name",
		"phone", "city", "created_at",
	}); err != nil {
		return err
	}

	orders := []models.Order{}
	err = db.SelectContext(ctx, &orders, `SELECT * FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return err
	}

	for _, o := range orders {
		if err := w.Write([]string{
			o.ID,
			o.OrderNumber,
			string(o.Status),
			strconv.FormatFloat(o.TotalAmount, 'f', 2, 64),
			o.RecipientName,
			o.Phone,
			o.City,
			o.CreatedAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func exportOrderItems(ctx context.Context, db *sqlx.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "order_id", "variant_id", "quantity", "price_at_purchase", "variant_snapshot",
	}); err != nil {
		return err
	}

	items := []models.OrderItem{}
	err = db.SelectContext(ctx, &items, `SELECT * FROM order_items ORDER BY created_at DESC`)
	if err != nil {
		return err
	}

	for _, it := range items {
		snapshot := ""
		if b, err := json.Marshal(it.VariantSnapshot); err == nil {
			snapshot = string(b)
		}

		if err := w.Write([]string{
			it.ID,
			it.OrderID,
			it.VariantID,
			strconv.Itoa(it.Quantity),
			strconv.FormatFloat(it.PriceAtPurchase, 'f', 2, 64),
			snapshot,
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
