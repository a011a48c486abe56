// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"tillage/internal/core/id"
	"tillage/internal/core/types"
	"tillage/internal/infrastructure/storage/postgres"
	"tillage/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedManager(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed manager account", "error", err)
	}

	if err := seedLoyaltySettings(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed loyalty settings", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedManager creates the initial manager account so someone can log in
// and register the rest of the staff through the API.
func seedManager(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	loginCode := os.Getenv("MANAGER_LOGIN_CODE")
	if loginCode == "" {
		loginCode = "1000"
	}

	password := os.Getenv("MANAGER_PASSWORD")
	if password == "" {
		password = "ChangeMe123"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE login_code = $1`,
		loginCode,
	).Scan(&existingID)
	if err == nil {
		log.Infow("manager account already exists", "login_code", loginCode, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check manager exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, login_code, name, password_hash, position,
			is_active, created_at, updated_at, version
		) VALUES ($1, $2, 'Store Manager', $3, 'manager', true, $4, $4, 1)
	`, userID, loginCode, string(passwordHash), now)
	if err != nil {
		return fmt.Errorf("insert manager user: %w", err)
	}

	log.Infow("manager account created",
		"login_code", loginCode,
		"user_id", userID,
	)
	return nil
}

// seedLoyaltySettings inserts the singleton loyalty program row. The
// service falls back to defaults when the row is missing, but seeding
// it makes the parameters visible and editable in the database.
func seedLoyaltySettings(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	tag, err := pool.Pool.Exec(ctx, `
		INSERT INTO loy_settings (spending_target, discount_percent)
		SELECT $1, $2
		WHERE NOT EXISTS (SELECT 1 FROM loy_settings)
	`, types.MustMoney("1000.00"), int64(10))
	if err != nil {
		return fmt.Errorf("insert loyalty settings: %w", err)
	}
	if tag.RowsAffected() > 0 {
		log.Info("loyalty settings seeded")
	}
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Demo cashier
	cashierHash, err := bcrypt.GenerateFromPassword([]byte("Cashier123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash cashier password: %w", err)
	}
	now := time.Now().UTC()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, login_code, name, password_hash, position,
			is_active, created_at, updated_at, version
		) VALUES ($1, '1001', 'Demo Cashier', $2, 'employee', true, $3, $3, 1)
		ON CONFLICT (login_code) DO NOTHING
	`, id.New(), string(cashierHash), now)
	if err != nil {
		return fmt.Errorf("insert demo cashier: %w", err)
	}

	// 2. Categories
	categories := []struct {
		code string
		name string
	}{
		{"CAT-DAIRY", "Dairy"},
		{"CAT-BAKERY", "Bakery"},
		{"CAT-DRINKS", "Beverages"},
		{"CAT-SNACKS", "Snacks"},
	}

	categoryIDs := make(map[string]id.ID)
	for _, cat := range categories {
		cid := id.New()
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_categories (id, code, name, parent_id, is_folder, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, NULL, false, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, cid, cat.code, cat.name)
		if err != nil {
			return fmt.Errorf("insert category %s: %w", cat.code, err)
		}
		if tag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx,
				`SELECT id FROM cat_categories WHERE code = $1 AND deletion_mark = FALSE`,
				cat.code,
			).Scan(&cid)
			if err != nil {
				return fmt.Errorf("fetch category %s: %w", cat.code, err)
			}
		}
		categoryIDs[cat.code] = cid
	}
	log.Infow("categories seeded", "count", len(categories))

	// 3. Products
	type productSeed struct {
		code          string
		name          string
		category      string
		barcode       string // empty means no barcode
		priceByWeight bool
		costPrice     string
		sellingPrice  string
		lowStock      int64 // whole units
	}

	products := []productSeed{
		{"PRD-MILK-1L", "Whole Milk 1L", "CAT-DAIRY", "4800024661234", false, "0.80", "1.20", 10},
		{"PRD-YOGURT", "Plain Yogurt 500g", "CAT-DAIRY", "4800024665678", false, "0.95", "1.60", 8},
		{"PRD-BREAD", "White Bread Loaf", "CAT-BAKERY", "4800024669012", false, "0.50", "1.00", 15},
		{"PRD-CROISSANT", "Butter Croissant", "CAT-BAKERY", "", false, "0.40", "0.90", 20},
		{"PRD-COLA-330", "Cola Can 330ml", "CAT-DRINKS", "4800024663456", false, "0.35", "0.75", 24},
		{"PRD-WATER-1L", "Still Water 1L", "CAT-DRINKS", "4800024667890", false, "0.20", "0.50", 30},
		{"PRD-CHIPS", "Potato Chips 150g", "CAT-SNACKS", "4800024662345", false, "0.70", "1.40", 12},
		{"PRD-PEANUTS", "Roasted Peanuts", "CAT-SNACKS", "", true, "3.50", "5.80", 2},
	}

	productIDs := make(map[string]id.ID)
	for _, p := range products {
		pid := id.New()
		categoryID := categoryIDs[p.category]

		var barcode *string
		hasBarcode := p.barcode != ""
		if hasBarcode {
			barcode = &p.barcode
		}

		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_products (
				id, code, name, parent_id, is_folder, category_id,
				has_barcode, barcode, price_by_weight,
				cost_price, selling_price, low_stock_level,
				is_active, version, deletion_mark, attributes
			) VALUES ($1, $2, $3, NULL, false, $4, $5, $6, $7, $8, $9, $10, true, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, pid, p.code, p.name, categoryID, hasBarcode, barcode, p.priceByWeight,
			types.MustMoney(p.costPrice), types.MustMoney(p.sellingPrice),
			types.NewQuantityFromInt(p.lowStock))
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.code, err)
		}
		if tag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx,
				`SELECT id FROM cat_products WHERE code = $1 AND deletion_mark = FALSE`,
				p.code,
			).Scan(&pid)
			if err != nil {
				return fmt.Errorf("fetch product %s: %w", p.code, err)
			}
		}
		productIDs[p.code] = pid
	}
	log.Infow("products seeded", "count", len(products))

	// 4. Batches. Skip entirely when stock already exists, so repeated
	// runs do not inflate inventory.
	var batchCount int
	if err := pool.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM inv_batches`).Scan(&batchCount); err != nil {
		return fmt.Errorf("count batches: %w", err)
	}
	if batchCount > 0 {
		log.Infow("batches already present, skipping stock seed", "count", batchCount)
		return nil
	}

	type batchSeed struct {
		product         string
		quantity        int64
		expiryDays      int // 0 means no expiry
		discountPercent int64
	}

	batches := []batchSeed{
		{"PRD-MILK-1L", 40, 7, 0},
		{"PRD-MILK-1L", 20, 2, 30}, // short-dated lot on promotion
		{"PRD-YOGURT", 25, 10, 0},
		{"PRD-BREAD", 30, 3, 0},
		{"PRD-CROISSANT", 50, 2, 0},
		{"PRD-COLA-330", 120, 180, 0},
		{"PRD-WATER-1L", 90, 365, 0},
		{"PRD-CHIPS", 60, 90, 0},
		{"PRD-PEANUTS", 12, 60, 0},
	}

	for _, b := range batches {
		productID, ok := productIDs[b.product]
		if !ok {
			continue
		}

		batchID := id.New()
		var expiry *time.Time
		if b.expiryDays > 0 {
			d := now.AddDate(0, 0, b.expiryDays)
			expiry = &d
		}
		var discountStart, discountEnd *time.Time
		if b.discountPercent > 0 {
			discountStart = &now
			discountEnd = expiry
		}

		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO inv_batches (
				id, product_id, quantity, expiry_date, expired_handled,
				discount_percent, discount_start, discount_end,
				created_at, updated_at, created_by, updated_by,
				version, deletion_mark, attributes
			) VALUES ($1, $2, $3, $4, false, $5, $6, $7, $8, $8, '', '', 1, false, '{}')
		`, batchID, productID, types.NewQuantityFromInt(b.quantity), expiry,
			b.discountPercent, discountStart, discountEnd, now)
		if err != nil {
			return fmt.Errorf("insert batch for %s: %w", b.product, err)
		}

		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO inv_restock_logs (
				id, product_id, batch_id, quantity, supplier, note,
				created_at, updated_at, created_by, updated_by,
				version, deletion_mark, attributes
			) VALUES ($1, $2, $3, $4, 'Initial stock', 'seed', $5, $5, '', '', 1, false, '{}')
		`, id.New(), productID, batchID, types.NewQuantityFromInt(b.quantity), now)
		if err != nil {
			return fmt.Errorf("insert restock log for %s: %w", b.product, err)
		}
	}
	log.Infow("batches seeded", "count", len(batches))

	return nil
}
