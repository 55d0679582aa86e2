package repository

import (
	"database/sql"
	"fmt"
	"time"

	"dropwatch/database"
	"dropwatch/models"
)

type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

const productColumns = `id, url, flipkart_pid, name, site, current_price, last_checked, last_failed_at, retry_count, next_retry_at, created_at, updated_at, is_active`

func scanProduct(row interface {
	Scan(dest ...interface{}) error
}, p *models.TrackedProduct) error {
	return row.Scan(
		&p.ID, &p.URL, &p.FlipkartPID, &p.Name, &p.Site,
		&p.CurrentPrice, &p.LastChecked, &p.LastFailedAt, &p.RetryCount,
		&p.NextRetryAt, &p.CreatedAt, &p.UpdatedAt, &p.IsActive,
	)
}

// AddProduct adds a new product to track
func (r *ProductRepository) AddProduct(spec models.ProductSpec, site models.Site) (*models.TrackedProduct, error) {
	query := `
		INSERT INTO tracked_products (url, flipkart_pid, name, site, created_at, updated_at, retry_count)
		VALUES ($1, $2, $3, $4, $5, $5, 0)
		RETURNING ` + productColumns

	var product models.TrackedProduct
	now := time.Now()
	err := scanProduct(database.DB.QueryRow(query, spec.URL, spec.FlipkartPID, spec.DisplayName(), site, now), &product)
	if err != nil {
		return nil, fmt.Errorf("failed to add product: %v", err)
	}

	return &product, nil
}

// GetProducts returns all active tracked products in insertion order
func (r *ProductRepository) GetProducts() ([]models.TrackedProduct, error) {
	query := `
		SELECT ` + productColumns + `
		FROM tracked_products
		WHERE is_active = true
		ORDER BY id ASC
	`

	rows, err := database.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracked products: %v", err)
	}
	defer rows.Close()

	var products []models.TrackedProduct
	for rows.Next() {
		var p models.TrackedProduct
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %v", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// GetProductByID returns a tracked product by ID
func (r *ProductRepository) GetProductByID(id int) (*models.TrackedProduct, error) {
	query := `
		SELECT ` + productColumns + `
		FROM tracked_products
		WHERE id = $1 AND is_active = true
	`

	var p models.TrackedProduct
	err := scanProduct(database.DB.QueryRow(query, id), &p)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %v", err)
	}

	return &p, nil
}

// FindByKey returns the active product whose url or pid matches the key
func (r *ProductRepository) FindByKey(key string) (*models.TrackedProduct, error) {
	query := `
		SELECT ` + productColumns + `
		FROM tracked_products
		WHERE is_active = true AND (url = $1 OR (url = '' AND flipkart_pid = $1))
		LIMIT 1
	`

	var p models.TrackedProduct
	err := scanProduct(database.DB.QueryRow(query, key), &p)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product: %v", err)
	}

	return &p, nil
}

// UpdatePrice records the latest selected price on the product row
func (r *ProductRepository) UpdatePrice(id int, price int) error {
	query := `
		UPDATE tracked_products
		SET current_price = $2, last_checked = $3, updated_at = $3
		WHERE id = $1
	`

	_, err := database.DB.Exec(query, id, price, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update product price: %v", err)
	}

	return nil
}

// DeleteProduct soft-deletes a tracked product
func (r *ProductRepository) DeleteProduct(id int) error {
	query := `UPDATE tracked_products SET is_active = false, updated_at = $2 WHERE id = $1`
	_, err := database.DB.Exec(query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete product: %v", err)
	}
	return nil
}

// MarkCheckFailed marks a price check as failed and schedules a retry
func (r *ProductRepository) MarkCheckFailed(p *models.TrackedProduct) error {
	query := `
		UPDATE tracked_products
		SET last_failed_at = $1, retry_count = retry_count + 1, next_retry_at = $2, updated_at = $1
		WHERE id = $3
	`

	now := time.Now()
	_, err := database.DB.Exec(query, now, now.Add(p.RetryDelay()), p.ID)
	if err != nil {
		return fmt.Errorf("failed to mark check as failed: %v", err)
	}

	return nil
}

// MarkCheckSuccess resets retry bookkeeping after a successful check
func (r *ProductRepository) MarkCheckSuccess(id int) error {
	query := `
		UPDATE tracked_products
		SET last_failed_at = NULL, retry_count = 0, next_retry_at = NULL, updated_at = $1
		WHERE id = $2
	`

	_, err := database.DB.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark check as successful: %v", err)
	}

	return nil
}

// GetProductsForRetry returns failed products that are due for another attempt
func (r *ProductRepository) GetProductsForRetry() ([]models.TrackedProduct, error) {
	query := `
		SELECT ` + productColumns + `
		FROM tracked_products
		WHERE is_active = true
		AND last_failed_at IS NOT NULL
		AND (next_retry_at IS NULL OR next_retry_at <= $1)
		AND retry_count < 5
		ORDER BY next_retry_at ASC
	`

	rows, err := database.DB.Query(query, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get products for retry: %v", err)
	}
	defer rows.Close()

	var products []models.TrackedProduct
	for rows.Next() {
		var p models.TrackedProduct
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %v", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}
