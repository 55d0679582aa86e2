package repository

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"dropwatch/database"
	"dropwatch/models"
)

// HistoryRepository is the append-only price history store. The engine only
// ever appends rows and queries by product key; rows are never updated.
type HistoryRepository struct {
	builder sq.StatementBuilderType
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Append stores one observation. Only prices that passed the candidate
// filter and the price selector reach this point.
func (r *HistoryRepository) Append(obs models.PriceObservation) error {
	query := r.builder.
		Insert("price_history").
		Columns("product_key", "site", "name", "price", "checked_at").
		Values(obs.ProductKey, obs.Site, obs.Name, obs.Price, obs.CheckedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build append query: %w", err)
	}

	if _, err := database.DB.Exec(sqlStr, args...); err != nil {
		return fmt.Errorf("failed to append observation: %v", err)
	}

	return nil
}

// LastPrice returns the most recent stored price for the key. The boolean is
// false when the product has no history yet; that is not an error.
func (r *HistoryRepository) LastPrice(productKey string) (int, bool, error) {
	query := r.builder.
		Select("price").
		From("price_history").
		Where(sq.Eq{"product_key": productKey}).
		OrderBy("id DESC").
		Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("build last-price query: %w", err)
	}

	var price int
	err = database.DB.QueryRow(sqlStr, args...).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get last price: %v", err)
	}

	return price, true, nil
}

// RollingMin returns the minimum stored price for the key since the cutoff.
// The boolean is false when no observation falls inside the window.
func (r *HistoryRepository) RollingMin(productKey string, since time.Time) (int, bool, error) {
	query := r.builder.
		Select("MIN(price)").
		From("price_history").
		Where(sq.Eq{"product_key": productKey}).
		Where(sq.GtOrEq{"checked_at": since})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("build rolling-min query: %w", err)
	}

	var min sql.NullInt64
	if err := database.DB.QueryRow(sqlStr, args...).Scan(&min); err != nil {
		return 0, false, fmt.Errorf("failed to get rolling min: %v", err)
	}
	if !min.Valid {
		return 0, false, nil
	}

	return int(min.Int64), true, nil
}

// GetHistory returns observations for one product, oldest first. A limit of
// zero returns everything.
func (r *HistoryRepository) GetHistory(productKey string, limit int) ([]models.PriceObservation, error) {
	query := r.builder.
		Select("id", "product_key", "site", "name", "price", "checked_at").
		From("price_history").
		Where(sq.Eq{"product_key": productKey}).
		OrderBy("checked_at ASC", "id ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	return r.queryObservations(query)
}

// AllObservations returns the full history, oldest first, for CSV export.
func (r *HistoryRepository) AllObservations() ([]models.PriceObservation, error) {
	query := r.builder.
		Select("id", "product_key", "site", "name", "price", "checked_at").
		From("price_history").
		OrderBy("checked_at ASC", "id ASC")

	return r.queryObservations(query)
}

// Prune deletes observations older than the cutoff and reports the count.
func (r *HistoryRepository) Prune(before time.Time) (int64, error) {
	query := r.builder.
		Delete("price_history").
		Where(sq.Lt{"checked_at": before})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build prune query: %w", err)
	}

	res, err := database.DB.Exec(sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %v", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

func (r *HistoryRepository) queryObservations(query sq.SelectBuilder) ([]models.PriceObservation, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	rows, err := database.DB.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %v", err)
	}
	defer rows.Close()

	var observations []models.PriceObservation
	for rows.Next() {
		var obs models.PriceObservation
		err := rows.Scan(&obs.ID, &obs.ProductKey, &obs.Site, &obs.Name, &obs.Price, &obs.CheckedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %v", err)
		}
		observations = append(observations, obs)
	}

	return observations, rows.Err()
}
