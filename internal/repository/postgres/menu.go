package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const menuColumns = `id, name, category, price_cents, image, available, description`

// MenuRepository implements repository.MenuRepository on PostgreSQL
type MenuRepository struct {
	db *DB
}

func NewMenuRepository(db *DB) *MenuRepository {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) GetAll(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+menuColumns+` FROM menu_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *MenuRepository) GetByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	return getMenuItem(ctx, r.db, id, false)
}

func (r *MenuRepository) Create(ctx context.Context, item models.MenuItem) (*models.MenuItem, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO menu_items (name, category, price_cents, image, available, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		item.Name, item.Category, models.Cents(item.Price), item.Image, item.Available, item.Description,
	).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("insert menu item: %w", err)
	}
	return &item, nil
}

func (r *MenuRepository) Update(ctx context.Context, id int64, fn func(item *models.MenuItem) error) (*models.MenuItem, error) {
	var updated *models.MenuItem
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		item, err := getMenuItem(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
		item.ID = id
		if _, err := tx.Exec(ctx, `
			UPDATE menu_items
			SET name = $2, category = $3, price_cents = $4, image = $5, available = $6, description = $7
			WHERE id = $1`,
			id, item.Name, item.Category, models.Cents(item.Price), item.Image, item.Available, item.Description,
		); err != nil {
			return fmt.Errorf("update menu item %d: %w", id, err)
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *MenuRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete menu item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrMenuItemNotFound
	}
	return nil
}

func (r *MenuRepository) CountByCategory(ctx context.Context, category string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM menu_items WHERE category = $1`, category).Scan(&count); err != nil {
		return 0, fmt.Errorf("count menu items: %w", err)
	}
	return count, nil
}

func getMenuItem(ctx context.Context, q querier, id int64, forUpdate bool) (*models.MenuItem, error) {
	sql := `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	item, err := scanMenuItem(q.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrMenuItemNotFound
	}
	return item, err
}

func scanMenuItem(row pgx.Row) (*models.MenuItem, error) {
	var (
		item  models.MenuItem
		cents int64
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Category, &cents, &item.Image, &item.Available, &item.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan menu item: %w", err)
	}
	item.Price = models.FromCents(cents)
	return &item, nil
}

// insertMenuItem writes item keeping its id, used for seeding
func insertMenuItem(ctx context.Context, q querier, item models.MenuItem) error {
	_, err := q.Exec(ctx, `
		INSERT INTO menu_items (id, name, category, price_cents, image, available, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.Name, item.Category, models.Cents(item.Price), item.Image, item.Available, item.Description)
	return err
}
