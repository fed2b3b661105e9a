// Package postgres holds the PostgreSQL adapters of the repository interfaces.
// Money is stored as integer cents.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// DB wraps the connection pool shared by all adapters
type DB struct{ *pgxpool.Pool }

// Connect opens a pool and verifies it with a ping
func Connect(ctx context.Context, url string) (*DB, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
	}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Seed fills empty tables with the default console data
func (db *DB) Seed(ctx context.Context) error {
	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if empty, err := isEmpty(ctx, tx, "categories"); err != nil {
			return err
		} else if empty {
			for _, c := range repository.SeedCategories() {
				if _, err := tx.Exec(ctx, `INSERT INTO categories (id, name, description) VALUES ($1, $2, $3)`,
					c.ID, c.Name, c.Description); err != nil {
					return fmt.Errorf("seed category %s: %w", c.Name, err)
				}
			}
			if err := resetSequence(ctx, tx, "categories"); err != nil {
				return err
			}
		}

		if empty, err := isEmpty(ctx, tx, "menu_items"); err != nil {
			return err
		} else if empty {
			for _, m := range repository.SeedMenuItems() {
				if err := insertMenuItem(ctx, tx, m); err != nil {
					return fmt.Errorf("seed menu item %s: %w", m.Name, err)
				}
			}
			if err := resetSequence(ctx, tx, "menu_items"); err != nil {
				return err
			}
		}

		if empty, err := isEmpty(ctx, tx, "floors"); err != nil {
			return err
		} else if empty {
			for _, f := range repository.SeedFloors() {
				if _, err := tx.Exec(ctx, `INSERT INTO floors (id, name) VALUES ($1, $2)`, f.ID, f.Name); err != nil {
					return fmt.Errorf("seed floor %s: %w", f.ID, err)
				}
				for i, t := range f.Tables {
					if err := insertTable(ctx, tx, f.ID, i, t); err != nil {
						return fmt.Errorf("seed table %s: %w", t.ID, err)
					}
				}
			}
		}

		if empty, err := isEmpty(ctx, tx, "orders"); err != nil {
			return err
		} else if empty {
			for _, o := range repository.SeedOrders() {
				if _, err := insertOrder(ctx, tx, o, true); err != nil {
					return fmt.Errorf("seed order %d: %w", o.ID, err)
				}
			}
			if err := resetSequence(ctx, tx, "orders"); err != nil {
				return err
			}
		}

		if empty, err := isEmpty(ctx, tx, "staff"); err != nil {
			return err
		} else if empty {
			for _, s := range repository.SeedStaff() {
				if _, err := tx.Exec(ctx, `
					INSERT INTO staff (id, name, role, email, phone, status, avatar)
					VALUES ($1, $2, $3, $4, $5, $6, $7)`,
					s.ID, s.Name, string(s.Role), s.Email, s.Phone, string(s.Status), s.Avatar); err != nil {
					return fmt.Errorf("seed staff %s: %w", s.Name, err)
				}
			}
			if err := resetSequence(ctx, tx, "staff"); err != nil {
				return err
			}
		}

		return nil
	})
}

func isEmpty(ctx context.Context, tx pgx.Tx, table string) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+")").Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s: %w", table, err)
	}
	return !exists, nil
}

func resetSequence(ctx context.Context, tx pgx.Tx, table string) error {
	_, err := tx.Exec(ctx, fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))", table, table))
	if err != nil {
		return fmt.Errorf("reset %s sequence: %w", table, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
