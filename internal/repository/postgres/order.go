package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, order_type, floor_id, table_id, table_number, customer_name, total_cents, status, time_label, created_at`

// OrderRepository implements repository.OrderRepository on PostgreSQL.
// Items live in order_items and every status change is logged.
type OrderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	var orders []models.Order
	index := make(map[int64]int)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[order.ID] = len(orders)
		orders = append(orders, *order)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT order_id, menu_item_id, name, quantity, price_cents
		FROM order_items ORDER BY order_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID int64
		item, err := scanOrderItem(itemRows, &orderID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, itemRows.Err()
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	return getOrder(ctx, r.db, id, false)
}

func (r *OrderRepository) Create(ctx context.Context, order models.Order) (*models.Order, error) {
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		id, err := insertOrder(ctx, tx, order, false)
		if err != nil {
			return err
		}
		order.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, id int64, fn func(order *models.Order) error) (*models.Order, error) {
	var updated *models.Order
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		order, err := getOrder(ctx, tx, id, true)
		if err != nil {
			return err
		}
		previous := order.Status
		if err := fn(order); err != nil {
			return err
		}
		order.ID = id

		floorID, tableID, tableNumber, customer := targetColumns(order.Target)
		if _, err := tx.Exec(ctx, `
			UPDATE orders
			SET order_type = $2, floor_id = $3, table_id = $4, table_number = $5, customer_name = $6,
			    total_cents = $7, status = $8
			WHERE id = $1`,
			id, string(order.Target.OrderType()), floorID, tableID, tableNumber, customer,
			models.Cents(order.Total), string(order.Status),
		); err != nil {
			return fmt.Errorf("update order %d: %w", id, err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
			return fmt.Errorf("replace order items: %w", err)
		}
		if err := insertOrderItems(ctx, tx, id, order.Items); err != nil {
			return err
		}

		if order.Status != previous {
			if err := logStatus(ctx, tx, id, order.Status); err != nil {
				return err
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func getOrder(ctx context.Context, q querier, id int64, forUpdate bool) (*models.Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	order, err := scanOrder(q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrOrderNotFound
		}
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT order_id, menu_item_id, name, quantity, price_cents
		FROM order_items WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		item, err := scanOrderItem(rows, &orderID)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	return order, rows.Err()
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order                                   models.Order
		orderType, status                       string
		floorID, tableID, tableNumber, customer *string
		totalCents                              int64
	)
	if err := row.Scan(&order.ID, &orderType, &floorID, &tableID, &tableNumber, &customer,
		&totalCents, &status, &order.Time, &order.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	target, err := models.NewTarget(models.OrderType(orderType),
		deref(floorID), deref(tableID), deref(tableNumber), deref(customer))
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", order.ID, err)
	}
	order.Target = target
	order.Total = models.FromCents(totalCents)
	order.Status = models.OrderStatus(status)
	return &order, nil
}

func scanOrderItem(row pgx.Row, orderID *int64) (models.OrderItem, error) {
	var (
		item       models.OrderItem
		menuItemID *int64
		cents      int64
	)
	if err := row.Scan(orderID, &menuItemID, &item.Name, &item.Quantity, &cents); err != nil {
		return item, fmt.Errorf("scan order item: %w", err)
	}
	if menuItemID != nil {
		item.MenuItemID = *menuItemID
	}
	item.Price = models.FromCents(cents)
	return item, nil
}

// insertOrder writes the order with its items and first status log entry.
// withID keeps the caller's id instead of the sequence.
func insertOrder(ctx context.Context, tx pgx.Tx, order models.Order, withID bool) (int64, error) {
	floorID, tableID, tableNumber, customer := targetColumns(order.Target)
	args := []any{
		string(order.Target.OrderType()), floorID, tableID, tableNumber, customer,
		models.Cents(order.Total), string(order.Status), order.Time, order.CreatedAt,
	}

	sql := `
		INSERT INTO orders (order_type, floor_id, table_id, table_number, customer_name, total_cents, status, time_label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if withID {
		sql = `
		INSERT INTO orders (order_type, floor_id, table_id, table_number, customer_name, total_cents, status, time_label, created_at, id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
		args = append(args, order.ID)
	}

	var id int64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	if err := insertOrderItems(ctx, tx, id, order.Items); err != nil {
		return 0, err
	}
	if err := logStatus(ctx, tx, id, order.Status); err != nil {
		return 0, err
	}
	return id, nil
}

func insertOrderItems(ctx context.Context, tx pgx.Tx, orderID int64, items []models.OrderItem) error {
	for i, item := range items {
		var menuItemID *int64
		if item.MenuItemID != 0 {
			id := item.MenuItemID
			menuItemID = &id
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, position, menu_item_id, name, quantity, price_cents)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			orderID, i, menuItemID, item.Name, item.Quantity, models.Cents(item.Price),
		); err != nil {
			return fmt.Errorf("insert order item %s: %w", item.Name, err)
		}
	}
	return nil
}

func logStatus(ctx context.Context, tx pgx.Tx, orderID int64, status models.OrderStatus) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO order_status_log (order_id, status) VALUES ($1, $2)`, orderID, string(status),
	); err != nil {
		return fmt.Errorf("log order status: %w", err)
	}
	return nil
}

// targetColumns maps the order target to its nullable columns
func targetColumns(target models.Target) (floorID, tableID, tableNumber, customer *string) {
	switch t := target.(type) {
	case models.DineIn:
		return &t.FloorID, &t.TableID, &t.TableNumber, nil
	case models.DineOut:
		return nil, nil, nil, &t.CustomerName
	}
	return nil, nil, nil, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
