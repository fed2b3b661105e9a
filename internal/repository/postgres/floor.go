package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/jackc/pgx/v5"
)

const tableColumns = `id, floor_id, number, capacity, status, order_ref, waiter, time_seated, total_cents`

// FloorRepository implements repository.FloorRepository on PostgreSQL
type FloorRepository struct {
	db *DB
}

func NewFloorRepository(db *DB) *FloorRepository {
	return &FloorRepository{db: db}
}

func (r *FloorRepository) GetAll(ctx context.Context) ([]models.Floor, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM floors ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query floors: %w", err)
	}
	var floors []models.Floor
	index := make(map[string]int)
	for rows.Next() {
		var f models.Floor
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan floor: %w", err)
		}
		f.Tables = []models.Table{}
		index[f.ID] = len(floors)
		floors = append(floors, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate floors: %w", err)
	}

	tableRows, err := r.db.Query(ctx, `SELECT `+tableColumns+` FROM floor_tables ORDER BY floor_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer tableRows.Close()

	for tableRows.Next() {
		table, floorID, err := scanTable(tableRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[floorID]; ok {
			floors[i].Tables = append(floors[i].Tables, *table)
		}
	}
	return floors, tableRows.Err()
}

func (r *FloorRepository) GetByID(ctx context.Context, id string) (*models.Floor, error) {
	var f models.Floor
	if err := r.db.QueryRow(ctx, `SELECT id, name FROM floors WHERE id = $1`, id).Scan(&f.ID, &f.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrFloorNotFound
		}
		return nil, fmt.Errorf("get floor: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+tableColumns+` FROM floor_tables WHERE floor_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	f.Tables = []models.Table{}
	for rows.Next() {
		table, _, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		f.Tables = append(f.Tables, *table)
	}
	return &f, rows.Err()
}

func (r *FloorRepository) Create(ctx context.Context, floor models.Floor) (*models.Floor, error) {
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO floors (id, name) VALUES ($1, $2)`, floor.ID, floor.Name); err != nil {
			return fmt.Errorf("insert floor: %w", err)
		}
		for i, t := range floor.Tables {
			if err := insertTable(ctx, tx, floor.ID, i, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if floor.Tables == nil {
		floor.Tables = []models.Table{}
	}
	return &floor, nil
}

func (r *FloorRepository) AddTable(ctx context.Context, floorID string, table models.Table) (*models.Table, error) {
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, `SELECT id FROM floors WHERE id = $1 FOR UPDATE`, floorID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrFloorNotFound
			}
			return fmt.Errorf("lock floor: %w", err)
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM floor_tables WHERE floor_id = $1`, floorID).Scan(&count); err != nil {
			return fmt.Errorf("count tables: %w", err)
		}
		table.Number = fmt.Sprintf("T%d", count+1)
		return insertTable(ctx, tx, floorID, count, table)
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *FloorRepository) GetTable(ctx context.Context, tableID string) (*models.Table, string, error) {
	return getTable(ctx, r.db, tableID, false)
}

func (r *FloorRepository) UpdateTable(ctx context.Context, tableID string, fn func(table *models.Table) error) (*models.Table, string, error) {
	var (
		updated *models.Table
		floorID string
	)
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		table, owner, err := getTable(ctx, tx, tableID, true)
		if err != nil {
			return err
		}
		if err := fn(table); err != nil {
			return err
		}
		table.ID = tableID

		orderRef, waiter, seated, total := occupancyColumns(table.Occupancy)
		if _, err := tx.Exec(ctx, `
			UPDATE floor_tables
			SET capacity = $2, status = $3, order_ref = $4, waiter = $5, time_seated = $6, total_cents = $7
			WHERE id = $1`,
			tableID, table.Capacity, string(table.Status), orderRef, waiter, seated, total,
		); err != nil {
			return fmt.Errorf("update table %s: %w", tableID, err)
		}
		updated, floorID = table, owner
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return updated, floorID, nil
}

func getTable(ctx context.Context, q querier, tableID string, forUpdate bool) (*models.Table, string, error) {
	sql := `SELECT ` + tableColumns + ` FROM floor_tables WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	table, floorID, err := scanTable(q.QueryRow(ctx, sql, tableID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", repository.ErrTableNotFound
		}
		return nil, "", err
	}
	return table, floorID, nil
}

func scanTable(row pgx.Row) (*models.Table, string, error) {
	var (
		table                    models.Table
		floorID, status          string
		orderRef, waiter, seated *string
		totalCents               *int64
	)
	if err := row.Scan(&table.ID, &floorID, &table.Number, &table.Capacity, &status,
		&orderRef, &waiter, &seated, &totalCents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("scan table: %w", err)
	}
	table.Status = models.TableStatus(status)

	if orderRef != nil {
		occ := &models.Occupancy{OrderID: *orderRef, Waiter: deref(waiter), TimeSeated: deref(seated)}
		if totalCents != nil {
			occ.Total = models.FromCents(*totalCents)
		}
		table.Occupancy = occ
	}
	return &table, floorID, nil
}

func insertTable(ctx context.Context, tx pgx.Tx, floorID string, position int, t models.Table) error {
	orderRef, waiter, seated, total := occupancyColumns(t.Occupancy)
	if _, err := tx.Exec(ctx, `
		INSERT INTO floor_tables (id, floor_id, position, number, capacity, status, order_ref, waiter, time_seated, total_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, floorID, position, t.Number, t.Capacity, string(t.Status), orderRef, waiter, seated, total,
	); err != nil {
		return fmt.Errorf("insert table %s: %w", t.ID, err)
	}
	return nil
}

func occupancyColumns(occ *models.Occupancy) (orderRef, waiter, seated *string, total *int64) {
	if occ == nil {
		return nil, nil, nil, nil
	}
	cents := models.Cents(occ.Total)
	return &occ.OrderID, &occ.Waiter, &occ.TimeSeated, &cents
}
