package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

// SalesRepository implements repository.SalesRepository on PostgreSQL.
// Snapshot lines are stored as a JSONB document.
type SalesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) *SalesRepository {
	return &SalesRepository{db: db}
}

func (r *SalesRepository) Record(ctx context.Context, sale models.Snapshot) error {
	items, err := json.Marshal(sale.Items)
	if err != nil {
		return fmt.Errorf("encode sale items: %w", err)
	}
	paidAt := sale.Date
	if sale.PaidAt != nil {
		paidAt = *sale.PaidAt
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO sales (id, created_at, paid_at, subtotal_cents, tax_cents, total_cents, items)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sale.ID, sale.Date, paidAt,
		models.Cents(sale.Subtotal), models.Cents(sale.Tax), models.Cents(sale.Total), items,
	); err != nil {
		return fmt.Errorf("insert sale %s: %w", sale.ID, err)
	}
	return nil
}

func (r *SalesRepository) Since(ctx context.Context, from time.Time) ([]models.Snapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, created_at, paid_at, subtotal_cents, tax_cents, total_cents, items
		FROM sales WHERE paid_at >= $1 ORDER BY paid_at DESC, seq DESC`, from)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	var sales []models.Snapshot
	for rows.Next() {
		var (
			s                    models.Snapshot
			paidAt               time.Time
			subtotal, tax, total int64
			items                []byte
		)
		if err := rows.Scan(&s.ID, &s.Date, &paidAt, &subtotal, &tax, &total, &items); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		if err := json.Unmarshal(items, &s.Items); err != nil {
			return nil, fmt.Errorf("decode sale items: %w", err)
		}
		s.Subtotal = models.FromCents(subtotal)
		s.Tax = models.FromCents(tax)
		s.Total = models.FromCents(total)
		s.Status = models.PaymentPaid
		s.PaidAt = &paidAt
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
