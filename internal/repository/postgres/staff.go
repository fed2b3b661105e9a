package postgres

import (
	"context"
	"fmt"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

// StaffRepository implements repository.StaffRepository on PostgreSQL
type StaffRepository struct {
	db *DB
}

func NewStaffRepository(db *DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) GetAll(ctx context.Context) ([]models.StaffMember, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, role, email, phone, status, avatar FROM staff ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}
	defer rows.Close()

	var staff []models.StaffMember
	for rows.Next() {
		var (
			m            models.StaffMember
			role, status string
		)
		if err := rows.Scan(&m.ID, &m.Name, &role, &m.Email, &m.Phone, &status, &m.Avatar); err != nil {
			return nil, fmt.Errorf("scan staff member: %w", err)
		}
		m.Role = models.StaffRole(role)
		m.Status = models.StaffStatus(status)
		staff = append(staff, m)
	}
	return staff, rows.Err()
}
