package repository

import (
	"context"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

// InMemoryStaffRepository serves a fixed roster
type InMemoryStaffRepository struct {
	staff []models.StaffMember
}

func NewInMemoryStaffRepository() *InMemoryStaffRepository {
	return &InMemoryStaffRepository{staff: SeedStaff()}
}

func (r *InMemoryStaffRepository) GetAll(ctx context.Context) ([]models.StaffMember, error) {
	return append([]models.StaffMember(nil), r.staff...), nil
}
