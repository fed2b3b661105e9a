package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
)

var ErrInvalidRole = errors.New("unknown staff role")

// AllRoles selects the whole roster
const AllRoles = "all"

// StaffCounts tallies the roster by shift status
type StaffCounts struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	OnBreak int `json:"onBreak"`
	OffDuty int `json:"offDuty"`
}

type StaffService struct {
	staff  repository.StaffRepository
	logger *slog.Logger
}

func NewStaffService(staff repository.StaffRepository, logger *slog.Logger) *StaffService {
	return &StaffService{staff: staff, logger: logger}
}

// List returns the roster, optionally narrowed to one role
func (s *StaffService) List(ctx context.Context, role string) ([]models.StaffMember, error) {
	members, err := s.staff.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if role == "" || role == AllRoles {
		return members, nil
	}

	want := models.StaffRole(role)
	if !want.Valid() {
		return nil, ErrInvalidRole
	}
	out := make([]models.StaffMember, 0, len(members))
	for _, m := range members {
		if m.Role == want {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *StaffService) Counts(ctx context.Context) (StaffCounts, error) {
	members, err := s.staff.GetAll(ctx)
	if err != nil {
		return StaffCounts{}, err
	}

	counts := StaffCounts{Total: len(members)}
	for _, m := range members {
		switch m.Status {
		case models.StaffActive:
			counts.Active++
		case models.StaffOnBreak:
			counts.OnBreak++
		case models.StaffOffDuty:
			counts.OffDuty++
		}
	}
	return counts, nil
}
