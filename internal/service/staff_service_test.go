package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/Lixing-Zhang/restaurant-pos/pkg/logger"
)

func TestStaffService_List(t *testing.T) {
	svc := NewStaffService(repository.NewInMemoryStaffRepository(), logger.New("error"))

	tests := []struct {
		role    string
		want    int
		wantErr error
	}{
		{"", 6, nil},
		{"all", 6, nil},
		{"waiter", 2, nil},
		{"manager", 1, nil},
		{"cleaner", 1, nil},
		{"sommelier", 0, ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			members, err := svc.List(context.Background(), tt.role)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if len(members) != tt.want {
				t.Errorf("expected %d members, got %d", tt.want, len(members))
			}
		})
	}
}

func TestStaffService_Counts(t *testing.T) {
	svc := NewStaffService(repository.NewInMemoryStaffRepository(), logger.New("error"))

	counts, err := svc.Counts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := StaffCounts{Total: 6, Active: 4, OnBreak: 1, OffDuty: 1}
	if counts != want {
		t.Errorf("expected %+v, got %+v", want, counts)
	}
}
