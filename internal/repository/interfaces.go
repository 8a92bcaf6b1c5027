package repository

import (
	"context"

	"github.com/alexanderramin/orbit/internal/domain"
)

type StudentProfileRepo interface {
	Get(ctx context.Context, studentID string) (*domain.StudentProfile, error)
	Upsert(ctx context.Context, p *domain.StudentProfile) error
	List(ctx context.Context) ([]*domain.StudentProfile, error)
}
