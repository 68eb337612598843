package repository

import (
	"context"

	"canteen/internal/domain/model"
)

type StudentRepository interface {
	Create(ctx context.Context, s *model.Student) error
	FindByID(ctx context.Context, id int64) (model.Student, error)
	FindByUSN(ctx context.Context, usn string) (model.Student, error)
	FindByEmail(ctx context.Context, email string) (model.Student, error)
	ExistsByUSNOrEmail(ctx context.Context, usn, email string) (bool, error)
	List(ctx context.Context, page, limit int) ([]model.Student, int64, error)
}
