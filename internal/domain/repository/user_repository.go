package repository

import (
	"context"

	"github.com/facturalo/facturalo-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia de usuarios.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
