package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/facturalo/facturalo-api/internal/domain"
	"github.com/facturalo/facturalo-api/internal/domain/entity"
	"github.com/facturalo/facturalo-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación de UserRepository.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, emitter_cuit, email, password_hash, name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.EmitterCUIT, u.Email, u.PasswordHash, u.Name, u.Role, u.Status,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por id. (nil, nil) si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail obtiene un usuario por email. (nil, nil) si no existe.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepo) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	query := fmt.Sprintf(`
		SELECT id, emitter_cuit, email, password_hash, name, role, status, created_at, updated_at
		FROM users WHERE %s = $1`, column)
	var u entity.User
	err := r.q.QueryRow(ctx, query, value).Scan(
		&u.ID, &u.EmitterCUIT, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Status,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
