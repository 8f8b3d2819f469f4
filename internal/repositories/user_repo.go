package repositories

import (
	"context"
	"strings"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByMobile(ctx context.Context, mobile string) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, firstLogin bool) error
}

type userRepo struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, company_id, email, mobile, password_hash, role, first_login, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.CompanyID, &user.Email, &user.Mobile, &user.PasswordHash, &user.Role, &user.FirstLogin, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func insertUser(ctx context.Context, db DBTX, user *models.User) error {
	query := `
		INSERT INTO users (id, company_id, email, mobile, password_hash, role, first_login, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := db.Exec(ctx, query, user.ID, user.CompanyID, user.Email, user.Mobile, user.PasswordHash, user.Role, user.FirstLogin, user.IsActive)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return insertUser(ctx, r.db, user)
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = $1`
	return scanUser(r.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func (r *userRepo) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE mobile = $1`
	return scanUser(r.db.QueryRow(ctx, query, strings.TrimSpace(mobile)))
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, firstLogin bool) error {
	query := `
		UPDATE users
		SET password_hash = $1, first_login = $2, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, passwordHash, firstLogin, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if !firstLogin {
		_, err = r.db.Exec(ctx, `UPDATE hrs SET first_login = FALSE, updated_at = NOW() WHERE user_id = $1`, id)
	}
	return err
}
