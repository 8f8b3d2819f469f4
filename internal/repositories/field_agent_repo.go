package repositories

import (
	"context"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type FieldAgentRepository interface {
	CreateWithUser(ctx context.Context, user *models.User, agent *models.FieldAgent) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FieldAgent, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.FieldAgent, error)
	GetByCode(ctx context.Context, code string) (*models.FieldAgent, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, agent *models.FieldAgent) error
}

type fieldAgentRepo struct {
	db DBTX
}

func NewFieldAgentRepository(db DBTX) FieldAgentRepository {
	return &fieldAgentRepo{db: db}
}

const fieldAgentColumns = `id, user_id, agent_code, first_name, last_name, email, mobile, alt_phone, emergency_contact, address, city, photo_url, gov_id_url, created_at, updated_at`

func scanFieldAgent(row pgx.Row) (*models.FieldAgent, error) {
	a := &models.FieldAgent{}
	err := row.Scan(&a.ID, &a.UserID, &a.AgentCode, &a.FirstName, &a.LastName, &a.Email, &a.Mobile, &a.AltPhone, &a.EmergencyContact, &a.Address, &a.City, &a.PhotoURL, &a.GovIDURL, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// CreateWithUser inserts the agent login and profile in one transaction.
func (r *fieldAgentRepo) CreateWithUser(ctx context.Context, user *models.User, a *models.FieldAgent) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		query := `
			INSERT INTO field_agents (id, user_id, agent_code, first_name, last_name, email, mobile, alt_phone, emergency_contact, address, city, photo_url, gov_id_url, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		`
		_, err := tx.Exec(ctx, query, a.ID, a.UserID, a.AgentCode, a.FirstName, a.LastName, a.Email, a.Mobile, a.AltPhone, a.EmergencyContact, a.Address, a.City, a.PhotoURL, a.GovIDURL)
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	})
}

func (r *fieldAgentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FieldAgent, error) {
	query := `SELECT ` + fieldAgentColumns + ` FROM field_agents WHERE id = $1`
	return scanFieldAgent(r.db.QueryRow(ctx, query, id))
}

func (r *fieldAgentRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.FieldAgent, error) {
	query := `SELECT ` + fieldAgentColumns + ` FROM field_agents WHERE user_id = $1`
	return scanFieldAgent(r.db.QueryRow(ctx, query, userID))
}

func (r *fieldAgentRepo) GetByCode(ctx context.Context, code string) (*models.FieldAgent, error) {
	query := `SELECT ` + fieldAgentColumns + ` FROM field_agents WHERE agent_code = $1`
	return scanFieldAgent(r.db.QueryRow(ctx, query, code))
}

func (r *fieldAgentRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM field_agents WHERE agent_code = $1)`, code).Scan(&exists)
	return exists, err
}

func (r *fieldAgentRepo) Update(ctx context.Context, a *models.FieldAgent) error {
	query := `
		UPDATE field_agents
		SET first_name = $1, last_name = $2, email = $3, alt_phone = $4, emergency_contact = $5, address = $6, photo_url = $7, updated_at = NOW()
		WHERE id = $8
	`
	tag, err := r.db.Exec(ctx, query, a.FirstName, a.LastName, a.Email, a.AltPhone, a.EmergencyContact, a.Address, a.PhotoURL, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
