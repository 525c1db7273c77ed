package devuser

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/sentinel"
)

// PostgresStore persists sandbox dev users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed dev user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *models.OrgDevUser) error {
	query := `
		INSERT INTO org_dev_users (id, ext_id, owner_entity_type, owner_id, hash_id, phone_no_masked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.ExtID, int(user.OwnerEntityType), user.OwnerID,
		user.HashID, user.PhoneNoMasked, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create dev user: %w", err)
	}
	return nil
}

const devUserColumns = `id, ext_id, owner_entity_type, owner_id, hash_id, phone_no_masked, created_at`

func (s *PostgresStore) FindByExtID(ctx context.Context, extID string) (*models.OrgDevUser, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+devUserColumns+` FROM org_dev_users WHERE ext_id = $1`, extID)
	return scanDevUser(row)
}

func (s *PostgresStore) FindByHashID(ctx context.Context, hashID string) (*models.OrgDevUser, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+devUserColumns+` FROM org_dev_users WHERE hash_id = $1`, hashID)
	return scanDevUser(row)
}

func (s *PostgresStore) CountByOwner(ctx context.Context, ownerType models.OwnerEntityType, ownerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM org_dev_users WHERE owner_entity_type = $1 AND owner_id = $2`,
		int(ownerType), ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count dev users: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerType models.OwnerEntityType, ownerID string, skip, limit int) ([]*models.OrgDevUser, int, error) {
	total, err := s.CountByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + devUserColumns + `
		FROM org_dev_users
		WHERE owner_entity_type = $1 AND owner_id = $2
		ORDER BY created_at
		OFFSET $3 LIMIT $4
	`
	rows, err := s.db.QueryContext(ctx, query, int(ownerType), ownerID, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list dev users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.OrgDevUser, 0, limit)
	for rows.Next() {
		user, err := scanDevUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list dev users: %w", err)
	}
	return users, total, nil
}

func (s *PostgresStore) Delete(ctx context.Context, extID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM org_dev_users WHERE ext_id = $1`, extID)
	if err != nil {
		return fmt.Errorf("delete dev user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dev user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevUser(row rowScanner) (*models.OrgDevUser, error) {
	var (
		user      models.OrgDevUser
		ownerType int
	)
	err := row.Scan(&user.ID, &user.ExtID, &ownerType, &user.OwnerID,
		&user.HashID, &user.PhoneNoMasked, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan dev user: %w", err)
	}
	user.OwnerEntityType = models.OwnerEntityType(ownerType)
	return &user, nil
}
