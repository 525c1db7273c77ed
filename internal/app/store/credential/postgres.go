package credential

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/sentinel"
)

// PostgresStore persists app credentials in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *PostgresStore) Create(ctx context.Context, cred *models.Credential) error {
	optionsJSON, err := json.Marshal(cred.Options)
	if err != nil {
		return fmt.Errorf("encode credential options: %w", err)
	}
	query := `
		INSERT INTO app_credentials (id, app_id, environment, credential_type, name, client_id, client_secret, options, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		cred.ID, cred.AppID, int(cred.Environment), int(cred.Type), cred.Name,
		cred.ClientID, cred.ClientSecret, optionsJSON, cred.Status.StorageCode(),
		cred.CreatedAt, cred.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

const credentialColumns = `id, app_id, environment, credential_type, name, client_id, client_secret, options, status, created_at, updated_at`

func (s *PostgresStore) FindByClientID(ctx context.Context, clientID string) (*models.Credential, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM app_credentials WHERE client_id = $1`, clientID)
	return scanCredential(row)
}

func (s *PostgresStore) FindByAppAndClientID(ctx context.Context, appID uuid.UUID, clientID string) (*models.Credential, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM app_credentials WHERE app_id = $1 AND client_id = $2`, appID, clientID)
	return scanCredential(row)
}

func (s *PostgresStore) ListByApp(ctx context.Context, appID uuid.UUID, skip, limit int) ([]*models.Credential, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM app_credentials WHERE app_id = $1`, appID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count credentials: %w", err)
	}

	query := `
		SELECT ` + credentialColumns + `
		FROM app_credentials
		WHERE app_id = $1
		ORDER BY created_at
		OFFSET $2 LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, appID, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	creds := make([]*models.Credential, 0, limit)
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, 0, err
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list credentials: %w", err)
	}
	return creds, total, nil
}

// ToggleStatus flips active/inactive in a single UPDATE so the status read
// and the write cannot race a concurrent delete of the same row.
func (s *PostgresStore) ToggleStatus(ctx context.Context, appID uuid.UUID, clientID string, now time.Time) (models.CredentialStatus, error) {
	query := `
		UPDATE app_credentials
		SET status = CASE WHEN status = $3 THEN $4 ELSE $3 END, updated_at = $5
		WHERE app_id = $1 AND client_id = $2
		RETURNING status
	`
	var statusCode int
	err := s.db.QueryRowContext(ctx, query, appID, clientID,
		models.CredentialStatusInactive.StorageCode(),
		models.CredentialStatusActive.StorageCode(), now).Scan(&statusCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("toggle credential status: %w", err)
	}
	return models.CredentialStatusFromCode(statusCode), nil
}

func (s *PostgresStore) UpdateName(ctx context.Context, clientID, name string, now time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE app_credentials SET name = $2, updated_at = $3 WHERE client_id = $1`, clientID, name, now)
	if err != nil {
		return fmt.Errorf("rename credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename credential: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteByAppAndClientID(ctx context.Context, appID uuid.UUID, clientID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM app_credentials WHERE app_id = $1 AND client_id = $2`, appID, clientID)
	if err != nil {
		return 0, fmt.Errorf("delete credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete credential: %w", err)
	}
	return affected, nil
}

func (s *PostgresStore) DeleteByApp(ctx context.Context, appID uuid.UUID) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM app_credentials WHERE app_id = $1`, appID)
	if err != nil {
		return 0, fmt.Errorf("delete app credentials: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete app credentials: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*models.Credential, error) {
	var (
		cred        models.Credential
		environment int
		credType    int
		statusCode  int
		optionsJSON []byte
	)
	err := row.Scan(&cred.ID, &cred.AppID, &environment, &credType, &cred.Name,
		&cred.ClientID, &cred.ClientSecret, &optionsJSON, &statusCode,
		&cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}
	cred.Environment = models.Environment(environment)
	cred.Type = models.CredentialType(credType)
	cred.Status = models.CredentialStatusFromCode(statusCode)
	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, &cred.Options); err != nil {
			return nil, fmt.Errorf("decode credential options: %w", err)
		}
	}
	return &cred, nil
}
