package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/sentinel"
)

// PostgresStore persists apps in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed app store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *PostgresStore) Create(ctx context.Context, app *models.App) error {
	configJSON, err := marshalConfig(app.Config)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO apps (id, ext_id, owner_entity_type, owner_id, name, status, config, logo_file, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		app.ID, app.ExtID, int(app.OwnerEntityType), app.OwnerID, app.Name,
		app.Status.StorageCode(), configJSON, app.LogoFile, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create app: %w", err)
	}
	return nil
}

const appColumns = `id, ext_id, owner_entity_type, owner_id, name, status, config, logo_file, created_at, updated_at`

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.App, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+appColumns+` FROM apps WHERE id = $1`, id)
	return scanApp(row)
}

func (s *PostgresStore) FindByExtID(ctx context.Context, extID string) (*models.App, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+appColumns+` FROM apps WHERE ext_id = $1`, extID)
	return scanApp(row)
}

func (s *PostgresStore) Update(ctx context.Context, app *models.App) error {
	configJSON, err := marshalConfig(app.Config)
	if err != nil {
		return err
	}
	query := `
		UPDATE apps
		SET name = $2, status = $3, config = $4, logo_file = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		app.ID, app.Name, app.Status.StorageCode(), configJSON, app.LogoFile, app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update app: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update app: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, ownerID string, skip, limit int) ([]*models.App, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM apps WHERE ($1 = '' OR owner_id = $1)`
	if err := s.db.QueryRowContext(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count apps: %w", err)
	}

	query := `
		SELECT ` + appColumns + `
		FROM apps
		WHERE ($1 = '' OR owner_id = $1)
		ORDER BY created_at
		OFFSET $2 LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list apps: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.App, 0, limit)
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list apps: %w", err)
	}
	return apps, total, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM apps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete app: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete app: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApp(row rowScanner) (*models.App, error) {
	var (
		app        models.App
		ownerType  int
		statusCode int
		configJSON []byte
	)
	err := row.Scan(&app.ID, &app.ExtID, &ownerType, &app.OwnerID, &app.Name,
		&statusCode, &configJSON, &app.LogoFile, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan app: %w", err)
	}
	app.OwnerEntityType = models.OwnerEntityType(ownerType)
	app.Status = models.AppStatusFromCode(statusCode)
	if len(configJSON) > 0 {
		var cfg models.WebConfig
		if err := json.Unmarshal(configJSON, &cfg); err != nil {
			return nil, fmt.Errorf("decode app config: %w", err)
		}
		app.Config = &cfg
	}
	return &app, nil
}

func marshalConfig(cfg *models.WebConfig) ([]byte, error) {
	if cfg == nil {
		return nil, nil
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode app config: %w", err)
	}
	return data, nil
}
