package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bizdesk/internal/common"
	"github.com/dmitrijs2005/bizdesk/internal/dbx"
	"github.com/dmitrijs2005/bizdesk/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

const accountColumns = `id, phone, email, password_hash, role, reset_code, reset_code_expires_at,
		 name, company_name, company_size, job_position, data, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (id, phone, email, password_hash, role, name, company_name, company_size, job_position, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at, updated_at`

	id := uuid.NewString()
	var hash []byte
	if h, ok := account.PasswordHash(); ok {
		hash = h
	}

	err := r.db.QueryRowContext(ctx, query,
		id,
		nullString(account.Phone),
		nullString(account.Email),
		hash,
		string(account.Role),
		account.Profile.Name,
		account.Profile.CompanyName,
		account.Profile.CompanySize,
		account.Profile.Position,
		nullString(string(account.Profile.Data)),
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.ID = id
	return account, nil
}

func (r *PostgresRepository) FindByIdentifier(ctx context.Context, id models.Identifier) (*models.Account, error) {
	var column string
	switch id.Kind {
	case models.IdentifierPhone:
		column = "phone"
	case models.IdentifierEmail:
		column = "email"
	default:
		return nil, fmt.Errorf("%w: unknown identifier kind", common.ErrInvalidInput)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE ` + column + ` = $1`

	return scanAccount(r.db.QueryRowContext(ctx, query, id.Value))
}

func (r *PostgresRepository) FindByID(ctx context.Context, accountID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE id = $1`

	return scanAccount(r.db.QueryRowContext(ctx, query, accountID))
}

func (r *PostgresRepository) SetResetCode(ctx context.Context, accountID string, code models.ResetCode) error {
	query :=
		`UPDATE accounts SET reset_code = $2, reset_code_expires_at = $3, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, accountID, code.Code, code.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	ok, err := dbx.RowsAffected(res)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ConsumeResetCode(ctx context.Context, accountID, code string, now time.Time, hash models.PasswordHash) error {
	query :=
		`UPDATE accounts SET password_hash = $4, reset_code = NULL, reset_code_expires_at = NULL, updated_at = now()
		 WHERE id = $1 AND reset_code = $2 AND reset_code_expires_at > $3`

	res, err := r.db.ExecContext(ctx, query, accountID, code, now, []byte(hash))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	ok, err := dbx.RowsAffected(res)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !ok {
		return common.ErrInvalidOrExpiredCode
	}
	return nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, accountID string, profile models.Profile) (*models.Account, error) {
	query :=
		`UPDATE accounts SET name = $2, company_name = $3, company_size = $4, job_position = $5, data = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + accountColumns

	return scanAccount(r.db.QueryRowContext(ctx, query,
		accountID,
		profile.Name,
		profile.CompanyName,
		profile.CompanySize,
		profile.Position,
		nullString(string(profile.Data)),
	))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a         models.Account
		phone     sql.NullString
		email     sql.NullString
		hash      []byte
		role      string
		code      sql.NullString
		expiresAt sql.NullTime
		data      []byte
	)

	err := row.Scan(&a.ID, &phone, &email, &hash, &role, &code, &expiresAt,
		&a.Profile.Name, &a.Profile.CompanyName, &a.Profile.CompanySize, &a.Profile.Position, &data,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.Role, err = models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("db error: account %s: %w", a.ID, err)
	}

	a.Phone = phone.String
	a.Email = email.String

	if len(hash) > 0 {
		a.Credential = models.PasswordHash(hash)
	} else {
		a.Credential = models.NoCredential{}
	}

	if code.Valid && expiresAt.Valid {
		a.ResetCode = &models.ResetCode{Code: code.String, ExpiresAt: expiresAt.Time}
	}

	if len(data) > 0 {
		a.Profile.Data = data
	}

	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
