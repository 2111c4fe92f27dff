package postgres

import (
	"context"
	"errors"
	"fmt"

	"nps-merchant-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const credentialColumns = `id, merchant_id, merchant_name, api_username, api_password_enc, shared_secret_enc, created_at, updated_at`

// CredentialRepo implements ports.CredentialRepository over the
// nps_credentials table.
type CredentialRepo struct {
	pool Pool
}

// NewCredentialRepo creates a new CredentialRepo.
func NewCredentialRepo(pool Pool) *CredentialRepo {
	return &CredentialRepo{pool: pool}
}

// Create inserts the credential and fills its ID and timestamps.
func (r *CredentialRepo) Create(ctx context.Context, c *domain.Credential) error {
	query := `INSERT INTO nps_credentials (merchant_id, merchant_name, api_username, api_password_enc, shared_secret_enc)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		c.MerchantID, c.MerchantName, c.APIUsername, c.APIPasswordEnc, c.SharedSecretEnc,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrCredentialExists
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// Get returns the stored credential, or nil if none exists.
func (r *CredentialRepo) Get(ctx context.Context) (*domain.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM nps_credentials ORDER BY id LIMIT 1`

	c, err := scanCredential(r.pool.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return c, nil
}

// GetByID fetches the credential with the given id, or nil.
func (r *CredentialRepo) GetByID(ctx context.Context, id int64) (*domain.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM nps_credentials WHERE id = $1`

	c, err := scanCredential(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get credential by id: %w", err)
	}
	return c, nil
}

// Update overwrites every mutable column and refreshes UpdatedAt.
func (r *CredentialRepo) Update(ctx context.Context, c *domain.Credential) error {
	query := `UPDATE nps_credentials
		SET merchant_id=$1, merchant_name=$2, api_username=$3, api_password_enc=$4, shared_secret_enc=$5, updated_at=NOW()
		WHERE id=$6
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		c.MerchantID, c.MerchantName, c.APIUsername, c.APIPasswordEnc, c.SharedSecretEnc, c.ID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update credential %d: no such row", c.ID)
		}
		return fmt.Errorf("update credential: %w", err)
	}
	return nil
}

// Count returns the number of stored credentials (0 or 1).
func (r *CredentialRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM nps_credentials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return n, nil
}

func scanCredential(row pgx.Row) (*domain.Credential, error) {
	c := &domain.Credential{}
	err := row.Scan(
		&c.ID, &c.MerchantID, &c.MerchantName, &c.APIUsername,
		&c.APIPasswordEnc, &c.SharedSecretEnc, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}
