package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"nps-merchant-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCredential() *domain.Credential {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Credential{
		ID:              1,
		MerchantID:      "M1",
		MerchantName:    "Acme",
		APIUsername:     "acme_api",
		APIPasswordEnc:  "0a1b2c",
		SharedSecretEnc: "3d4e5f",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func credentialColumnNames() []string {
	return []string{"id", "merchant_id", "merchant_name", "api_username", "api_password_enc", "shared_secret_enc", "created_at", "updated_at"}
}

func credentialRow(c *domain.Credential) *pgxmock.Rows {
	return pgxmock.NewRows(credentialColumnNames()).AddRow(
		c.ID, c.MerchantID, c.MerchantName, c.APIUsername,
		c.APIPasswordEnc, c.SharedSecretEnc, c.CreatedAt, c.UpdatedAt,
	)
}

func TestCredentialRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCredentialRepo(mock)
	c := newTestCredential()
	c.ID = 0
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("INSERT INTO nps_credentials").
		WithArgs(c.MerchantID, c.MerchantName, c.APIUsername, c.APIPasswordEnc, c.SharedSecretEnc).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, int64(7), c.ID)
	assert.Equal(t, now, c.CreatedAt)
	assert.Equal(t, now, c.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepo_Create_SingletonViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCredentialRepo(mock)

	mock.ExpectQuery("INSERT INTO nps_credentials").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "nps_credentials_singleton_key"})

	err = repo.Create(context.Background(), newTestCredential())
	assert.ErrorIs(t, err, domain.ErrCredentialExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepo_Create_OtherError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCredentialRepo(mock)

	mock.ExpectQuery("INSERT INTO nps_credentials").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23502", Message: "null value"})

	err = repo.Create(context.Background(), newTestCredential())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCredentialExists)
	assert.ErrorContains(t, err, "insert credential")
}

func TestCredentialRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCredentialRepo(mock)
	c := newTestCredential()

	mock.ExpectQuery("SELECT .+ FROM nps_credentials ORDER BY id LIMIT 1").
		WillReturnRows(credentialRow(c))

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, c, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepo_Get_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCredentialRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM nps_credentials").
		WillReturnRows(pgxmock.NewRows(credentialColumnNames()))

	got, err := repo.Get(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCredentialRepo(mock)
	c := newTestCredential()

	mock.ExpectQuery("SELECT .+ FROM nps_credentials WHERE id").
		WithArgs(c.ID).
		WillReturnRows(credentialRow(c))

	got, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "M1", got.MerchantID)
	assert.Equal(t, "3d4e5f", got.SharedSecretEnc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCredentialRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM nps_credentials WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(credentialColumnNames()))

	got, err := repo.GetByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestCredentialRepo_GetByID_DBError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCredentialRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM nps_credentials WHERE id").
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection reset"))

	got, err := repo.GetByID(context.Background(), 1)
	assert.Nil(t, got)
	assert.ErrorContains(t, err, "connection reset")
}

func TestCredentialRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCredentialRepo(mock)
	c := newTestCredential()
	c.MerchantName = "Acme Traders"
	later := c.UpdatedAt.Add(time.Minute)

	mock.ExpectQuery("UPDATE nps_credentials").
		WithArgs(c.MerchantID, "Acme Traders", c.APIUsername, c.APIPasswordEnc, c.SharedSecretEnc, c.ID).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(later))

	require.NoError(t, repo.Update(context.Background(), c))
	assert.Equal(t, later, c.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepo_Update_Missing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCredentialRepo(mock)
	c := newTestCredential()

	mock.ExpectQuery("UPDATE nps_credentials").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), c.ID).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}))

	err = repo.Update(context.Background(), c)
	assert.ErrorContains(t, err, "no such row")
}

func TestCredentialRepo_Count(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCredentialRepo(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM nps_credentials`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
