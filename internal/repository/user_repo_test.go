package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"honeystore/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "email", "password_hash", "name", "role", "phone", "subscription_status", "created_at", "updated_at"}

func TestCreateUserLowercasesEmailAndDefaultsRole(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewPostgresUserRepository(conn, newTestLogger())

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "bat@example.mn", "hash", "Bat", domain.RoleUser, "", domain.SubscriptionFree).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-1", "bat@example.mn", "hash", "Bat", "user", "", "free", now, now))

	user, err := repo.CreateUser(context.Background(), &domain.User{Email: "Bat@Example.mn", PasswordHash: "hash", Name: "Bat"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, domain.SubscriptionFree, user.SubscriptionStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewPostgresUserRepository(conn, newTestLogger())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err = repo.CreateUser(context.Background(), &domain.User{Email: "bat@example.mn", PasswordHash: "hash", Name: "Bat"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestGetUserByEmailNotFound(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewPostgresUserRepository(conn, newTestLogger())

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("nobody@example.mn").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err = repo.GetUserByEmail(context.Background(), "nobody@example.mn")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
