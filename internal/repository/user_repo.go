package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"honeystore/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const userColumns = `id, email, password_hash, name, role, phone, subscription_status, created_at, updated_at`

type postgresUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &postgresUserRepository{
		db:  db,
		log: logger,
	}
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.Phone,
		&user.SubscriptionStatus,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (r *postgresUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if user.SubscriptionStatus == "" {
		user.SubscriptionStatus = domain.SubscriptionFree
	}
	query := `
        INSERT INTO users (id, email, password_hash, name, role, phone, subscription_status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + userColumns

	r.log.Debugf("Repository: Attempting to create user with email: %s", user.Email)

	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Name,
		user.Role,
		user.Phone,
		user.SubscriptionStatus,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			r.log.Warnf("Repository: Attempted to create user with duplicate email: %s", user.Email)
			return nil, fmt.Errorf("user with email '%s': %w", user.Email, domain.ErrConflict)
		}
		r.log.Errorf("Repository: Failed to create user '%s': %v", user.Email, err)
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	r.log.Infof("Repository: User created successfully with ID: %s, Email: %s", created.ID, created.Email)
	return created, nil
}

func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: User with email %s not found", email)
			return nil, fmt.Errorf("user with email %s: %w", email, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get user by email %s: %v", email, err)
		return nil, fmt.Errorf("could not get user by email: %w", err)
	}

	r.log.Debugf("Repository: User found by email %s (ID: %s)", email, user.ID)
	return user, nil
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: User with ID %s not found", id)
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get user by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}

	r.log.Debugf("Repository: User found by ID %s (Email: %s)", id, user.Email)
	return user, nil
}
