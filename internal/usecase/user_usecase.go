package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"honeystore/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const minPasswordLength = 6

var _ domain.UserUseCase = (*userUseCase)(nil)

type userUseCase struct {
	userRepo domain.UserRepository
	tokens   domain.SessionTokens
	log      *logrus.Logger
}

func NewUserUseCase(repo domain.UserRepository, tokens domain.SessionTokens, logger *logrus.Logger) domain.UserUseCase {
	return &userUseCase{
		userRepo: repo,
		tokens:   tokens,
		log:      logger,
	}
}

func (uc *userUseCase) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if n := utf8.RuneCountInString(name); n < 1 || n > 100 {
		return nil, "", domain.NewValidationError("name", "name must be between 1 and 100 characters")
	}
	if !emailRegex.MatchString(email) {
		return nil, "", domain.NewValidationError("email", "invalid email format")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, "", domain.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", email, err)
		return nil, "", fmt.Errorf("could not hash password: %w", err)
	}

	user, err := uc.userRepo.CreateUser(ctx, &domain.User{
		Email:              email,
		PasswordHash:       string(hash),
		Name:               name,
		Role:               domain.RoleUser,
		SubscriptionStatus: domain.SubscriptionFree,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	uc.log.Infof("Use Case: User %s registered", user.ID)
	return user, token, nil
}

func (uc *userUseCase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := uc.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.log.Warnf("Use Case: Failed login for user %s", user.ID)
		return nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	uc.log.Infof("Use Case: User %s logged in", user.ID)
	return user, token, nil
}

func (uc *userUseCase) Me(ctx context.Context, session *domain.Session) (*domain.User, error) {
	if session == nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("session user no longer exists: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}
