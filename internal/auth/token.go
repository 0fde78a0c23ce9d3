package auth

import (
	"errors"
	"fmt"
	"time"

	"honeystore/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID             string                    `json:"id"`
	Email              string                    `json:"email"`
	Name               string                    `json:"name"`
	Role               domain.Role               `json:"role"`
	SubscriptionStatus domain.SubscriptionStatus `json:"subscriptionStatus"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *JWTManager) TTL() time.Duration { return m.ttl }

func (m *JWTManager) Issue(user *domain.User) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID:             user.ID,
		Email:              user.Email,
		Name:               user.Name,
		Role:               user.Role,
		SubscriptionStatus: user.SubscriptionStatus,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("could not sign session token: %w", err)
	}
	return signed, nil
}

func (m *JWTManager) Parse(tokenStr string) (*domain.Session, error) {
	if tokenStr == "" {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token: %w", errors.Join(domain.ErrUnauthorized, err))
	}
	claims := token.Claims.(*Claims)
	if claims.UserID == "" {
		return nil, fmt.Errorf("session token has no user: %w", domain.ErrUnauthorized)
	}
	return &domain.Session{
		UserID:             claims.UserID,
		Email:              claims.Email,
		Name:               claims.Name,
		Role:               claims.Role,
		SubscriptionStatus: claims.SubscriptionStatus,
	}, nil
}
