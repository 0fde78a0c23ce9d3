package delivery

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"honeystore/internal/domain"
	"honeystore/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthRouter() (*mockUserUseCase, http.Handler) {
	users := new(mockUserUseCase)
	return users, newTestRouter(NewAuthHandler(users, 7*24*time.Hour, false, quietLogger()))
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie set", middleware.SessionCookie)
	return nil
}

func TestLoginSetsCookie(t *testing.T) {
	users, r := newAuthRouter()
	user := &domain.User{ID: "user-1", Email: "bat@example.mn", Name: "Bat", Role: domain.RoleUser, SubscriptionStatus: domain.SubscriptionFree}
	users.On("Login", mock.Anything, "bat@example.mn", "secret123").Return(user, "jwt-token", nil).Once()

	w := doRequest(r, http.MethodPost, "/auth/login", "", `{"email":"bat@example.mn","password":"secret123"}`)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w.Result())
	assert.Equal(t, "jwt-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
	assert.JSONEq(t, `{"user":{"id":"user-1","email":"bat@example.mn","name":"Bat","role":"user","subscriptionStatus":"free"}}`, w.Body.String())
}

func TestLoginInvalidCredentials(t *testing.T) {
	users, r := newAuthRouter()
	users.On("Login", mock.Anything, "bat@example.mn", "wrong").
		Return(nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)).Once()

	w := doRequest(r, http.MethodPost, "/auth/login", "", `{"email":"bat@example.mn","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
}

func TestLoginMissingFields(t *testing.T) {
	_, r := newAuthRouter()

	w := doRequest(r, http.MethodPost, "/auth/login", "", `{"email":"bat@example.mn"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, w.Body.String())
}

func TestRegister(t *testing.T) {
	users, r := newAuthRouter()
	user := &domain.User{ID: "user-2", Email: "new@example.mn", Name: "New", Role: domain.RoleUser, SubscriptionStatus: domain.SubscriptionFree}
	users.On("Register", mock.Anything, "New", "new@example.mn", "secret123").Return(user, "jwt-token", nil).Once()
	users.On("Register", mock.Anything, "Dup", "dup@example.mn", "secret123").
		Return(nil, "", fmt.Errorf("email taken: %w", domain.ErrConflict)).Once()

	w := doRequest(r, http.MethodPost, "/auth/register", "", `{"name":"New","email":"new@example.mn","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "jwt-token", sessionCookie(t, w.Result()).Value)

	w = doRequest(r, http.MethodPost, "/auth/register", "", `{"name":"Dup","email":"dup@example.mn","password":"secret123"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	_, r := newAuthRouter()

	w := doRequest(r, http.MethodPost, "/auth/logout", "customer", "")

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w.Result())
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestMe(t *testing.T) {
	users, r := newAuthRouter()
	users.On("Me", mock.Anything, customerSession).Return(&domain.User{ID: "user-1", Email: "bat@example.mn"}, nil).Once()
	users.On("Me", mock.Anything, (*domain.Session)(nil)).Return(nil, domain.ErrUnauthorized).Once()

	w := doRequest(r, http.MethodGet, "/auth/me", "customer", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"user-1"`)
	assert.NotContains(t, w.Body.String(), "password")

	w = doRequest(r, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
