package middleware

import (
	"strings"

	"honeystore/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	SessionCookie = "auth_token"
	sessionKey    = "session"
)

// Authenticate resolves the session from the auth_token cookie or a Bearer
// header. Requests without a valid token continue anonymously; use cases
// decide whether a session is required.
func Authenticate(tokens domain.SessionTokens, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken := bearerToken(c.GetHeader("Authorization"))
		if rawToken == "" {
			rawToken, _ = c.Cookie(SessionCookie)
		}
		if rawToken == "" {
			c.Next()
			return
		}

		session, err := tokens.Parse(rawToken)
		if err != nil {
			log.Debugf("Middleware: Ignoring invalid session token: %v", err)
			c.Next()
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Session returns the authenticated caller, or nil.
func Session(c *gin.Context) *domain.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*domain.Session)
	return s
}
