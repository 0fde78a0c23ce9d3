package delivery

import (
	"honeystore/internal/domain"
	"honeystore/internal/metrics"
	"honeystore/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouteRegistrar interface {
	RegisterRoutes(router gin.IRouter)
}

// NewRouter builds the engine with the shared middleware chain and mounts
// every registrar at the root.
func NewRouter(service string, tokens domain.SessionTokens, logger *logrus.Logger, registrars ...RouteRegistrar) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger),
		metrics.PrometheusMiddleware(service),
		middleware.Authenticate(tokens, logger),
	)
	for _, r := range registrars {
		r.RegisterRoutes(router)
	}
	return router
}
