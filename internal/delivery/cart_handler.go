package delivery

import (
	"net/http"

	"honeystore/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CartHandler prices a client-held cart with the same shipping rule the
// order orchestrator applies.
type CartHandler struct {
	shipping domain.ShippingPolicy
	log      *logrus.Logger
}

func NewCartHandler(shipping domain.ShippingPolicy, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		shipping: shipping,
		log:      logger,
	}
}

func (h *CartHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/cart/quote", h.Quote)
}

type QuoteRequest struct {
	Items    []domain.CartItem `json:"items"    binding:"dive"`
	Discount int64             `json:"discount" binding:"gte=0"`
}

func (h *CartHandler) Quote(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CartQuote")
	var req QuoteRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, err)
		return
	}

	cart := domain.NewCart(h.shipping)
	for _, item := range req.Items {
		cart.AddItem(item)
	}
	c.JSON(http.StatusOK, cart.Quote(req.Discount))
}
