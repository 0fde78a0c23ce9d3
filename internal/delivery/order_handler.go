package delivery

import (
	"net/http"

	"honeystore/internal/domain"
	"honeystore/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase  domain.OrderUseCase
	payments domain.PaymentUseCase
	log      *logrus.Logger
}

func NewOrderHandler(uc domain.OrderUseCase, payments domain.PaymentUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase:  uc,
		payments: payments,
		log:      logger,
	}
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	orders := router.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id/status", h.UpdateOrderStatus)
		orders.POST("/:id/refund", h.RefundOrder)
	}
}

type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CreateOrder")

	// Anonymous callers are rejected before the payload is read.
	session := middleware.Session(c)
	if session == nil {
		respondError(c, handlerLogger, domain.ErrUnauthorized)
		return
	}

	var input domain.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, handlerLogger, err)
		return
	}

	order, err := h.useCase.CreateOrder(c.Request.Context(), session, input)
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}

	handlerLogger.Infof("Order %s created for user %s", order.OrderNumber, order.UserID)
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ListOrders")

	orders, err := h.useCase.ListOrders(c.Request.Context(), middleware.Session(c))
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetOrder")

	order, err := h.useCase.GetOrder(c.Request.Context(), middleware.Session(c), c.Param("id"))
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UpdateOrderStatus")

	session := middleware.Session(c)
	if session == nil {
		respondError(c, handlerLogger, domain.ErrUnauthorized)
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, err)
		return
	}

	order, err := h.useCase.UpdateOrderStatus(c.Request.Context(), session, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}

	handlerLogger.Infof("Order %s status set to %s", order.ID, order.Status)
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) RefundOrder(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "RefundOrder")

	order, err := h.payments.Refund(c.Request.Context(), middleware.Session(c), c.Param("id"))
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}

	handlerLogger.Infof("Order %s refunded", order.ID)
	c.JSON(http.StatusOK, gin.H{"order": order})
}
