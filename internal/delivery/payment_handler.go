package delivery

import (
	"net/http"

	"honeystore/internal/domain"
	"honeystore/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PaymentHandler struct {
	useCase domain.PaymentUseCase
	log     *logrus.Logger
}

func NewPaymentHandler(uc domain.PaymentUseCase, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *PaymentHandler) RegisterRoutes(router gin.IRouter) {
	payment := router.Group("/payment")
	{
		payment.POST("/qpay", h.CreateQPayInvoice)
		payment.POST("/qpay/callback", h.QPayCallback)
		payment.POST("/khanbank", h.CreateKhanBankTransfer)
		payment.POST("/:orderId/refresh", h.RefreshPayment)
	}
}

// qpayCallbackBody is what QPay posts to the callback url. Only the payment
// id is read; the paid state is always re-checked with the gateway.
type qpayCallbackBody struct {
	PaymentID string `json:"payment_id"`
}

func (h *PaymentHandler) CreateQPayInvoice(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CreateQPayInvoice")

	session := middleware.Session(c)
	if session == nil {
		respondError(c, handlerLogger, domain.ErrUnauthorized)
		return
	}

	var req domain.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, err)
		return
	}

	invoice, err := h.useCase.CreateQPayInvoice(c.Request.Context(), session, req)
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

func (h *PaymentHandler) CreateKhanBankTransfer(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CreateKhanBankTransfer")

	session := middleware.Session(c)
	if session == nil {
		respondError(c, handlerLogger, domain.ErrUnauthorized)
		return
	}

	var req domain.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, err)
		return
	}

	transfer, err := h.useCase.CreateKhanBankTransfer(c.Request.Context(), session, req)
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

func (h *PaymentHandler) QPayCallback(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "QPayCallback")

	orderID := c.Query("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "order_id is required"})
		return
	}

	paymentID := c.Query("payment_id")
	if paymentID == "" {
		var body qpayCallbackBody
		if err := c.ShouldBindJSON(&body); err == nil {
			paymentID = body.PaymentID
		}
	}

	order, err := h.useCase.HandleQPayCallback(c.Request.Context(), orderID, paymentID)
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}

	handlerLogger.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"payment_status": order.PaymentStatus,
	}).Info("QPay callback processed")
	c.JSON(http.StatusOK, gin.H{"paymentStatus": order.PaymentStatus})
}

func (h *PaymentHandler) RefreshPayment(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "RefreshPayment")

	order, err := h.useCase.RefreshPayment(c.Request.Context(), middleware.Session(c), c.Param("orderId"))
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
