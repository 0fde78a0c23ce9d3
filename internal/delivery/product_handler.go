package delivery

import (
	"net/http"
	"strconv"

	"honeystore/internal/domain"
	"honeystore/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase domain.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc domain.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/categories", h.ListCategories)
		products.GET("/:id", h.GetProduct)
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ListProducts")

	filter := domain.ProductFilter{
		Category: domain.ProductCategory(c.Query("category")),
		Featured: c.Query("featured") == "true",
		Search:   c.Query("search"),
	}
	var err error
	if filter.Page, err = intQuery(c, "page"); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid page parameter"})
		return
	}
	if filter.Limit, err = intQuery(c, "limit"); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit parameter"})
		return
	}

	page, err := h.useCase.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}

	products := page.Products
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"pagination": pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: page.Total,
			Pages: page.Pages,
		},
	})
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (h *ProductHandler) ListCategories(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ListCategories")

	categories, err := h.useCase.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetProduct")

	product, err := h.useCase.GetProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CreateProduct")

	session := middleware.Session(c)
	if !session.IsAdmin() {
		respondError(c, handlerLogger, domain.ErrForbidden)
		return
	}

	var product domain.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, handlerLogger, err)
		return
	}

	created, err := h.useCase.CreateProduct(c.Request.Context(), session, &product)
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}

	handlerLogger.Infof("Product %s created", created.ID)
	c.JSON(http.StatusCreated, gin.H{"product": created})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UpdateProduct")

	session := middleware.Session(c)
	if !session.IsAdmin() {
		respondError(c, handlerLogger, domain.ErrForbidden)
		return
	}

	var product domain.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, handlerLogger, err)
		return
	}

	updated, err := h.useCase.UpdateProduct(c.Request.Context(), session, c.Param("id"), &product)
	if err != nil {
		respondError(c, handlerLogger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": updated})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "DeleteProduct")

	if err := h.useCase.DeleteProduct(c.Request.Context(), middleware.Session(c), c.Param("id")); err != nil {
		respondError(c, handlerLogger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
