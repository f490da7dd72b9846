package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"stationers/internal/admin"
	"stationers/internal/cart"
	"stationers/internal/catalog"
	"stationers/internal/checkout"
	"stationers/internal/domain"
	"stationers/internal/query"
	"stationers/internal/remote"
)

const requestIDHeader = "X-Request-ID"

// Deps зависимости витрины
type Deps struct {
	Hooks    *query.Hooks
	Catalog  *catalog.Catalog
	Sessions *cart.Sessions
	Checkout *checkout.Service
	Admin    *admin.Orders
	Gate     remote.Gate
	Logger   *slog.Logger
}

// Server HTTP API витрины: каталог, корзина, оформление, заказы
type Server struct {
	engine *gin.Engine
	Deps
}

func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	r := gin.New()
	r.Use(requestID(), gin.Logger(), gin.Recovery())
	s := &Server{engine: r, Deps: d}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/health", s.health)

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/categories", s.listCategories)
		v1.GET("/catalog", s.getCatalog)
		v1.POST("/catalog/retry", s.retryCatalog)
		v1.GET("/products/:id", s.getProduct)

		shop := v1.Group("", s.Sessions.Middleware())
		shop.GET("/cart", s.getCart)
		shop.POST("/cart/items", s.addCartItem)
		shop.PUT("/cart/items/:id", s.updateCartItem)
		shop.DELETE("/cart/items/:id", s.removeCartItem)
		shop.DELETE("/cart", s.clearCart)
		shop.POST("/checkout", s.checkout)

		orders := v1.Group("/admin/orders")
		orders.GET("", s.listOrders)
		orders.PUT("/:id/status", s.updateOrderStatus)
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// @Summary Health
// @Tags storefront
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	backend := "connecting"
	if s.Gate.Ready() {
		backend = "ready"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": backend, "seed_attempted": s.Catalog.SeedAttempted()})
}

// Catalog handlers

// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {array} catalog.CategoryView
// @Router /api/v1/categories [get]
func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.Categories())
}

// @Summary Catalogue page
// @Description Seeds the backend once if the catalogue is empty.
// @Tags catalog
// @Produce json
// @Param category query string false "Category"
// @Success 200 {object} catalog.Page
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /api/v1/catalog [get]
func (s *Server) getCatalog(c *gin.Context) {
	p, err := s.Catalog.Page(c.Request.Context(), domain.Category(c.Query("category")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Retry catalogue
// @Description Refetches regardless of freshness and re-arms the seed attempt.
// @Tags catalog
// @Produce json
// @Param category query string false "Category"
// @Success 200 {object} catalog.Page
// @Failure 502 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /api/v1/catalog/retry [post]
func (s *Server) retryCatalog(c *gin.Context) {
	p, err := s.Catalog.Retry(c.Request.Context(), domain.Category(c.Query("category")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Get product
// @Tags catalog
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} catalog.ProductView
// @Failure 404 {object} map[string]string
// @Router /api/v1/products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := s.Hooks.ProductByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if p == nil {
		respondError(c, errProductNotFound)
		return
	}
	c.JSON(http.StatusOK, catalog.NewProductView(*p))
}

// Cart handlers

type lineView struct {
	ProductID     int64  `json:"product_id"`
	Name          string `json:"name"`
	ImageURL      string `json:"image_url"`
	Price         int64  `json:"price"`
	PriceLabel    string `json:"price_label"`
	Quantity      int64  `json:"quantity"`
	Subtotal      int64  `json:"subtotal"`
	SubtotalLabel string `json:"subtotal_label"`
}

type cartView struct {
	Items       []lineView `json:"items"`
	TotalItems  int64      `json:"total_items"`
	TotalAmount int64      `json:"total_amount"`
	Total       string     `json:"total"`
}

func newCartView(ct *cart.Cart) cartView {
	items := ct.Items()
	v := cartView{Items: make([]lineView, 0, len(items))}
	for _, li := range items {
		v.Items = append(v.Items, lineView{
			ProductID:     li.Product.ID,
			Name:          li.Product.Name,
			ImageURL:      li.Product.ImageURL,
			Price:         li.Product.Price,
			PriceLabel:    domain.FormatPrice(li.Product.Price),
			Quantity:      li.Quantity,
			Subtotal:      li.Subtotal(),
			SubtotalLabel: domain.FormatPrice(li.Subtotal()),
		})
		v.TotalItems += li.Quantity
		v.TotalAmount += li.Subtotal()
	}
	v.Total = domain.FormatPrice(v.TotalAmount)
	return v
}

// @Summary Get cart
// @Tags cart
// @Produce json
// @Success 200 {object} cartView
// @Router /api/v1/cart [get]
func (s *Server) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, newCartView(cart.FromContext(c.Request.Context())))
}

type addItemReq struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

// @Summary Add product to cart
// @Description Adds one unit; out-of-stock products are refused.
// @Tags cart
// @Accept json
// @Produce json
// @Param input body addItemReq true "Product"
// @Success 200 {object} cartView
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/cart/items [post]
func (s *Server) addCartItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.Hooks.ProductByID(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	if p == nil {
		respondError(c, errProductNotFound)
		return
	}
	if !p.InStock() {
		respondError(c, errOutOfStock)
		return
	}
	ct := cart.FromContext(c.Request.Context())
	ct.AddItem(*p)
	c.JSON(http.StatusOK, newCartView(ct))
}

type updateQuantityReq struct {
	Quantity int64 `json:"quantity"`
}

// @Summary Set line quantity
// @Description Quantity 0 or less removes the line.
// @Tags cart
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body updateQuantityReq true "Quantity"
// @Success 200 {object} cartView
// @Router /api/v1/cart/items/{id} [put]
func (s *Server) updateCartItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ct := cart.FromContext(c.Request.Context())
	ct.UpdateQuantity(id, req.Quantity)
	c.JSON(http.StatusOK, newCartView(ct))
}

// @Summary Remove line
// @Tags cart
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} cartView
// @Router /api/v1/cart/items/{id} [delete]
func (s *Server) removeCartItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	ct := cart.FromContext(c.Request.Context())
	ct.RemoveItem(id)
	c.JSON(http.StatusOK, newCartView(ct))
}

// @Summary Clear cart
// @Tags cart
// @Produce json
// @Success 200 {object} cartView
// @Router /api/v1/cart [delete]
func (s *Server) clearCart(c *gin.Context) {
	ct := cart.FromContext(c.Request.Context())
	ct.Clear()
	c.JSON(http.StatusOK, newCartView(ct))
}

// @Summary Place order
// @Description Validates the form, submits the cart once and removes the submitted lines on success.
// @Tags checkout
// @Accept json
// @Produce json
// @Param input body checkout.Form true "Customer details"
// @Success 201 {object} checkout.Confirmation
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /api/v1/checkout [post]
func (s *Server) checkout(c *gin.Context) {
	var form checkout.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	conf, err := s.Checkout.PlaceOrder(c.Request.Context(), cart.FromContext(c.Request.Context()), form)
	if err != nil {
		respondError(c, err)
		return
	}
	s.Logger.Info("order placed", "order_id", conf.OrderID, "total", conf.Total, "request_id", c.GetString("request_id"))
	c.JSON(http.StatusCreated, conf)
}

// Admin handlers

// @Summary List orders
// @Tags admin
// @Produce json
// @Success 200 {object} admin.Overview
// @Failure 502 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /api/v1/admin/orders [get]
func (s *Server) listOrders(c *gin.Context) {
	ov, err := s.Admin.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

type updateStatusReq struct {
	Status domain.OrderStatus `json:"status"`
}

// @Summary Update order status
// @Tags admin
// @Accept json
// @Param id path int true "Order ID"
// @Param input body updateStatusReq true "Status"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]any
// @Router /api/v1/admin/orders/{id}/status [put]
func (s *Server) updateOrderStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := s.Admin.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
