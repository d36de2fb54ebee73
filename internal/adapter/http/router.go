package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/http/middleware"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

type Handlers struct {
	Auth    *AuthHandler
	Orders  *OrderHandler
	Payment *PaymentHandler
	Catalog *CatalogHandler
	News    *NewsHandler
	Admin   *AdminHandler
}

func NewRouter(h Handlers, authz *middleware.Authz, cv *middleware.CallbackVerify) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())
	r.Use(middleware.Logging(logging.New("http")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/verify", authz.Require(), h.Auth.Verify)
	}

	bikes := api.Group("/bikes")
	{
		bikes.GET("", h.Catalog.List)
		bikes.GET("/:id", h.Catalog.Get)
		bikes.POST("", authz.Require(domain.RoleAdmin), h.Catalog.Create)
		bikes.PATCH("/:id", authz.Require(domain.RoleAdmin), h.Catalog.Update)
		bikes.DELETE("/:id", authz.Require(domain.RoleAdmin), h.Catalog.Delete)
	}

	news := api.Group("/news")
	{
		news.GET("", h.News.List)
		news.GET("/:id", h.News.Get)
		news.POST("", authz.Require(domain.RoleAdmin), h.News.Create)
		news.PUT("/:id", authz.Require(domain.RoleAdmin), h.News.Update)
		news.DELETE("/:id", authz.Require(domain.RoleAdmin), h.News.Delete)
	}

	orders := api.Group("/orders", authz.Require())
	{
		orders.POST("", h.Orders.CreateOrder)
		orders.GET("", h.Orders.ListOrders)
		orders.GET("/:id", h.Orders.GetOrderByID)
		orders.GET("/:id/status", h.Orders.GetStatus)
		orders.POST("/:id/cancel", h.Orders.Cancel)
		orders.POST("/:id/retry", h.Orders.Retry)
		orders.PATCH("/:id/status", middleware.RequireRole(domain.RoleAdmin), h.Orders.UpdateStatus)
	}

	payments := api.Group("/payments")
	{
		payments.POST("", authz.Require(), h.Payment.Initiate)
		payments.POST("/success", cv.Browser(), h.Payment.Browser(usecase.SourceSuccess))
		payments.POST("/fail", cv.Browser(), h.Payment.Browser(usecase.SourceFail))
		payments.POST("/cancel", cv.Browser(), h.Payment.Browser(usecase.SourceCancel))
		payments.POST("/ipn", cv.Server(), h.Payment.IPN)
	}

	admin := api.Group("/admin", authz.Require(domain.RoleAdmin))
	{
		admin.GET("/dashboard", h.Admin.Dashboard)
		admin.GET("/users", h.Admin.Users)
		admin.PUT("/users/:id/toggle-block", h.Admin.ToggleBlock)
		admin.PUT("/users/:id/role", h.Admin.ChangeRole)
		admin.DELETE("/users/:id", h.Admin.DeleteUser)
		admin.GET("/bikes", h.Admin.Bikes)
		admin.GET("/news", h.News.ListAll)
	}

	return r
}
