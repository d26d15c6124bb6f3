// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/greenbasket/grocery-backend/internal/config"
	"github.com/greenbasket/grocery-backend/internal/interfaces/http/handlers"
	"github.com/greenbasket/grocery-backend/internal/interfaces/http/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	setupAuthRoutes(rg, db, cfg)
	setupProductRoutes(rg, db, redisClient, cfg)
	setupCartRoutes(rg, db, redisClient, cfg)
	setupReviewRoutes(rg, db, cfg)
	setupAdminRoutes(rg, db, redisClient, cfg)
}

func setupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
		}
	}
}

func setupProductRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, redisClient, cfg)
	reviewHandler := handlers.NewReviewHandler(db, cfg)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/reviews", reviewHandler.ListByProduct)
	}
}

func setupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	cart := rg.Group("/cart")
	{
		cart.POST("/add", cartHandler.AddItem)
		cart.POST("/remove-item", cartHandler.RemoveItem)
		cart.GET("/:user_id", cartHandler.GetItems)
		cart.POST("/clear", cartHandler.ClearCart)
		cart.POST("/checkout", cartHandler.Checkout)
	}
}

func setupReviewRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	reviewHandler := handlers.NewReviewHandler(db, cfg)

	reviews := rg.Group("/reviews")
	reviews.Use(middleware.AuthMiddleware(cfg))
	{
		reviews.POST("", reviewHandler.Create)
		reviews.PUT("/:id", reviewHandler.Update)
		reviews.DELETE("/:id", reviewHandler.Delete)
	}
}

func setupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, redisClient, cfg)
	reviewHandler := handlers.NewReviewHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/stats", adminHandler.GetDashboardStats)

		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)

		admin.DELETE("/reviews/:id", reviewHandler.Delete)
	}
}
