package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/rolzy/mealsteals/internal/auth"
	"github.com/rolzy/mealsteals/internal/deal"
	"github.com/rolzy/mealsteals/internal/middleware"
	"github.com/rolzy/mealsteals/internal/restaurant"
)

func NewRouter(
	authHandler *auth.Handler,
	restaurantHandler *restaurant.Handler,
	dealHandler *deal.Handler,
) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/auth/login", authHandler.Login)

	// ───────────────────────── RESTAURANT ROUTES ─────────────────────────
	restaurants := r.Group("/restaurants")
	{
		restaurants.POST("/search", restaurantHandler.Search)
		restaurants.GET("", restaurantHandler.List)
		restaurants.GET("/:id", restaurantHandler.Get)
		restaurants.GET("/:id/scrape-status", restaurantHandler.GetScrapeStatus)
		restaurants.GET("/:id/deals", dealHandler.ListByRestaurant)
	}

	// ───────────────────────── DEAL ROUTES ─────────────────────────
	deals := r.Group("/deals")
	{
		deals.GET("", dealHandler.Search)
		deals.GET("/:id", dealHandler.Get)
		deals.GET("/day/:day", dealHandler.ListByDay)
	}

	// ───────────────────────── ADMIN ROUTES ─────────────────────────
	admin := r.Group("/")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	{
		admin.PUT("/restaurants/:id", restaurantHandler.Update)
		admin.DELETE("/restaurants/:id", restaurantHandler.Delete)
		admin.PATCH("/deals/:id", dealHandler.Update)
		admin.DELETE("/deals/:id", dealHandler.Delete)
	}

	return r
}
