package http

import (
	"net/http"

	"github.com/vehiql/vehiql_car_marketplace/internal/config"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	router *gin.Engine
}

func NewRouter(
	cfg *config.HTTP,
	tokenService ports.TokenService,
	carHandler *CarHandler,
	bookingHandler *BookingHandler,
	aiHandler *AIHandler,
	fileHandler *FileHandler,
) (*Router, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public browsing and image serving
	router.GET("/cars", carHandler.ListCars)
	router.GET("/cars/:id", carHandler.GetCar)
	router.GET("/files/cars/:carID/:name", fileHandler.ServeCarImage)

	// Signed-in users
	authed := router.Group("/")
	authed.Use(AuthMiddleware(tokenService))
	{
		authed.POST("/ai/search", carHandler.SearchByImage)
		authed.POST("/bookings", bookingHandler.BookTestDrive)
		authed.GET("/bookings/my", bookingHandler.GetMyBookings)
		authed.DELETE("/bookings/:id", bookingHandler.CancelBooking)
		authed.POST("/ai/chat", aiHandler.Chat)
	}

	// Admin back-office
	admin := router.Group("/")
	admin.Use(AuthMiddleware(tokenService), AdminMiddleware())
	{
		admin.POST("/cars", carHandler.AddCar)
		admin.PATCH("/cars/:id/status", carHandler.UpdateCarStatus)
		admin.DELETE("/cars/:id", carHandler.DeleteCar)
		admin.POST("/ai/extract", aiHandler.ExtractCarDetails)
		admin.GET("/admin/bookings", bookingHandler.ListBookings)
		admin.PATCH("/admin/bookings/:id/status", bookingHandler.UpdateBookingStatus)
	}

	return &Router{router: router}, nil
}

func (r *Router) Serve(addr string) error {
	return r.router.Run(addr)
}

func (r *Router) Engine() *gin.Engine {
	return r.router
}
