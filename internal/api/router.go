package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/carrent/rental-backend/internal/auth"
	"github.com/carrent/rental-backend/internal/booking"
	bookingHttp "github.com/carrent/rental-backend/internal/booking/http"
	"github.com/carrent/rental-backend/internal/car"
	carHttp "github.com/carrent/rental-backend/internal/car/http"
	"github.com/carrent/rental-backend/internal/file"
	fileHttp "github.com/carrent/rental-backend/internal/file/http"
	"github.com/carrent/rental-backend/internal/logger"
	"github.com/carrent/rental-backend/internal/passwordreset"
	resetHttp "github.com/carrent/rental-backend/internal/passwordreset/http"
	"github.com/carrent/rental-backend/internal/payment"
	paymentHttp "github.com/carrent/rental-backend/internal/payment/http"
	"github.com/carrent/rental-backend/internal/user"
	userHttp "github.com/carrent/rental-backend/internal/user/http"
)

// Config holds the services and settings the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       logrus.FieldLogger

	UserService    user.Service
	CarService     car.Service
	BookingService booking.Service
	PaymentService payment.Service
	ResetService   passwordreset.Service
	FileService    file.Service
	JWTManager     *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: one structured line per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logger.Middleware(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// roleMiddleware: Resolves the caller's role for handlers that scope data by it.
	roleMiddleware := RequireRole(cfg.UserService)
	// staffMiddleware: Back-office only.
	staffMiddleware := RequireRole(cfg.UserService, user.RoleStaff, user.RoleAdmin)
	// adminMiddleware: Account management.
	adminMiddleware := RequireRole(cfg.UserService, user.RoleAdmin)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	fileHandler := fileHttp.NewHandler(cfg.FileService, cfg.Logger)
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	carHandler := carHttp.NewHandler(cfg.CarService, fileHandler)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	paymentHandler := paymentHttp.NewHandler(cfg.PaymentService, fileHandler)
	resetHandler := resetHttp.NewHandler(cfg.ResetService)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, staffMiddleware, adminMiddleware)
		resetHttp.RegisterRoutes(v1, resetHandler)
		carHttp.RegisterRoutes(v1, carHandler, authMiddleware, staffMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, roleMiddleware, staffMiddleware)
		paymentHttp.RegisterRoutes(v1, paymentHandler, authMiddleware, roleMiddleware, staffMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler, authMiddleware)
	}

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
