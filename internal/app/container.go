package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/carrent/rental-backend/internal/api"
	"github.com/carrent/rental-backend/internal/auth"
	"github.com/carrent/rental-backend/internal/booking"
	"github.com/carrent/rental-backend/internal/car"
	"github.com/carrent/rental-backend/internal/config"
	"github.com/carrent/rental-backend/internal/db"
	"github.com/carrent/rental-backend/internal/file"
	"github.com/carrent/rental-backend/internal/notify"
	"github.com/carrent/rental-backend/internal/passwordreset"
	"github.com/carrent/rental-backend/internal/payment"
	"github.com/carrent/rental-backend/internal/pkg/storage"
	"github.com/carrent/rental-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
// Clients are created and closed by the caller.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Redis        *redis.Client
	Notifier     notify.Notifier
	Storage      storage.Storage
	Logger       logrus.FieldLogger
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	ExtensionPaymentWindow time.Duration
	Reset                  config.ResetProfile
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	UserService    user.Service
	CarService     car.Service
	BookingService booking.Service
	PaymentService payment.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	txManager := db.NewTxManager(cfg.DBPool)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, cfg.Logger)

	// File Module
	fileRepo := file.NewRepository(cfg.DBPool)
	fileService := file.NewService(fileRepo, cfg.Storage, cfg.Logger)

	// Car Module
	carRepo := car.NewPgxRepository(cfg.DBPool)
	carService := car.NewService(carRepo)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, txManager, carService, userService, cfg.Notifier, cfg.Logger, booking.Options{
		ExtensionPaymentWindow: cfg.ExtensionPaymentWindow,
	})

	// Payment Module
	paymentRepo := payment.NewPgxRepository(cfg.DBPool)
	paymentService := payment.NewService(paymentRepo, bookingRepo, txManager, cfg.Notifier, cfg.Logger)

	// Password Reset Module
	resetStore := passwordreset.NewStore(cfg.Redis)
	resetService := passwordreset.NewService(resetStore, userService, cfg.Notifier, cfg.Reset, cfg.Logger)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         cfg.Logger,
		UserService:    userService,
		CarService:     carService,
		BookingService: bookingService,
		PaymentService: paymentService,
		ResetService:   resetService,
		FileService:    fileService,
		JWTManager:     jwtManager,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		UserService:    userService,
		CarService:     carService,
		BookingService: bookingService,
		PaymentService: paymentService,
	}
}
