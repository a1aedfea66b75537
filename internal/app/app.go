package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vehiql/vehiql_car_marketplace/internal/adapter/gemini"
	"github.com/vehiql/vehiql_car_marketplace/internal/adapter/handler/http"
	"github.com/vehiql/vehiql_car_marketplace/internal/adapter/logger"
	"github.com/vehiql/vehiql_car_marketplace/internal/adapter/mongodb"
	"github.com/vehiql/vehiql_car_marketplace/internal/adapter/postgres"
	"github.com/vehiql/vehiql_car_marketplace/internal/adapter/prometheus"
	"github.com/vehiql/vehiql_car_marketplace/internal/adapter/redis"
	"github.com/vehiql/vehiql_car_marketplace/internal/config"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/ports"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/services"

	"github.com/go-playground/validator/v10"
	"github.com/pressly/goose"
	redisClient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	mongoOptions "go.mongodb.org/mongo-driver/mongo/options"
)

type App struct {
	Config       *config.Container
	Logger       ports.LoggerPort
	DB           *sql.DB
	MongoClient  *mongo.Client
	RedisClient  *redisClient.Client
	RedisAdapter ports.CachePort
	GeminiClient *gemini.Client
	HTTPRouter   *http.Router
}

func New(ctx context.Context, cfg *config.Container) (*App, error) {
	// Set logger
	loggerAdapter := logger.NewLoggerAdapter(cfg.App.Env)
	loggerAdapter.Info("Starting the application", map[string]interface{}{
		"app": cfg.App.Name,
		"env": cfg.App.Env,
	})

	// Set redis
	redisConn := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisConn.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	cacheAdapter := redis.NewRedisAdapter(redisConn)

	// Connect DB
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		redisConn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		redisConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Migrate DB
	if err := goose.Up(db, "./internal/adapter/postgres/migrations"); err != nil {
		db.Close()
		redisConn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Connect Mongo (GridFS image storage)
	mongoConn, err := mongo.Connect(ctx, mongoOptions.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		db.Close()
		redisConn.Close()
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := mongoConn.Ping(ctx, nil); err != nil {
		mongoConn.Disconnect(ctx)
		db.Close()
		redisConn.Close()
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	imageStore := mongodb.NewImageStore(mongoConn, cfg.Mongo.DBName, cfg.HTTP.PublicBaseURL)

	// Gemini vision client; constructed once, passed explicitly
	geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		mongoConn.Disconnect(ctx)
		db.Close()
		redisConn.Close()
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	// Validate
	validate := validator.New()

	// Observability
	metrics := prometheus.NewPrometheusAdapter()

	// Repositories
	carRepo := postgres.NewCarRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)

	// Services
	carService := services.NewCarService(carRepo, imageStore, loggerAdapter, validate, cacheAdapter)
	bookingService := services.NewBookingService(bookingRepo, carRepo, loggerAdapter, validate)
	extractionService := services.NewExtractionService(geminiClient, loggerAdapter)

	// HTTP Handlers
	tokenService := http.NewJWTTokenService(cfg.Token.Secret, loggerAdapter)
	carHandler := http.NewCarHandler(carService, extractionService, loggerAdapter, metrics)
	bookingHandler := http.NewBookingHandler(bookingService, loggerAdapter, metrics)
	aiHandler := http.NewAIHandler(extractionService, loggerAdapter, metrics)
	fileHandler := http.NewFileHandler(imageStore, loggerAdapter, metrics)

	// Init HTTP router
	router, err := http.NewRouter(
		cfg.HTTP,
		tokenService,
		carHandler,
		bookingHandler,
		aiHandler,
		fileHandler,
	)
	if err != nil {
		geminiClient.Close()
		mongoConn.Disconnect(ctx)
		db.Close()
		redisConn.Close()
		return nil, fmt.Errorf("failed to initialize router: %w", err)
	}

	return &App{
		Config:       cfg,
		Logger:       loggerAdapter,
		DB:           db,
		MongoClient:  mongoConn,
		RedisClient:  redisConn,
		RedisAdapter: cacheAdapter,
		GeminiClient: geminiClient,
		HTTPRouter:   router,
	}, nil
}

// Runs all services
func (a *App) Run() error {
	listenAddr := fmt.Sprintf("%s:%s", a.Config.HTTP.URL, a.Config.HTTP.Port)
	a.Logger.Info("Starting HTTP server", map[string]interface{}{
		"addr": listenAddr,
	})

	if err := a.HTTPRouter.Serve(listenAddr); err != nil {
		a.Logger.Error("HTTP server error", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// Stops all services
func (a *App) Stop(ctx context.Context) error {
	a.Logger.Info("Shutting down gracefully...", nil)

	// Close database
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Database close error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Close Mongo
	if err := a.MongoClient.Disconnect(ctx); err != nil {
		a.Logger.Error("MongoDB disconnect error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Close Redis
	if err := a.RedisClient.Close(); err != nil {
		a.Logger.Error("Redis close error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Close Gemini
	if err := a.GeminiClient.Close(); err != nil {
		a.Logger.Error("Gemini close error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	a.Logger.Info("Application stopped successfully", nil)
	return nil
}
