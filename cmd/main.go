package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-user-auth/internal/handlers"
	"github.com/sbilibin2017/gw-user-auth/internal/jwt"
	"github.com/sbilibin2017/gw-user-auth/internal/logger"
	"github.com/sbilibin2017/gw-user-auth/internal/messaging"
	"github.com/sbilibin2017/gw-user-auth/internal/middlewares"
	"github.com/sbilibin2017/gw-user-auth/internal/password"
	"github.com/sbilibin2017/gw-user-auth/internal/repositories"
	"github.com/sbilibin2017/gw-user-auth/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/sbilibin2017/gw-user-auth/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title gw-user-auth API
// @version 1.0.0
// @description Microservice for user accounts and authentication
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword, cacheExpSecond,
		kafkaBrokers, kafkaEmailTopic,
		jwtSecret, jwtExpSecond, jwtResetExpSecond,
		maxAttempts, lockoutSecond, bcryptCost,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword, cacheExpSecond,
		kafkaBrokers, kafkaEmailTopic,
		jwtSecret, jwtExpSecond, jwtResetExpSecond,
		maxAttempts, lockoutSecond, bcryptCost,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, database, Redis, Kafka, logging, JWT, lockout, and hashing
// configuration. Settings are read once at startup and injected; nothing
// reads the environment mid-request.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string, cacheExpSecond int,
	kafkaBrokers []string, kafkaEmailTopic string,
	jwtSecretKey string, jwtExpSecond, jwtResetExpSecond int,
	maxAttempts, lockoutSecond, bcryptCost int,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	pgHost = getEnv("POSTGRES_HOST", "localhost")
	pgUser = getEnv("POSTGRES_USER", "user")
	pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	pgDB = getEnv("POSTGRES_DB", "database")
	if pgPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if pgMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if pgMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// Redis config
	redisHost = getEnv("REDIS_HOST", "localhost")
	if redisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")
	if cacheExpSecond, err = strconv.Atoi(getEnv("USER_CACHE_EXP_SECOND", "300")); err != nil {
		return
	}

	// Kafka config
	kafkaBrokers = strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	kafkaEmailTopic = getEnv("KAFKA_EMAIL_TOPIC", "reset_password")

	// JWT config
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "3600")); err != nil {
		return
	}
	if jwtResetExpSecond, err = strconv.Atoi(getEnv("JWT_RESET_EXP_SECOND", "900")); err != nil {
		return
	}

	// Lockout config
	if maxAttempts, err = strconv.Atoi(getEnv("AUTH_MAX_ATTEMPTS", "3")); err != nil {
		return
	}
	if lockoutSecond, err = strconv.Atoi(getEnv("AUTH_LOCKOUT_SECOND", "900")); err != nil {
		return
	}

	// Hashing config
	if bcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", "12")); err != nil {
		return
	}

	return
}

// run initializes the logger, database, Redis, Kafka writer, and HTTP
// server. It sets up routes, applies middleware, and handles graceful
// shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string, cacheExpSecond int,
	kafkaBrokers []string, kafkaEmailTopic string,
	jwtSecretKey string, jwtExpSecond, jwtResetExpSecond int,
	maxAttempts, lockoutSecond, bcryptCost int,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		pgUser, pgPassword, pgHost, pgPort, pgDB)
	logger.Log.Infof("Connecting to PostgreSQL: %s:%d/%s", pgHost, pgPort, pgDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		logger.Log.Fatal("PostgreSQL connection error:", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		logger.Log.Fatal("PostgreSQL ping failed:", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", redisHost, redisPort),
		Password: redisPassword,
		DB:       redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Fatal("Redis connection error:", err)
	}
	defer rdb.Close()

	// Kafka writer for reset-token delivery. RequireAll marks the message
	// durable at publish time; delivery to the mailer is asynchronous.
	kafkaWriter := &kafka.Writer{
		Addr:         kafka.TCP(kafkaBrokers...),
		Topic:        kafkaEmailTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	defer kafkaWriter.Close()

	// Initialize JWT service
	jwtSvc := jwt.New(
		jwt.WithSecretKey(jwtSecretKey),
		jwt.WithExpiration(time.Duration(jwtExpSecond)*time.Second),
		jwt.WithResetExpiration(time.Duration(jwtResetExpSecond)*time.Second),
	)

	// Initialize password hasher
	hasher := password.New(password.WithCost(bcryptCost))

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db, middlewares.GetTxFromContext)
	userWriteRepo := repositories.NewUserWriteRepository(db, middlewares.GetTxFromContext)
	userCacheRepo := repositories.NewUserCacheRepository(rdb, time.Duration(cacheExpSecond)*time.Second)

	// Initialize messaging
	emailPublisher := messaging.NewEmailPublisher(kafkaWriter)

	// Initialize services
	lockout := services.LockoutPolicy{
		MaxAttempts:     maxAttempts,
		LockoutDuration: time.Duration(lockoutSecond) * time.Second,
	}
	authService := services.NewAuthService(userReadRepo, userWriteRepo, hasher, jwtSvc, emailPublisher, lockout)
	userService := services.NewUserService(userReadRepo, userWriteRepo, userCacheRepo, hasher)

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(userService)
	loginHandler := handlers.NewLoginHandler(authService)
	forgotPasswordHandler := handlers.NewForgotPasswordHandler(authService)
	resetPasswordHandler := handlers.NewResetPasswordHandler(authService)
	getUserHandler := handlers.NewGetUserHandler(userService)
	listUsersHandler := handlers.NewListUsersHandler(userService)
	updateUserHandler := handlers.NewUpdateUserHandler(userService)
	deleteUserHandler := handlers.NewDeleteUserHandler(userService)
	changePasswordHandler := handlers.NewChangePasswordHandler(userService)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	txMiddleware := middlewares.TxMiddleware(db)
	authMiddleware := middlewares.AuthMiddleware(jwtSvc)

	// Public routes. Login runs inside a transaction: it writes the
	// failure counters even when it fails.
	r.Group(func(r chi.Router) {
		r.Use(txMiddleware)
		r.Post("/register", registerHandler)
		r.Post("/login", loginHandler)
		r.Post("/forgot-password", forgotPasswordHandler)
		r.Post("/reset-password", resetPasswordHandler)
	})

	// Protected routes with JWT middleware
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/users", listUsersHandler)
		r.Get("/users/{userID}", getUserHandler)
		r.Group(func(r chi.Router) {
			r.Use(txMiddleware)
			r.Put("/users/{userID}", updateUserHandler)
			r.Delete("/users/{userID}", deleteUserHandler)
			r.Patch("/users/{userID}/password", changePasswordHandler)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
