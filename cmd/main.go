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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/auth-api/internal/handlers"
	"github.com/sbilibin2017/auth-api/internal/jwt"
	"github.com/sbilibin2017/auth-api/internal/logger"
	"github.com/sbilibin2017/auth-api/internal/middlewares"
	"github.com/sbilibin2017/auth-api/internal/migrations"
	"github.com/sbilibin2017/auth-api/internal/repositories"
	"github.com/sbilibin2017/auth-api/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/sbilibin2017/auth-api/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title auth-api
// @version 1.0.0
// @description Minimal authentication API: registration, login, logout, token refresh, identity lookup and user listing
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
		redisHost, redisPort, redisDB, redisPassword,
		jwtSecret, jwtAccessExpSecond, jwtRefreshExpSecond,
		revokedCacheExpSecond, prunerIntervalSecond,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		jwtSecret, jwtAccessExpSecond, jwtRefreshExpSecond,
		revokedCacheExpSecond, prunerIntervalSecond,
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

// parseConfig loads environment variables from a file and returns
// all application, database, Redis, JWT, and pruning configuration.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	jwtSecretKey string, jwtAccessExpSecond, jwtRefreshExpSecond int,
	revokedCacheExpSecond, prunerIntervalSecond int,
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

	// JWT config
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if jwtAccessExpSecond, err = strconv.Atoi(getEnv("JWT_ACCESS_EXP_SECOND", "900")); err != nil {
		return
	}
	if jwtRefreshExpSecond, err = strconv.Atoi(getEnv("JWT_REFRESH_EXP_SECOND", "2592000")); err != nil {
		return
	}

	// Revocation config
	if revokedCacheExpSecond, err = strconv.Atoi(getEnv("REVOKED_CACHE_EXP_SECOND", "900")); err != nil {
		return
	}
	if prunerIntervalSecond, err = strconv.Atoi(getEnv("DENYLIST_PRUNE_INTERVAL_SECOND", "3600")); err != nil {
		return
	}

	return
}

// run initializes the logger, database, migrations, Redis, and HTTP server.
// It sets up routes, applies middleware, starts the denylist pruner, and
// handles graceful shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	jwtSecretKey string, jwtAccessExpSecond, jwtRefreshExpSecond int,
	revokedCacheExpSecond, prunerIntervalSecond int,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		pgUser, pgPassword, pgHost, pgPort, pgDB)
	logger.Log.Infof("Connecting to PostgreSQL at %s:%d/%s", pgHost, pgPort, pgDB)

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

	// Run migrations
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		logger.Log.Fatal("migrations failed:", err)
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

	// Initialize JWT service
	jwtSvc := jwt.New(
		jwt.WithSecretKey(jwtSecretKey),
		jwt.WithAccessExpiration(time.Duration(jwtAccessExpSecond)*time.Second),
		jwt.WithRefreshExpiration(time.Duration(jwtRefreshExpSecond)*time.Second),
	)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	revokedWriteRepo := repositories.NewRevokedTokenWriteRepository(db)
	revokedReadRepo := repositories.NewRevokedTokenReadRepository(db)
	revokedCacheRepo := repositories.NewRevokedTokenCacheRepository(rdb,
		time.Duration(revokedCacheExpSecond)*time.Second)

	// Initialize services
	authService := services.NewAuthService(
		userReadRepo, userWriteRepo, jwtSvc,
		revokedWriteRepo, revokedReadRepo, revokedCacheRepo,
	)
	userService := services.NewUserService(userReadRepo, userWriteRepo)

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService)
	whoamiHandler := handlers.NewWhoamiHandler(authService, jwtSvc)
	refreshHandler := handlers.NewRefreshHandler(authService, jwtSvc)
	logoutHandler := handlers.NewLogoutHandler(authService, jwtSvc)
	listUsersHandler := handlers.NewListUsersHandler(userService)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	// Public routes
	r.Post("/api/auth/register", registerHandler)
	r.Post("/api/auth/login", loginHandler)

	// Token-authenticated routes; token verification and revocation
	// checks happen inside the auth service
	r.Get("/api/auth/whoami", whoamiHandler)
	r.Get("/api/auth/refresh", refreshHandler)
	r.Get("/api/auth/logout", logoutHandler)

	// Protected routes with JWT middleware
	authMiddleware := middlewares.AuthMiddleware(jwtSvc, revokedReadRepo)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/api/users/all", listUsersHandler)
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

	// Prune denylist rows older than the refresh TTL; tokens that old
	// can no longer verify, so their rows are inert
	if prunerIntervalSecond > 0 {
		go func() {
			ticker := time.NewTicker(time.Duration(prunerIntervalSecond) * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctxShutdown.Done():
					return
				case <-ticker.C:
					cutoff := time.Now().Add(-time.Duration(jwtRefreshExpSecond) * time.Second)
					pruned, err := revokedWriteRepo.DeleteCreatedBefore(ctxShutdown, cutoff)
					if err != nil {
						logger.Log.Errorw("denylist pruning failed", "err", err)
						continue
					}
					logger.Log.Infow("denylist pruned", "rows", pruned)
				}
			}
		}()
	}

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
