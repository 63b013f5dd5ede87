package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillverify_backend/internal/config"
	"skillverify_backend/internal/controller"
	"skillverify_backend/internal/repository"
	"skillverify_backend/internal/sandbox"
	"skillverify_backend/internal/service"
	"skillverify_backend/internal/session"
	"skillverify_backend/pkg/database"
	"skillverify_backend/pkg/logger"
	"skillverify_backend/pkg/monitoring"
	"skillverify_backend/pkg/security"
	"skillverify_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services

	stopBackground context.CancelFunc
}

type repositories struct {
	user       *repository.UserRepository
	credential *repository.CredentialRepository
	assessment *repository.AssessmentRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	content    *service.ContentService
	credential *service.CredentialService
	assessment *service.AssessmentService
	sessions   session.Store
}

type controllers struct {
	auth       *controller.AuthController
	assessment *controller.AssessmentController
	credential *controller.CredentialController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		credential: repository.NewCredentialRepository(db),
		assessment: repository.NewAssessmentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client, bg context.Context) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.content = service.NewContentService(cfg.Generator, cfg.Assessment.QuestionCount)
	s.credential = service.NewCredentialService(repos.credential, repos.user, s.storage)

	// Redis carries sessions when available; otherwise an in-process
	// store with a background reaper covers single-node deployments.
	if rdb != nil {
		s.sessions = session.NewRedisStore(rdb, cfg.SessionTTL())
	} else {
		memStore := session.NewMemoryStore(cfg.SessionTTL())
		s.sessions = memStore
		session.NewReaper(memStore, time.Minute).Start(bg)
	}

	runner := sandbox.NewRunner(cfg.SandboxCaseTimeout())
	s.assessment = service.NewAssessmentService(s.sessions, s.content, runner, repos.assessment, s.credential)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		assessment: controller.NewAssessmentController(s.assessment),
		credential: controller.NewCredentialController(s.credential),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 300
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// ApplyConfig is invoked by the config watcher; only settings that are
// safe to swap at runtime are applied.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.services.content.UpdateGenerator(cfg.Generator)
	logger.Log.Info("configuration reloaded", zap.String("generator_model", cfg.Generator.Model))
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, sessions fall back to the in-process store", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	bg, cancel := context.WithCancel(context.Background())
	app.stopBackground = cancel

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb, bg)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("skillverify", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.stopBackground != nil {
		a.stopBackground()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
