package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"todoTracker/internal/auth"
	"todoTracker/internal/config"
	"todoTracker/internal/handlers"
	"todoTracker/internal/logger"
	"todoTracker/internal/middleware"
	"todoTracker/internal/migrations"
	"todoTracker/internal/ordering"
	pg "todoTracker/internal/repository/postgres"
	sessionmem "todoTracker/internal/repository/session/inmemory"
	sessionredis "todoTracker/internal/repository/session/redis"
	taskmem "todoTracker/internal/repository/task/inmemory"
	taskpg "todoTracker/internal/repository/task/postgres"
	usermem "todoTracker/internal/repository/user/inmemory"
	userpg "todoTracker/internal/repository/user/postgres"
	"todoTracker/internal/service"
	"todoTracker/internal/worker"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type sessionStore interface {
	auth.SessionStore
	HealthCheck(ctx context.Context) error
}

type App struct {
	config  *config.Config
	server  *http.Server
	router  *chi.Mux
	handler http.Handler

	taskRepo    service.TaskRepository
	userRepo    service.UserRepository
	sessions    sessionStore
	taskService *service.TaskService
	authService *service.AuthService
	resolver    *auth.Resolver
	limiter     *middleware.RateLimiter
	janitor     *worker.Janitor

	shutdowns []func() // функции для graceful shutdown, выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.Level); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.initStorage(ctx); err != nil {
		return err
	}
	if err := a.initSessions(ctx); err != nil {
		return err
	}

	hasher := auth.NewPasswordHasher(a.config.Auth.BcryptCost)
	verifier := auth.NewVerifier(a.userRepo, hasher)
	a.resolver = auth.NewResolver(a.sessions, a.userRepo, verifier, a.config.Auth.SessionCookie, a.config.Auth.FallbackHeaders)

	a.authService = service.NewAuthService(a.userRepo, a.sessions, verifier, hasher, a.config.Auth.SessionTTL)
	if err := a.authService.SeedUsers(ctx, a.config.Auth.SeedUsers); err != nil {
		return fmt.Errorf("создание пользователей из конфига: %w", err)
	}

	a.taskService = service.NewTaskService(a.taskRepo,
		service.WithOwnership(a.config.OwnershipEnforced()),
		service.WithOrdering(ordering.New(a.config.Location(), nil)),
	)

	a.limiter = middleware.NewRateLimiter(a.config.RateLimit.RequestsPerMinute, nil)

	janitorOptions := []worker.JanitorOption{worker.WithTarget("rate_limit", a.limiter)}
	if purger, ok := a.sessions.(worker.Purger); ok {
		janitorOptions = append(janitorOptions, worker.WithTarget("sessions", purger))
	}
	a.janitor = worker.NewJanitor(a.config.Sessions.SweepInterval, janitorOptions...)

	a.initRoutes()

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("App: Инициализация завершена",
		zap.String("repository", a.config.Repository.Type),
		zap.String("sessions", a.config.Sessions.Type),
		zap.Bool("ownership_enforced", a.config.OwnershipEnforced()),
		zap.String("base_path", a.config.Server.BasePath))
	return nil
}

func (a *App) initStorage(ctx context.Context) error {
	switch a.config.Repository.Type {
	case "postgres":
		if a.config.Database.Migrate {
			if err := migrations.Up(a.config.Database.URL); err != nil {
				return fmt.Errorf("миграции: %w", err)
			}
		}

		pool, err := pg.Connect(ctx, pg.PoolConfig{
			URL:         a.config.Database.URL,
			MaxConns:    a.config.Database.MaxConnections,
			MinConns:    a.config.Database.MinConnections,
			MaxIdleTime: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("подключение к postgres: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Закрытие пула соединений PostgreSQL...")
			pool.Close()
		})

		a.taskRepo = taskpg.New(pool)
		a.userRepo = userpg.NewUserStorage(pool)
	default:
		a.taskRepo = taskmem.NewTaskStorage()
		a.userRepo = usermem.NewUserStorage()
	}
	return nil
}

func (a *App) initSessions(ctx context.Context) error {
	if a.config.Sessions.Type != "redis" {
		a.sessions = sessionmem.NewSessionStore(nil)
		return nil
	}

	client := goredis.NewClient(redisOptions(a.config.Sessions))
	store := sessionredis.NewSessionStore(client, a.config.Sessions.KeyPrefix)
	if err := store.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return fmt.Errorf("подключение к redis: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие соединения с Redis...")
		if err := client.Close(); err != nil {
			logger.Warn("Ошибка закрытия Redis", zap.Error(err))
		}
	})

	a.sessions = store
	return nil
}

// redisOptions принимает и redis:// URL, и голый host:port
func redisOptions(cfg config.SessionsConfig) *goredis.Options {
	if strings.HasPrefix(cfg.RedisAddr, "redis://") || strings.HasPrefix(cfg.RedisAddr, "rediss://") {
		if opts, err := goredis.ParseURL(cfg.RedisAddr); err == nil {
			if cfg.RedisPassword != "" {
				opts.Password = cfg.RedisPassword
			}
			return opts
		}
		logger.Warn("Не удалось разобрать sessions.redis_addr как URL, используем как адрес")
	}
	return &goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

func (a *App) initRoutes() {
	taskHandler := handlers.NewTaskHandler(a.taskService)
	authHandler := handlers.NewAuthHandler(a.authService,
		handlers.CookieConfig{Name: a.config.Auth.SessionCookie, Secure: a.config.Auth.SecureCookie},
		a.config.Server.BasePath+"/tasks",
		a.config.OwnershipEnforced(),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(a.config.CORS, a.config.Auth.FallbackHeaders))
	r.Use(a.limiter.Handler)
	r.Use(auth.Middleware(a.resolver))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Route(a.config.Server.BasePath, func(r chi.Router) {
		r.Get("/tasks", taskHandler.ListTasks)                 // GET /tasks
		r.Post("/tasks", taskHandler.CreateTask)               // POST /tasks
		r.Put("/tasks/{id:[0-9]+}", taskHandler.UpdateTask)    // PUT /tasks/{id}
		r.Delete("/tasks/{id:[0-9]+}", taskHandler.DeleteTask) // DELETE /tasks/{id}

		r.Get("/auth-test", authHandler.AuthTest)
		r.Get("/current-user", authHandler.CurrentUser)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	r.Get("/health", taskHandler.HealthCheck)

	a.router = r
	a.handler = otelhttp.NewHandler(r, "todoTracker")
}

// Handler готовый http.Handler со всеми middleware; нужен тестам
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run блокируется до отмены контекста или падения сервера
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.janitor.Start(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка сервера: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
