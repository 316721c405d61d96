package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/srsports/backend/internal/cache"
	"github.com/srsports/backend/internal/config"
	"github.com/srsports/backend/internal/handler"
	"github.com/srsports/backend/internal/logging"
	"github.com/srsports/backend/internal/metrics"
	"github.com/srsports/backend/internal/migration"
	"github.com/srsports/backend/internal/repository"
	"github.com/srsports/backend/internal/service"
	"github.com/srsports/backend/internal/web"
	"github.com/srsports/backend/pkg/auth"
	"github.com/srsports/backend/pkg/supabase"
)

func main() {
	cfg, err := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	defer logging.Sync()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()

	// Supabase クライアント（GoTrue + PostgREST）。送信ログは logrus で出す
	sbLog := logging.NewLogrus(cfg.LogLevel, cfg.LogFormat)
	sb := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey).WithLogger(sbLog)

	var (
		db          repository.DB
		contactRepo repository.ContactRepository
		sessionRepo repository.BreakingSessionRepository
	)
	switch cfg.DataBackend {
	case config.BackendPostgres:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logging.Fatal("failed to connect to database", "error", err)
		}
		defer pool.Close()

		if cfg.AutoMigrate {
			if err := migration.Up(pool); err != nil {
				logging.Fatal("migration failed", "error", err)
			}
			logging.Info("migrations applied")
		}
		db = pool
		contactRepo = repository.NewPgContactRepository(pool)
		sessionRepo = repository.NewPgBreakingSessionRepository(pool)
	default:
		if cfg.SupabaseServiceKey == "" {
			logging.Warn("SUPABASE_SERVICE_ROLE_KEY is not set, admin contact list will be empty")
		}
		db = sb
		contactRepo = repository.NewRestContactRepository(sb)
		sessionRepo = repository.NewRestBreakingSessionRepository(sb)
	}

	m := metrics.New()

	// Redis が無ければダッシュボードのキャッシュは無効
	var summaryCache service.SummaryCache = cache.Noop{}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logging.Warn("redis unavailable, dashboard cache disabled", "error", err)
		} else {
			defer rdb.Close()
			summaryCache = cache.NewRedis(rdb, cfg.DashboardCacheTTL)
		}
	}

	authService := service.NewAuthService(sb)
	contactService := service.NewContactService(contactRepo)
	sessionService := service.NewBreakingSessionService(sessionRepo, summaryCache)
	dashboardService := service.NewDashboardService(sessionRepo, summaryCache, m)

	var authn auth.Authenticator
	if cfg.SupabaseJWTSecret != "" {
		authn = auth.NewJWTAuthenticator(cfg.SupabaseJWTSecret)
	} else {
		authn = auth.NewRemoteAuthenticator(sb)
	}
	authMW := auth.NewMiddleware(authn, auth.Options{
		Admins:        auth.ParseAdminList(cfg.AdminEmails),
		Refresh:       handler.RefreshFunc(authService),
		SecureCookies: cfg.CookieSecure,
	})

	pages, err := web.NewRenderer()
	if err != nil {
		logging.Fatal("failed to parse templates", "error", err)
	}

	authCfg := handler.AuthConfig{SecureCookies: cfg.CookieSecure}
	h := handler.New(db, cfg.FrontendURL)
	authHandler := handler.NewAuthHandler(authService, authCfg, m)
	meHandler := handler.NewMeHandler()
	contactHandler := handler.NewContactHandler(contactService, m)
	sessionHandler := handler.NewSessionHandler(sessionService, m)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	pageHandler := handler.NewPageHandler(pages, handler.PageServices{
		Contacts:  contactService,
		Sessions:  sessionService,
		Dashboard: dashboardService,
		Auth:      authService,
	}, authCfg, m)

	// 認証必要エンドポイント
	wrapAuth := func(next http.HandlerFunc) http.Handler {
		if cfg.AuthRequired {
			return authMW.RequireAuth(next)
		}
		return auth.DevAuth(next)
	}
	wrapPage := func(next http.HandlerFunc) http.Handler {
		if cfg.AuthRequired {
			return authMW.RequirePage(next)
		}
		return auth.DevAuth(next)
	}
	optional := func(next http.HandlerFunc) http.Handler {
		if cfg.AuthRequired {
			return authMW.Optional(next)
		}
		return auth.DevAuth(next)
	}

	// 書き込み系の公開エンドポイントにレート制限
	limiter := handler.NewRateLimiter(cfg.RateLimitPerMinute, cfg.TrustedProxyCount)
	defer limiter.Close()
	limited := func(next http.Handler) http.Handler {
		return limiter.Middleware(next)
	}

	mux := http.NewServeMux()

	// JSON API
	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("POST /api/auth/signin", limited(http.HandlerFunc(authHandler.SignIn)))
	mux.Handle("POST /api/auth/signup", limited(http.HandlerFunc(authHandler.SignUp)))
	mux.HandleFunc("POST /api/auth/signout", authHandler.SignOut)
	mux.Handle("POST /api/contact", limited(http.HandlerFunc(contactHandler.Submit)))
	mux.Handle("GET /api/me", wrapAuth(meHandler.Me))
	mux.Handle("GET /api/me/dashboard", wrapAuth(dashboardHandler.Summary))
	mux.Handle("GET /api/me/sessions", wrapAuth(sessionHandler.List))
	mux.Handle("POST /api/me/sessions", wrapAuth(sessionHandler.Create))
	mux.Handle("GET /api/me/sessions/{id}", wrapAuth(sessionHandler.Get))
	mux.Handle("PATCH /api/me/sessions/{id}", wrapAuth(sessionHandler.Update))
	mux.Handle("DELETE /api/me/sessions/{id}", wrapAuth(sessionHandler.Delete))

	// Admin routes (handler enforces IsAdminFromContext)
	mux.Handle("GET /api/admin/contacts", wrapAuth(contactHandler.AdminList))

	// Pages
	mux.Handle("GET /static/", web.Static())
	mux.Handle("GET /{$}", optional(pageHandler.Home))
	mux.Handle("GET /about", optional(pageHandler.About))
	mux.Handle("GET /product", optional(pageHandler.Product))
	mux.Handle("GET /contact", optional(pageHandler.ContactPage))
	mux.Handle("POST /contact", limited(optional(pageHandler.ContactSubmit)))
	mux.Handle("GET /session", wrapPage(pageHandler.SessionPage))
	mux.Handle("POST /session", wrapPage(pageHandler.SessionCreate))
	mux.Handle("GET /session/{id}/edit", wrapPage(pageHandler.SessionEditPage))
	mux.Handle("POST /session/{id}/edit", wrapPage(pageHandler.SessionEdit))
	mux.Handle("POST /session/{id}/delete", wrapPage(pageHandler.SessionDelete))
	mux.Handle("GET /auth", optional(pageHandler.AuthPage))
	mux.Handle("POST /auth", limited(http.HandlerFunc(pageHandler.AuthSubmit)))
	mux.HandleFunc("POST /auth/signout", pageHandler.SignOut)
	mux.HandleFunc("POST /theme", pageHandler.Theme)
	mux.Handle("GET /", optional(pageHandler.NotFound))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.RequestID(handler.RequestLogger(handler.SecurityHeaders(h.CORS(handler.Instrument(m, mux))))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logging.Info("server listening",
			"addr", server.Addr,
			"env", cfg.Environment,
			"backend", cfg.DataBackend,
			"auth_required", cfg.AuthRequired,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("shutdown error", "error", err)
	}
	logging.Info("server stopped")
}
