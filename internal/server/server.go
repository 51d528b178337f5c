package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"sportbeacon/internal/alerts"
	"sportbeacon/internal/analytics"
	"sportbeacon/internal/auth"
	"sportbeacon/internal/badge"
	"sportbeacon/internal/config"
	"sportbeacon/internal/notify"
	"sportbeacon/internal/payment"
	"sportbeacon/internal/payout"
	"sportbeacon/internal/stats"
	"sportbeacon/internal/streak"
	"sportbeacon/internal/tip"
	"sportbeacon/internal/user"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
	hub    *alerts.Hub
}

func New(db *sqlx.DB, cfg *config.Config, notifier *notify.Service, hub *alerts.Hub) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	emitter := analytics.NewRedisEmitter(cfg.RedisAddr)
	gateway := payment.NewMidtransGateway(cfg.MidtransServerKey)

	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, cfg.JWTSecret)
	userHandler := user.NewHandler(userService)

	statsService := stats.NewService(stats.NewRepository(db), cfg.FeeRate, cfg.StatsMaxRetries)
	statsHandler := stats.NewHandler(statsService)

	tracker := streak.NewTracker(streak.NewRepository(db), cfg.StreakWindow)
	streakHandler := streak.NewHandler(tracker)

	evaluator := badge.NewEvaluator(badge.NewRepository(db), tracker, emitter, notifier)
	badgeHandler := badge.NewHandler(evaluator)

	tipService := tip.NewService(tip.ServiceDeps{
		Repo:        tip.NewRepository(db),
		Users:       userService,
		Gateway:     gateway,
		Stats:       statsService,
		Tracker:     tracker,
		Badges:      evaluator,
		Emitter:     emitter,
		Broadcaster: hub,
		Notifier:    notifier,
	}, cfg.MaxTipCents, cfg.PaymentTimeout)
	tipHandler := tip.NewHandler(tipService)

	payoutService := payout.NewService(payout.NewRepository(db), statsService, emitter, notifier, cfg.MinPayoutCents)
	payoutHandler := payout.NewHandler(payoutService)

	alertHandler := alerts.NewHandler(hub)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.POST("/tips", tipHandler.Submit)
		protected.GET("/tips/me", tipHandler.ListSent)
		protected.GET("/creators/:id/tips", tipHandler.ListReceived)
		protected.GET("/creators/:id/earnings", statsHandler.Earnings)
		protected.GET("/creators/:id/earnings/summary", statsHandler.Summary)

		protected.GET("/users/:id/streak", streakHandler.Get)
		protected.GET("/users/:id/badges", badgeHandler.ListByUser)
		protected.GET("/badges/me", badgeHandler.ListMine)
		protected.GET("/badges/catalog", badgeHandler.Catalog)

		protected.GET("/ws/alerts", alertHandler.ServeWS)
	}

	creator := router.Group("/payouts")
	creator.Use(authMiddleware, auth.RequireRole(auth.RoleCreator))
	{
		creator.POST("", payoutHandler.Request)
		creator.GET("/history", payoutHandler.List)
		creator.GET("/settings", payoutHandler.GetSettings)
		creator.PUT("/settings", payoutHandler.UpdateSettings)
		creator.GET("/:id", payoutHandler.Get)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/tips/:id/refund", tipHandler.Refund)
		admin.POST("/payouts/:id/complete", payoutHandler.Complete)
		admin.POST("/payouts/:id/fail", payoutHandler.Fail)
	}

	router.GET("/health", Health(db))
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		hub:    hub,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Idempotency-Key, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
