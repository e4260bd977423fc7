package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/gatepass/internal/audit"
	auditdomain "github.com/smallbiznis/gatepass/internal/audit/domain"
	"github.com/smallbiznis/gatepass/internal/clock"
	"github.com/smallbiznis/gatepass/internal/config"
	"github.com/smallbiznis/gatepass/internal/event"
	eventdomain "github.com/smallbiznis/gatepass/internal/event/domain"
	"github.com/smallbiznis/gatepass/internal/inventory"
	"github.com/smallbiznis/gatepass/internal/logger"
	"github.com/smallbiznis/gatepass/internal/migration"
	"github.com/smallbiznis/gatepass/internal/observability/metrics"
	"github.com/smallbiznis/gatepass/internal/outbox"
	paymentprovider "github.com/smallbiznis/gatepass/internal/providers/payment"
	"github.com/smallbiznis/gatepass/internal/providers/pdf"
	"github.com/smallbiznis/gatepass/internal/purchase"
	purchasedomain "github.com/smallbiznis/gatepass/internal/purchase/domain"
	"github.com/smallbiznis/gatepass/internal/ratelimit"
	"github.com/smallbiznis/gatepass/internal/reporting"
	reportingdomain "github.com/smallbiznis/gatepass/internal/reporting/domain"
	"github.com/smallbiznis/gatepass/internal/transaction"
	txdomain "github.com/smallbiznis/gatepass/internal/transaction/domain"
	"github.com/smallbiznis/gatepass/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	config.Module,
	logger.Module,
	clock.Module,
	db.Module,
	migration.Module,
	metrics.Module,
	outbox.Module,
	audit.Module,
	event.Module,
	inventory.Module,
	transaction.Module,
	paymentprovider.Module,
	pdf.Module,
	purchase.Module,
	reporting.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, m *metrics.Metrics, reg *prometheus.Registry) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(accessLog(log))
	r.Use(metrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, m *metrics.Metrics, reg *prometheus.Registry) *gin.Engine {
	return NewEngine(cfg, log, m, reg)
}

func accessLog(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	eventSvc     eventdomain.Service
	purchaseSvc  purchasedomain.Service
	txSvc        txdomain.Service
	reportingSvc reportingdomain.Service
	auditSvc     auditdomain.Service
	limiter      *ratelimit.TokenBucket
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	EventSvc     eventdomain.Service
	PurchaseSvc  purchasedomain.Service
	TxSvc        txdomain.Service
	ReportingSvc reportingdomain.Service
	AuditSvc     auditdomain.Service
	Limiter      *ratelimit.TokenBucket `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		eventSvc:     p.EventSvc,
		purchaseSvc:  p.PurchaseSvc,
		txSvc:        p.TxSvc,
		reportingSvc: p.ReportingSvc,
		auditSvc:     p.AuditSvc,
		limiter:      p.Limiter,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	events := api.Group("/events")
	{
		events.POST("", s.CreateEvent)
		events.GET("/:id", s.GetEvent)
		events.PUT("/:id/pricing", s.ReplaceEventPricing)
	}

	purchases := api.Group("/purchases")
	{
		purchases.POST("", BuyerRequired(), s.PurchaseRateLimit(), s.CreatePurchase)
		// Settlement is keyed by the provider order reference alone; the
		// approval redirect does not carry the buyer header.
		purchases.POST("/complete", s.CompletePurchase)
		purchases.POST("/cancel", s.CancelPurchase)
	}

	transactions := api.Group("/transactions", BuyerRequired())
	{
		transactions.GET("/:id", s.GetTransaction)
		transactions.GET("/:id/receipt", s.GetReceipt)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/history", BuyerRequired(), s.PurchaseHistory)
		reports.GET("/summary", BuyerRequired(), s.PurchaseSummary)
		reports.GET("/events/:id/sales", s.EventSales)
	}
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.ListenAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
