package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/railzwaylabs/phonebill/internal/bootstrap"
	"github.com/railzwaylabs/phonebill/internal/config"
	invoicedomain "github.com/railzwaylabs/phonebill/internal/invoice/domain"
	"github.com/railzwaylabs/phonebill/internal/invoice/render"
	"github.com/railzwaylabs/phonebill/internal/observability"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(RunHTTP),
)

type ServerParams struct {
	fx.In

	Config     config.Config
	Log        *zap.Logger
	Metrics    *observability.Metrics
	InvoiceSvc invoicedomain.Service
	Renderer   *render.Renderer
	DB         *gorm.DB             `optional:"true"`
	Redis      *redis.Client        `optional:"true"`
	SchemaGate bootstrap.SchemaGate `optional:"true"`

	TracerProvider trace.TracerProvider `optional:"true"`
}

type Server struct {
	cfg     config.Config
	log     *zap.Logger
	engine  *gin.Engine
	metrics *observability.Metrics

	invoiceSvc invoicedomain.Service
	renderer   *render.Renderer

	db         *gorm.DB
	redis      *redis.Client
	schemaGate bootstrap.SchemaGate

	tracerProvider trace.TracerProvider
}

func New(p ServerParams) *Server {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:        p.Config,
		log:        p.Log.Named("server"),
		metrics:    p.Metrics,
		invoiceSvc: p.InvoiceSvc,
		renderer:   p.Renderer,
		db:         p.DB,
		redis:      p.Redis,
		schemaGate: p.SchemaGate,

		tracerProvider: p.TracerProvider,
	}
	s.engine = s.newEngine()
	s.RegisterRoutes()
	return s
}

func (s *Server) newEngine() *gin.Engine {
	engine := gin.New()
	if s.cfg.Tracing.Enabled && s.tracerProvider != nil {
		engine.Use(otelgin.Middleware(s.cfg.App.Name, otelgin.WithTracerProvider(s.tracerProvider)))
	}
	engine.Use(
		RequestID(),
		Recovery(s.log),
		RequestLogger(s.log),
		RequestMetrics(s.metrics),
	)
	return engine
}

func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", s.Health)
	s.engine.GET("/ready", s.GetSystemReadiness)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Gatherer, promhttp.HandlerOpts{})))

	limited := s.engine.Group("")
	if s.cfg.HTTP.RateLimit > 0 {
		limited.Use(RateLimit(rate.Limit(s.cfg.HTTP.RateLimit), s.cfg.HTTP.RateBurst))
	}
	limited.POST("/get-invoice/", s.GetInvoice)

	api := limited.Group("/api")
	api.POST("/invoices", s.CreateInvoice)
	api.POST("/invoices/pdf", s.CreateInvoicePDF)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.cfg.App.Version})
}

// RunHTTP serves the API for the lifetime of the fx app.
func RunHTTP(lc fx.Lifecycle, s *Server) {
	httpServer := &http.Server{
		Addr:         s.cfg.HTTP.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", httpServer.Addr)
			if err != nil {
				return err
			}
			s.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
	})
}
