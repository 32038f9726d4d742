// Package server wires the activity handlers into a gin engine.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	listactivities "mergington-activities/internal/handlers/activities/list-activities"
	signupactivity "mergington-activities/internal/handlers/activities/signup-activity"
	unregisteractivity "mergington-activities/internal/handlers/activities/unregister-activity"
	"mergington-activities/internal/notify"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const IndexPath = "/static/index.html"

// Registry is everything the activity routes need from the registry.
type Registry interface {
	listactivities.Registry
	signupactivity.Registry
	unregisteractivity.Registry
}

// Pinger is a backend checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Registry      Registry
	Notifier      notify.Notifier
	Logger        logger.Logger
	Observability *observability.Observability
	Readiness     map[string]Pinger
}

type Server struct {
	config     config.ServerConfig
	router     *gin.Engine
	httpServer *http.Server
	readiness  map[string]Pinger
	logger     logger.Logger
	startTime  time.Time
}

func New(cfg *config.Config, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	if deps.Observability == nil {
		deps.Observability = observability.Disabled()
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		deps.Logger.Warn("invalid trusted proxies, trusting none", map[string]interface{}{
			"trustedProxies": cfg.Server.TrustedProxies,
			"error":          err,
		})
		_ = router.SetTrustedProxies(nil)
	}

	secureConfig := secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
	}
	if cfg.Server.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}

	router.Use(
		gin.Recovery(),
		RequestID(),
		AccessLog(deps.Logger),
		Metrics(),
		Tracing(deps.Observability),
		secure.New(secureConfig),
	)

	s := &Server{
		config:    cfg.Server,
		router:    router,
		readiness: deps.Readiness,
		logger:    deps.Logger,
		startTime: time.Now(),
	}
	s.setupRoutes(cfg, deps)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	return s
}

func (s *Server) setupRoutes(cfg *config.Config, deps Dependencies) {
	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, IndexPath)
	})
	static := staticFiles(cfg.Server.StaticDir)
	s.router.GET("/static/*"+staticParam, static)
	s.router.HEAD("/static/*"+staticParam, static)

	list := listactivities.NewHandler(deps.Registry, deps.Logger)
	signup := signupactivity.NewHandler(deps.Registry, deps.Notifier, deps.Logger)
	unregister := unregisteractivity.NewHandler(deps.Registry, deps.Notifier, deps.Logger)

	s.router.Handle(listactivities.Method, listactivities.Route, list.Handle)
	s.router.Handle(signupactivity.Method, signupactivity.Route, signup.Handle)
	s.router.Handle(unregisteractivity.Method, unregisteractivity.Route, unregister.Handle)

	s.router.GET("/health", s.health)
	s.router.GET("/ready", s.ready)
	s.router.GET(cfg.Observability.MetricsPath, gin.WrapH(promhttp.Handler()))
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run blocks serving HTTP until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.readiness))
	status := http.StatusOK
	for name, p := range s.readiness {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := gin.H{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
		"checks": checks,
	}
	if status != http.StatusOK {
		body["status"] = "not ready"
	}
	c.JSON(status, body)
}
