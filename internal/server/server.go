package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cafe-orders/internal/config"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/usecase"
)

type Catalog interface {
	ResolveProduct(ctx context.Context, id string) (domain.Product, error)
	ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
}

type ActivityLister interface {
	ListActivity(ctx context.Context, n int) ([]domain.ActivityEntry, error)
}

type TableLister interface {
	Names() []string
}

type Deps struct {
	Orders   *usecase.OrderService
	Auth     *usecase.AuthService
	Catalog  Catalog
	Activity ActivityLister
	Tables   TableLister
	Log      *slog.Logger
}

type Server struct {
	cfg      config.Config
	orders   *usecase.OrderService
	auth     *usecase.AuthService
	catalog  Catalog
	activity ActivityLister
	tables   TableLister
	log      *slog.Logger
	engine   *gin.Engine
}

func New(cfg config.Config, deps Deps) *Server {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		orders:   deps.Orders,
		auth:     deps.Auth,
		catalog:  deps.Catalog,
		activity: deps.Activity,
		tables:   deps.Tables,
		log:      log,
		engine:   gin.New(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	r := s.engine
	r.Use(gin.Recovery(), s.requestID(), s.requestLogger(), s.cors())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/login", s.handleLogin)

	authed := api.Group("", s.requireSession())
	authed.GET("/orders", s.handleListOrders)
	authed.POST("/orders", s.handleCreateOrder)
	authed.GET("/orders/:id", s.handleGetOrder)
	authed.PATCH("/orders/:id/status", s.handleUpdateStatus)
	authed.GET("/products", s.handleListProducts)
	authed.GET("/products/:id", s.handleGetProduct)
	authed.GET("/tables", s.handleTables)
	authed.GET("/activity", s.handleActivity)
}

// Run serves until ctx is cancelled and then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr, "store", s.cfg.Store)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
