package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lipo541/paragliding-web-sub003/api"
	"github.com/lipo541/paragliding-web-sub003/config"
	"github.com/lipo541/paragliding-web-sub003/internal/middleware"
	"github.com/lipo541/paragliding-web-sub003/internal/service/catalog"
	"github.com/lipo541/paragliding-web-sub003/internal/service/session"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, catalogSvc catalog.CatalogUseCase, engine session.EngineUseCase) error {
	router := newRouter(cfg, catalogSvc, engine)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, catalogSvc catalog.CatalogUseCase, engine session.EngineUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))
	router.Use(middleware.OptionalAuth(cfg.Auth.JWTSecret))

	v1 := router.Group("/api/v1")
	api.NewCatalogHandler(catalogSvc).Register(v1.Group("/catalog"))
	api.NewSessionHandler(engine).Register(v1.Group("/sessions"))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/booking.swagger.json"),
		)))
	}

	return router
}
