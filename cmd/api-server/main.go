package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tourdesk/internal/alias"
	"tourdesk/internal/auth"
	"tourdesk/internal/dashboard"
	"tourdesk/internal/httpapi"
	"tourdesk/internal/logger"
	"tourdesk/internal/reconcile"
	"tourdesk/internal/render"
	"tourdesk/internal/source"
	"tourdesk/pkg/database"
	"tourdesk/pkg/utils"
)

func main() {
	log := logger.New()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	engineCfg := utils.LoadEngineConfig()

	aliases := alias.NewResolver()
	if engineCfg.AliasConfigPath != "" {
		if err := aliases.LoadYAML(engineCfg.AliasConfigPath); err != nil {
			log.Fatal().Err(err).Msg("alias config failed")
		}
	}
	if engineCfg.AliasOverridesCSV != "" {
		if err := aliases.LoadOverridesCSV(engineCfg.AliasOverridesCSV); err != nil {
			log.Fatal().Err(err).Msg("alias overrides failed")
		}
	}

	loader, gateway, err := buildLoader(engineCfg, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("source loader failed")
	}

	var templates render.TemplateProvider = render.StaticProvider{Text: render.DefaultTemplate}
	if engineCfg.TemplatePath != "" {
		templates = render.FileProvider{Path: engineCfg.TemplatePath}
	}

	engine := reconcile.NewEngine(loader, aliases, templates, engineCfg.ReportingCurrency)

	hub := dashboard.NewHub()
	engine.SetPublisher(hub)

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/ws", dashboard.WSHandler(hub, log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "source": engineCfg.SourceKind})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if gateway != nil {
			if err := gateway.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":        "not_ready",
					"gateway_error": err.Error(),
					"ws_clients":    stats.Clients,
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"source":     engineCfg.SourceKind,
			"ws_clients": stats.Clients,
		})
	})

	// Staff auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	if err := auth.EnsureBootstrapAccount(context.Background(), authRepo,
		authCfg.BootstrapName, authCfg.BootstrapEmail, authCfg.BootstrapPassword); err != nil {
		log.Fatal().Err(err).Msg("bootstrap staff account failed")
	}
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Back office (protected)
	protected := router.Group("/api")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))
	apiHandler := httpapi.NewHandler(engine, log)
	apiHandler.RegisterRoutes(protected)

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpSrv.Addr).Msg("api server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	log.Info().Msg("server stopped")
}

// buildLoader picks the table source backend. The gateway client is also
// returned when in play so the readiness probe can ping it.
func buildLoader(cfg utils.EngineConfig, db *sql.DB, log zerolog.Logger) (source.Loader, *source.GatewayClient, error) {
	switch cfg.SourceKind {
	case "gateway":
		client := source.NewGatewayClient(cfg.GatewayURL)
		return client, client, nil
	case "sqlite":
		return source.NewStore(db), nil, nil
	case "workbook":
		if cfg.WorkbookPath == "" {
			return nil, nil, fmt.Errorf("TOURDESK_WORKBOOK is required for the workbook source")
		}
		loader, err := source.OpenWorkbook(cfg.WorkbookPath)
		if err != nil {
			return nil, nil, err
		}
		return loader, nil, nil
	case "bigquery":
		if cfg.BigQueryProject == "" || cfg.BigQueryDataset == "" {
			return nil, nil, fmt.Errorf("TOURDESK_BQ_PROJECT and TOURDESK_BQ_DATASET are required for the bigquery source")
		}
		loader, err := source.NewBigQueryLoader(context.Background(), cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dataset", cfg.BigQueryDataset).Msg("using bigquery mirror")
		return loader, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", cfg.SourceKind)
	}
}
