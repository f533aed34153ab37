// gateway-stub serves the scripting-gateway table contract from the local
// sqlite snapshot store, for development without the production gateway.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tourdesk/internal/logger"
	"tourdesk/internal/source"
	"tourdesk/pkg/database"
	"tourdesk/pkg/models"
)

func main() {
	log := logger.New()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	store := source.NewStore(db)

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/tables/:service", func(c *gin.Context) {
		svc, ok := models.ParseService(c.Param("service"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown source"})
			return
		}
		t, err := store.Load(c.Request.Context(), svc)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot"})
			return
		}
		c.JSON(http.StatusOK, t)
	})

	// Intake forms and imports replace whole snapshots.
	router.PUT("/tables/:service", func(c *gin.Context) {
		svc, ok := models.ParseService(c.Param("service"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown source"})
			return
		}

		var t models.Table
		if err := c.ShouldBindJSON(&t); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		t.Service = svc

		if err := store.Save(c.Request.Context(), &t); err != nil {
			log.Error().Err(err).Str("service", string(svc)).Msg("save snapshot failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "saved", "rows": len(t.Rows)})
	})

	addr := os.Getenv("TOURDESK_GATEWAY_ADDR")
	if addr == "" {
		addr = ":9090"
	}

	srv := &http.Server{Addr: addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("gateway stub listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
