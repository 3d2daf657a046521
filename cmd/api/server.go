package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"karwan-auliya/internal/realtime"
	"karwan-auliya/pkg/container"
	"karwan-auliya/pkg/logger"
)

// tables kept subscribed for the server's lifetime so writes made by other
// instances invalidate this instance's cache too
var coherenceTables = []string{"books", "reviews", "categories"}

func Serve() {
	// ========================================
	// 1. BUILD DI CONTAINER
	// ========================================
	appContainer, err := container.NewContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize container")
	}
	defer appContainer.Cleanup()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ========================================
	// 2. REALTIME CACHE COHERENCE
	// ========================================
	subs := subscribeCoherence(ctx, appContainer.Hub)
	defer func() {
		for _, sub := range subs {
			_ = sub.Close()
		}
	}()

	// ========================================
	// 3. OFFLINE SHELL
	// ========================================
	if appContainer.Shell != nil {
		go appContainer.Shell.Start(ctx)
	}

	// ========================================
	// 4. SETUP ROUTER AND HTTP SERVER
	// ========================================
	router := SetupRouter(appContainer)

	port := appContainer.Config.App.Port
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// uploads of large book files and SSE streams outlive a short write timeout
		ReadTimeout:    5 * time.Minute,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("🚀 Server starting", map[string]interface{}{"port": port, "shell": appContainer.Shell != nil})
		log.Info().Msgf("💚 Health Check: http://localhost:%s/api/v1/health", port)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("❌ Failed to start server")
		}
	}()

	// ========================================
	// 5. GRACEFUL SHUTDOWN
	// ========================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 Shutting down server...")
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("⚠️  Server forced to shutdown", err)
	}

	log.Info().Msg("✅ Server exited gracefully")
}

func subscribeCoherence(ctx context.Context, hub *realtime.Hub) []*realtime.Subscription {
	subs := make([]*realtime.Subscription, 0, len(coherenceTables))
	for _, table := range coherenceTables {
		sub, err := hub.Subscribe(ctx, realtime.Options{Table: table})
		if err != nil {
			// the instance still works; its cache just relies on TTLs
			log.Error().Err(err).Str("table", table).Msg("❌ Realtime subscription failed")
			continue
		}
		subs = append(subs, sub)
	}
	return subs
}
