package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dao-governance/internal/target"
	"dao-governance/pkg/logger"

	"github.com/spf13/viper"
)

func main() {
	v := viper.New()
	v.SetDefault("addr", ":9090")
	v.SetDefault("db_path", "targetd.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetEnvPrefix("TARGETD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	log := logger.New(v.GetString("log.level"), v.GetBool("log.pretty"))

	store, err := target.Open(v.GetString("db_path"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open target store")
	}
	defer store.Close()
	log.Info().Str("db_path", v.GetString("db_path")).Msg("Target store ready")

	router := target.SetupRouter(store, log)

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Target daemon listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down target daemon...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Target daemon exited")
}
