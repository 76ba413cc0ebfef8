// @title VitalSense Backend API
// @version 1.0
// @description VitalSense Backend API for personalized product label analysis

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	_ "VITALSENSE_BACK-END/docs" // This is required for swagger
	"VITALSENSE_BACK-END/internal/config"
	"VITALSENSE_BACK-END/internal/handlers"
	"VITALSENSE_BACK-END/internal/routes"
	"VITALSENSE_BACK-END/internal/session"
	"VITALSENSE_BACK-END/internal/store"
	"VITALSENSE_BACK-END/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		log.Fatalf("parse dsn: %v", err)
	}
	// Simple protocol is required when connecting through PgBouncer.
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "vitalsense-backend"
	poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = "30000" // 30s
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("ping: %v", err)
		}
	}

	cache, err := store.OpenCache(cfg.Cache.Path, cfg.Cache.HistoryCap)
	if err != nil {
		log.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	// Session events drive local cleanup: a sign-out drops the user's
	// cached profile and history.
	events := session.NewEvents()
	sessionCh, unsubscribe := events.Subscribe()
	defer unsubscribe()
	go func() {
		for evt := range sessionCh {
			if evt.Type == session.SignedOut {
				cache.Clear(evt.UserID)
			}
		}
	}()

	emailService := utils.NewEmailService(&cfg.Email)

	h := routes.Handlers{
		Auth:           handlers.NewAuthHandler(pool, &cfg.JWT, events),
		GoogleAuth:     handlers.NewGoogleAuthHandler(pool, cfg, events),
		ForgotPassword: handlers.NewForgotPasswordHandler(pool, emailService, &cfg.JWT),
		Profile:        handlers.NewProfileHandler(pool, cache),
		Scans:          handlers.NewScanHandler(pool, cache, cfg.Gemini),
		Health:         handlers.NewHealthHandler(pool, cache),
	}
	routes.SetupRoutes(h, &cfg.JWT)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})
	handler := c.Handler(http.DefaultServeMux)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped.")
}
