package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravadigital/rankengine-api/internal/config"
	"github.com/gravadigital/rankengine-api/internal/logger"
	"github.com/gravadigital/rankengine-api/internal/server"
	"github.com/gravadigital/rankengine-api/internal/storage/postgres"
)

func main() {
	// Inicializar logger
	logger.Init()
	l := logger.Get()

	// Cargar configuración
	cfg := config.Load()

	// Inicializar base de datos
	db, err := postgres.Connect(cfg)
	if err != nil {
		l.Fatal("Failed to connect to database", "error", err)
	}

	if err := postgres.AutoMigrate(db); err != nil {
		l.Fatal("Failed to run migrations", "error", err)
	}

	// Crear servidor
	srv := server.New(cfg, db)

	// Configurar graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor en goroutine
	go func() {
		if err := srv.Start(); err != nil {
			l.Error("Server failed to start", "error", err)
		}
	}()

	l.Info("Server started successfully", "port", cfg.Server.Port)

	// Esperar señal de terminación
	<-done
	l.Info("Server is shutting down...")

	// Graceful shutdown con timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		l.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Cerrar conexión de base de datos
	if err := postgres.Close(); err != nil {
		l.Error("Error closing database connection", "error", err)
	}

	l.Info("Server exited properly")
}
