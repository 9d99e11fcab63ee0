package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mioNacs/BLManagementSystem/internal/bootstrap"
	"github.com/mioNacs/BLManagementSystem/internal/routes"
	"github.com/mioNacs/BLManagementSystem/internal/server"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "internal/config/config.yaml"
	}

	appCtx, cleanup, err := bootstrap.Init(configPath)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	app := server.New(appCtx.Config, appCtx.Logger)
	routes.Setup(app, appCtx.Auth, appCtx.Events, appCtx.Guard, appCtx.Limiters)
	server.NotFoundFallback(app)

	go func() {
		listenAddr := fmt.Sprintf(":%d", appCtx.Config.App.Port)
		appCtx.Sugar.Infof("Server listening on %s", listenAddr)
		if err := app.Listen(listenAddr); err != nil {
			appCtx.Sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	appCtx.Sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		appCtx.Sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	cleanup(ctxShut)

	appCtx.Sugar.Info("Graceful shutdown complete.")
}
