package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buildatscale/bas-server/internal/app"
	"github.com/buildatscale/bas-server/internal/config"
	"github.com/buildatscale/bas-server/internal/routes"
)

func main() {
	ingestOnly := flag.Bool("ingest", false, "run one ingestion and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	app, err := app.NewApplication(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to start application: ", err)
	}
	defer app.Close()

	if *ingestOnly {
		if _, err := app.Ingester.Run(ctx); err != nil {
			app.Logger.Println("Ingestion failed:", err)
			app.Close()
			os.Exit(1)
		}
		return
	}

	if cfg.IngestOnStart {
		go func() {
			if _, err := app.Ingester.Run(ctx); err != nil {
				app.Logger.Println("Startup ingestion failed:", err)
			}
		}()
	}

	r := routes.SetupRoutes(app)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.Logger.Println("Error shutting down server", err)
		}
	}()

	app.Logger.Println("Server started on port", cfg.Port)

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.Logger.Fatal("Error starting server", err)
	}
}
