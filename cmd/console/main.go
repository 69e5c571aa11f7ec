package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backoffice.app/internal/apiclient"
	"backoffice.app/internal/config"
	"backoffice.app/internal/console"
	"backoffice.app/internal/obs"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	// no cookie jar: backend cookies must never leak between operators
	api, err := apiclient.New(cfg.APIURL, nil,
		apiclient.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		apiclient.WithUserAgent("backoffice-console/"+version),
	)
	if err != nil {
		log.Fatalf("api client: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           console.New(cfg, api, console.WithVersion(version)).Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting backoffice-console %s on %s (backend %s)", version, srv.Addr, cfg.APIURL)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
