package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/shortly/pkg/app"
	"github.com/wadjakorntonsri/shortly/pkg/config"
	"github.com/wadjakorntonsri/shortly/pkg/logger"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	log, _ := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Note: On Vercel the filesystem is ephemeral; use STORE_DRIVER=sqlite with a Turso DATABASE_URL, or redis
	application, err := app.New(context.Background(), cfg, log)
	if err != nil {
		panic(err)
	}
	mux = application.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
