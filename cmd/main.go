package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"cryptodash/config"
	"cryptodash/internal/dashboard"
	"cryptodash/internal/database"
	"cryptodash/internal/provider"
	"cryptodash/internal/server"
)

func init() {
	config.InitConfig()
	setupLogging()
}

func main() {
	db, err := database.Open(config.GetString("db_path"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metrics := dashboard.NewMetrics(prometheus.DefaultRegisterer)
	metrics.Restore(db)

	store := dashboard.New(dashboard.Options{
		Source:         buildSource(),
		Persist:        db,
		Metrics:        metrics,
		PollInterval:   config.GetDuration("poll_interval"),
		SearchDebounce: config.GetDuration("search_debounce"),
		PerPage:        config.GetInt("page_size"),
	})
	store.Start()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		store.Stop()
		metrics.Save(db)
		db.Close()
		log.Println("Metrics saved, shutting down...")
		os.Exit(0)
	}()

	api := server.NewServer(store)
	addr := config.GetString("listen_addr")
	log.Infof("Dashboard core listening on %s", addr)
	if err := http.ListenAndServe(addr, api.Handler()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func buildSource() provider.Source {
	switch config.GetString("provider") {
	case "coinpaprika":
		return provider.NewCoinPaprika(config.GetString("coinpaprika_api_key"))
	default:
		return provider.NewCoinGecko(config.GetString("coingecko_base_url"))
	}
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting cryptodash core...")
}
