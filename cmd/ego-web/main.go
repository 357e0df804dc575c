package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/cardb"
	"github.com/ghlin/ego/internal/config"
	"github.com/ghlin/ego/internal/strconf"
	"github.com/ghlin/ego/internal/view"
	"github.com/ghlin/ego/internal/web"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port to listen on")
	dir := flag.String("replays", ".", "directory of laminated replays")
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts := view.Options{Logger: logger, Validate: cfg.Debug}
	if cards, err := cardb.Load(context.Background(), cfg.CDB); err != nil {
		logger.Warn("card database unavailable, using cards attached to replays", zap.Error(err))
	} else {
		opts.Catalog = cards
	}
	if templates, err := strconf.Load(cfg.Strings); err != nil {
		logger.Warn("strings.conf unavailable", zap.Error(err))
	} else {
		opts.Templates = templates
	}

	srv, err := web.NewServer(*dir, opts)
	if err != nil {
		logger.Fatal("create server", zap.Error(err))
	}

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("replay viewer listening", zap.String("url", fmt.Sprintf("http://localhost:%d", *port)), zap.String("replays", *dir))
	if err := srv.ListenAndServe(addr); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
