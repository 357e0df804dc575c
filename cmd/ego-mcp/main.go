package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/cardb"
	"github.com/ghlin/ego/internal/config"
	egomcp "github.com/ghlin/ego/internal/mcp"
	"github.com/ghlin/ego/internal/ocgcore"
	"github.com/ghlin/ego/internal/strconf"
	"github.com/ghlin/ego/internal/view"
)

func main() {
	dir := flag.String("replays", ".", "directory replay paths are resolved against")
	configPath := flag.String("config", "", "path to YAML config file")
	withEngine := flag.Bool("engine", false, "load the engine so raw .yrp replays can be opened")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the MCP stream; logs go to stderr.
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	mcfg := egomcp.Config{
		Dir:  *dir,
		View: view.Options{Logger: logger, Validate: cfg.Debug},
	}
	if cards, err := cardb.Load(context.Background(), cfg.CDB); err != nil {
		logger.Warn("card database unavailable", zap.Error(err))
	} else {
		mcfg.Cards = cards
	}
	if templates, err := strconf.Load(cfg.Strings); err == nil {
		mcfg.View.Templates = templates
	}
	if *withEngine {
		scripts, err := ocgcore.LoadScripts(cfg.Scripts)
		if err != nil {
			logger.Fatal("load scripts", zap.Error(err))
		}
		engine, err := ocgcore.Open(cfg.Engine, mcfg.Cards, scripts, logger)
		if err != nil {
			logger.Fatal("load engine", zap.Error(err))
		}
		defer engine.Close()
		mcfg.Engine = engine
	}

	s := server.NewMCPServer("ego", "1.0.0")
	egomcp.NewSessions(mcfg).RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
