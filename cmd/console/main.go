package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/novelterm/aetheria/internal/config"
	"github.com/novelterm/aetheria/internal/engine"
	"github.com/novelterm/aetheria/internal/logger"
	"github.com/novelterm/aetheria/internal/services"
	"github.com/novelterm/aetheria/internal/storage"
	"github.com/novelterm/aetheria/pkg/state"
	"github.com/novelterm/aetheria/pkg/textfilter"
)

const logFileName = "aetheria.log"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Structured logs go to a file; stdout belongs to the TUI.
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close() // Ignore error in defer
	}()
	log := logger.Setup(cfg, logFile)

	ctx := context.Background()

	store := storage.NewRedisStorage(cfg.RedisURL, log)
	waitCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	err = store.WaitForConnection(waitCtx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not connect to Redis at %s.\nTry: docker-compose up -d\n", cfg.RedisURL)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close() // Ignore error in defer
	}()

	svc, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.ModelName, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize model backend: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = svc.Close() // Ignore error in defer
	}()

	session, err := store.LoadSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load saved session: %v\n", err)
		os.Exit(1)
	}
	resumed := session != nil
	if session == nil {
		session = state.NewSession()
	}

	gateway := engine.NewGateway(svc, log).
		WithRetry(cfg.RetryMax, cfg.RetryDelay).
		WithMaxToolRounds(cfg.MaxToolRounds)

	orch := engine.NewOrchestrator(gateway, store, session, log).
		WithCooldown(cfg.SimCooldown)
	if cfg.ContentRating == config.RatingFamily {
		orch = orch.WithFilter(textfilter.New())
	}

	p := tea.NewProgram(NewConsoleUI(orch, resumed),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
