package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asc2563/regression-thing/internal/infrastructure/config"
	"github.com/asc2563/regression-thing/internal/infrastructure/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse flags
	host := flag.String("host", "", "Bind address (overrides HOST)")
	port := flag.String("port", "", "Server port (overrides PORT)")
	shell := flag.String("shell", "", "Shell program (overrides SHELL_PROGRAM)")
	usePTY := flag.Bool("pty", false, "Run the shell under a pseudo-terminal")
	dev := flag.Bool("dev", false, "Development mode (colored logs, debug level)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *shell != "" {
		cfg.Shell.Program = *shell
	}
	if *usePTY {
		cfg.Shell.UsePTY = true
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
