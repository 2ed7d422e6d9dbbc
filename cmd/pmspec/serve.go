package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pmspec/pmspec/internal/config"
	"github.com/pmspec/pmspec/internal/dashboard"
	"github.com/pmspec/pmspec/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Watch the data directory and serve live updates over WebSocket",
	Long: `Run the sync daemon: watch the data directory for markdown edits,
debounce rapid saves per file, and broadcast entity changes to WebSocket
clients.

Clients connect to ws://localhost:<port>/ws and receive every change by
default; they can narrow to specific channels:

  {"action": "subscribe", "channel": "features"}
  {"action": "unsubscribe", "channel": "all"}

Channels: epics, features, milestones, all (implicit).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dirFlag, _ := cmd.Flags().GetString("dir")
		dir, err := cfg.ResolveDataDir(dirFlag)
		if err != nil {
			return err
		}

		port := cfg.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		logger := log.New(os.Stderr, "[serve] ", log.LstdFlags)
		if cfg.LogFile != "" {
			logger.SetOutput(&lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     14, // days
				Compress:   true,
			})
		}

		server := dashboard.NewServer(&dashboard.Config{Port: port, Logger: logger})
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start dashboard: %w", err)
		}

		w, err := watcher.New(dir, dashboard.NewHandler(server), &watcher.Config{
			Debounce: time.Duration(cfg.DebounceMS) * time.Millisecond,
			Logger:   logger,
		})
		if err != nil {
			_ = server.Stop()
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := w.Start(); err != nil {
			_ = server.Stop()
			return fmt.Errorf("failed to start watcher: %w", err)
		}

		fmt.Printf("Watching %s\n", dir)
		fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
		fmt.Printf("Health check: http://localhost:%d/health\n", port)
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		fmt.Println("\nShutting down...")
		if err := w.Stop(); err != nil {
			logger.Printf("Watcher stop error: %v", err)
		}
		if err := server.Stop(); err != nil {
			return fmt.Errorf("error during shutdown: %w", err)
		}
		fmt.Println("Stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
