// Package main is the sheetserve CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/sheetserve/internal/config"
	"github.com/hyperjump/sheetserve/internal/server"
	"github.com/hyperjump/sheetserve/internal/watcher"
	"github.com/hyperjump/sheetserve/internal/workbook"
	"github.com/hyperjump/sheetserve/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/sheetserve/config.yaml"

// loadConfig loads config from path. When path is the default, it first
// looks for config.yaml in the current directory (for development); if
// that exists it is used. A .env file, if present, is loaded before the
// config so the API_KEY override applies.
func loadConfig(path string) (*config.Config, string, error) {
	_ = godotenv.Load()
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "files":
		runFiles()
	case "sheets":
		runSheets()
	case "version", "--version", "-v":
		fmt.Printf("sheetserve version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Auth.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	locator := workbook.NewLocator(cfg.Data.Directory)
	if _, err := locator.ListFiles(); err != nil {
		logger.Fatal("data directory not readable", zap.String("dir", cfg.Data.Directory), zap.Error(err))
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Data.WatchOrDefault() {
		w := watcher.New(cfg.Data.Directory, workbook.Ext, logger)
		if err := w.Start(watchCtx); err != nil {
			logger.Warn("data directory watcher not started", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	srv := server.NewServer(locator, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// runFiles lists the workbook files in the configured data directory.
func runFiles() {
	fs := flag.NewFlagSet("files", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	files, err := workbook.NewLocator(cfg.Data.Directory).ListFiles()
	if err != nil {
		fmt.Printf("Failed to list files: %v\n", err)
		os.Exit(1)
	}
	for _, f := range files {
		fmt.Println(f)
	}
}

// runSheets lists the sheets of one workbook in the data directory.
func runSheets() {
	fs := flag.NewFlagSet("sheets", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("Usage: sheetserve sheets [flags] <file>")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	sheets, err := workbook.NewLocator(cfg.Data.Directory).ListSheets(fs.Arg(0))
	if err != nil {
		fmt.Printf("Failed to list sheets: %v\n", err)
		os.Exit(1)
	}
	for _, s := range sheets {
		fmt.Println(s)
	}
}

func printUsage() {
	fmt.Println(`sheetserve - paginated spreadsheet read API

Usage:
  sheetserve server [-config path] [-debug]   Run the HTTP API server
  sheetserve files  [-config path]            List workbook files in the data directory
  sheetserve sheets [-config path] <file>     List sheets of a workbook
  sheetserve version                          Print version
  sheetserve help                             Show this help`)
}
