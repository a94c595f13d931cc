package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexbridge/adaptersentry/internal/config"
	"github.com/nexbridge/adaptersentry/internal/runtime"
	"github.com/nexbridge/adaptersentry/pkg/logger"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the AdapterSentry monitoring service",
	Long: `Start the AdapterSentry monitoring service with the specified configuration.
This command starts all components (storage, health registry, monitor, API server)
and sweeps the configured adapters according to the monitor settings.`,
	RunE: runAdapterSentry,
}

var (
	configFile string
	logLevel   string
	logFormat  string
	logFile    string
	serverPort int
	pidFile    string
)

func init() {
	// Add run command to root
	rootCmd.AddCommand(runCmd)

	// Configuration flags
	runCmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")
	runCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&logFormat, "log-format", defaultLogFormat(), "Log format (json, text)")
	runCmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (empty logs to stdout)")
	runCmd.Flags().IntVar(&serverPort, "port", 0, "API server port override (0 keeps the configured port)")
	runCmd.Flags().StringVar(&pidFile, "pid-file", "", "PID file path")
}

func runAdapterSentry(cmd *cobra.Command, args []string) error {
	// Initialize logger
	loggerConfig := logger.DefaultConfig()
	if logLevel != "" {
		loggerConfig.Level = logLevel
	}
	if logFormat != "" {
		loggerConfig.Format = logFormat
	}
	if logFile != "" {
		loggerConfig.Output = logFile
	}

	appLogger, err := logger.NewLogger(loggerConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	startupLogger := appLogger.WithFields(logger.Fields{
		"component": "app",
		"module":    "startup",
		"operation": "run",
	})
	startupLogger.WithFields(logger.Fields{
		"config":    configFile,
		"log_level": logLevel,
	}).Info("Starting AdapterSentry")

	// Write PID file if requested
	if pidFile != "" {
		if err := writePIDFile(pidFile); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() {
			if err := os.Remove(pidFile); err != nil {
				startupLogger.WithFields(logger.Fields{
					"error":    err.Error(),
					"pid_file": pidFile,
				}).Error("Failed to remove PID file")
			}
		}()
	}

	// Load configuration
	configManager := config.NewManager(appLogger)
	if err := configManager.Load(configFile); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Credential references must resolve before any check runs
	if err := configManager.CheckPermissions(); err != nil {
		return fmt.Errorf("configuration permission check failed: %w", err)
	}

	cfg := configManager.Get()
	if cfg == nil {
		return fmt.Errorf("configuration is nil after loading")
	}

	// Override configuration with CLI flags
	overrideConfigFromFlags(cfg, startupLogger)

	// Create runtime
	factory := runtime.NewDefaultRuntimeFactory()
	rt, err := factory.CreateRuntime(cfg)
	if err != nil {
		return fmt.Errorf("failed to create runtime: %w", err)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Start the runtime in a goroutine
	runtimeErrChan := make(chan error, 1)
	go func() {
		if err := rt.Start(ctx); err != nil {
			runtimeErrChan <- fmt.Errorf("runtime start failed: %w", err)
			return
		}

		startupLogger.WithFields(logger.Fields{
			"operation":   "running",
			"server_port": cfg.Server.Port,
			"adapters":    len(cfg.Adapters),
		}).Info("AdapterSentry is running")

		// Keep running until context is cancelled
		<-ctx.Done()

		startupLogger.WithFields(logger.Fields{
			"operation": "shutdown",
		}).Info("Initiating graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := rt.Stop(shutdownCtx); err != nil {
			runtimeErrChan <- fmt.Errorf("runtime stop failed: %w", err)
		} else {
			runtimeErrChan <- nil
		}
	}()

	// Wait for signals or runtime errors
	for {
		select {
		case sig := <-sigChan:
			startupLogger.WithFields(logger.Fields{
				"signal": sig.String(),
			}).Info("Received signal")

			switch sig {
			case syscall.SIGHUP:
				// Reload configuration
				startupLogger.Info("Reloading configuration")
				if err := configManager.Reload(); err != nil {
					startupLogger.WithFields(logger.Fields{
						"error": err.Error(),
					}).Error("Failed to reload configuration")
				} else {
					startupLogger.Info("Configuration reloaded successfully")
					if err := rt.Reload(ctx); err != nil {
						startupLogger.WithFields(logger.Fields{
							"error": err.Error(),
						}).Error("Failed to reload runtime")
					}
				}
			case syscall.SIGINT, syscall.SIGTERM:
				// Graceful shutdown
				startupLogger.WithFields(logger.Fields{
					"signal": sig.String(),
				}).Info("Initiating graceful shutdown")
				cancel()

				// Wait for runtime to stop
				if err := <-runtimeErrChan; err != nil {
					startupLogger.WithFields(logger.Fields{
						"error": err.Error(),
					}).Error("Error during shutdown")
					return err
				}

				startupLogger.Info("AdapterSentry stopped successfully")
				return nil
			}

		case err := <-runtimeErrChan:
			if err != nil {
				startupLogger.WithFields(logger.Fields{
					"error": err.Error(),
				}).Error("Runtime error")
				return err
			}
			// Normal shutdown
			startupLogger.Info("AdapterSentry stopped successfully")
			return nil
		}
	}
}

func overrideConfigFromFlags(cfg *types.Config, startupLogger *logger.Entry) {
	// Override API server port if specified
	if serverPort > 0 {
		cfg.Server.Port = serverPort
		startupLogger.WithFields(logger.Fields{
			"port": serverPort,
		}).Debug("Overriding API server port from CLI flag")
	}
}

func writePIDFile(pidFile string) error {
	pid := os.Getpid()
	return os.WriteFile(pidFile, []byte(fmt.Sprintf("%d\n", pid)), 0644)
}
