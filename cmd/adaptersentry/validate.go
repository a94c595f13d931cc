package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexbridge/adaptersentry/internal/config"
	"github.com/nexbridge/adaptersentry/pkg/logger"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate AdapterSentry configuration file",
	Long: `Validate the syntax and content of an AdapterSentry configuration file.

This command checks:
- YAML syntax validation
- Required fields presence
- Field value validation
- Protocol-specific adapter configuration
- Environment variable resolution for credential references`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var (
	validateEnvironment bool
	validateFormat      string
)

func init() {
	validateCmd.Flags().BoolVar(&validateEnvironment, "check-env", false, "Validate credential environment variables")
	validateCmd.Flags().StringVar(&validateFormat, "format", "text", "Output format (text, json)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	// Determine config file
	configFile := "./config.yaml"
	if len(args) > 0 {
		configFile = args[0]
	}
	if globalConfigFile != "" {
		configFile = globalConfigFile
	}

	appLogger := logger.GetDefaultLogger()

	appLogger.WithFields(logger.Fields{
		"config_file":       configFile,
		"check_environment": validateEnvironment,
		"format":            validateFormat,
	}).Info("Starting configuration validation")

	// Check if file exists
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return fmt.Errorf("configuration file does not exist: %s", configFile)
	}

	// Load and validate configuration
	configManager := config.NewManager(appLogger)
	err := configManager.Load(configFile)
	if err != nil {
		if validateFormat == "json" {
			return printValidationResultJSON(configFile, false, []string{err.Error()}, nil)
		}

		fmt.Printf("❌ Configuration validation FAILED\n\n")
		fmt.Printf("File: %s\n", configFile)
		fmt.Printf("Error: %v\n", err)
		return fmt.Errorf("configuration validation failed")
	}

	cfg := configManager.Get()

	var warnings []string
	var errors []string

	// Credential reference checks
	if validateEnvironment {
		if err := configManager.CheckPermissions(); err != nil {
			errors = append(errors, err.Error())
		}
	}

	// Basic configuration checks
	warnings = append(warnings, performBasicChecks(cfg)...)

	// Print results
	if validateFormat == "json" {
		return printValidationResultJSON(configFile, len(errors) == 0, errors, warnings)
	}

	return printValidationResultText(configFile, cfg, errors, warnings)
}

func performBasicChecks(cfg *types.Config) []string {
	var warnings []string

	// A short interval hammers every adapter endpoint
	if cfg.Monitor.CheckInterval > 0 && cfg.Monitor.CheckInterval < 10*time.Second {
		warnings = append(warnings, "Check interval is less than 10 seconds, this may overload monitored adapters")
	}

	if cfg.Monitor.MaxWorkers > 0 && len(cfg.Adapters) > 0 && cfg.Monitor.MaxWorkers > len(cfg.Adapters) {
		warnings = append(warnings, "Worker limit exceeds the adapter count, extra workers stay idle")
	}

	inactive := 0
	for _, adapter := range cfg.Adapters {
		if !adapter.Active {
			inactive++
		}
	}
	if inactive > 0 {
		warnings = append(warnings, fmt.Sprintf("%d adapter(s) are declared inactive and will not be checked", inactive))
	}

	// Check storage configuration
	if cfg.Storage.SQLite.MaxConnections > 100 {
		warnings = append(warnings, "SQLite max connections is very high, consider reducing for better performance")
	}

	return warnings
}

func printValidationResultJSON(file string, valid bool, errors, warnings []string) error {
	result := map[string]interface{}{
		"file":     file,
		"valid":    valid,
		"errors":   errors,
		"warnings": warnings,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Println(string(jsonBytes))

	if !valid {
		os.Exit(1)
	}

	return nil
}

func printValidationResultText(file string, cfg *types.Config, errors, warnings []string) error {
	if len(errors) == 0 {
		fmt.Printf("✅ Configuration validation PASSED\n\n")
	} else {
		fmt.Printf("❌ Configuration validation FAILED\n\n")
	}

	fmt.Printf("File: %s\n", file)
	fmt.Printf("App: %s\n", cfg.App.Name)
	fmt.Printf("Adapters: %d\n", len(cfg.Adapters))
	fmt.Printf("Storage: %s\n", cfg.Storage.Type)
	fmt.Printf("Check Interval: %s\n", cfg.Monitor.CheckInterval)
	fmt.Println()

	if len(errors) > 0 {
		fmt.Printf("🚨 Errors:\n")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		fmt.Println()
	}

	if len(warnings) > 0 {
		fmt.Printf("⚠️  Warnings:\n")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	if len(errors) == 0 && len(warnings) == 0 {
		fmt.Printf("🎉 No issues found!\n")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed with %d error(s)", len(errors))
	}

	return nil
}
