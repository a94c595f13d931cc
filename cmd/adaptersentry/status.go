package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show AdapterSentry status and health",
	Long:  "Display current status, adapter health, and alerts of a running AdapterSentry instance",
	RunE:  runStatus,
}

var (
	statusPort   int
	statusFormat string
	statusWatch  bool
	statusHost   string
)

func init() {
	statusCmd.Flags().IntVar(&statusPort, "port", 8080, "AdapterSentry API server port")
	statusCmd.Flags().StringVar(&statusHost, "host", "localhost", "AdapterSentry host")
	statusCmd.Flags().StringVar(&statusFormat, "format", "text", "Output format (text, json)")
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Watch mode - continuously show status")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusWatch {
		return runStatusWatch()
	}

	return runStatusOnce()
}

func runStatusOnce() error {
	baseURL := fmt.Sprintf("http://%s:%d", statusHost, statusPort)

	// Get health status
	health, err := getJSON(baseURL + "/health")
	if err != nil {
		if statusFormat == "json" {
			result := map[string]interface{}{
				"status":  "unreachable",
				"error":   err.Error(),
				"healthy": false,
			}
			jsonBytes, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(jsonBytes))
		} else {
			fmt.Printf("❌ AdapterSentry is not reachable\n")
			fmt.Printf("Error: %v\n", err)
			fmt.Printf("\n💡 Ensure AdapterSentry is running on %s\n", baseURL)
		}
		return fmt.Errorf("service unreachable: %w", err)
	}

	// Get system status
	systemStatus, err := getJSON(baseURL + "/status")
	if err != nil {
		systemStatus = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	}

	// Get adapter statistics
	stats, err := getJSON(baseURL + "/api/stats")
	if err != nil {
		stats = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	}

	// Get active alerts
	alerts, err := getJSON(baseURL + "/api/alerts")
	if err != nil {
		alerts = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	}

	// Print results
	if statusFormat == "json" {
		return printStatusJSON(health, systemStatus, stats, alerts)
	}

	return printStatusText(health, systemStatus, stats, alerts)
}

func runStatusWatch() error {
	fmt.Printf("👀 Watching AdapterSentry status (Ctrl+C to stop)\n\n")

	for {
		// Clear screen
		fmt.Print("\033[2J\033[H")

		fmt.Printf("🕐 %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

		if err := runStatusOnce(); err != nil {
			fmt.Printf("\nRetrying in 5 seconds...\n")
		}

		time.Sleep(5 * time.Second)
	}
}

func getJSON(url string) (map[string]interface{}, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return result, nil
}

func printStatusJSON(health, systemStatus, stats, alerts map[string]interface{}) error {
	combined := map[string]interface{}{
		"health": health,
		"system": systemStatus,
		"stats":  stats,
		"alerts": alerts,
	}

	jsonBytes, err := json.MarshalIndent(combined, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(jsonBytes))
	return nil
}

func printStatusText(health, systemStatus, stats, alerts map[string]interface{}) error {
	// Print health status
	fmt.Printf("🏥 Health Status\n")
	fmt.Printf("================\n")

	if data, ok := health["data"].(map[string]interface{}); ok {
		if healthy, ok := data["healthy"].(bool); ok {
			if healthy {
				fmt.Printf("Status: ✅ Healthy\n")
			} else {
				fmt.Printf("Status: ❌ Unhealthy\n")
			}
		}

		if components, ok := data["components"].(map[string]interface{}); ok {
			fmt.Printf("Components:\n")
			for name, comp := range components {
				if compData, ok := comp.(map[string]interface{}); ok {
					status := compData["status"]
					fmt.Printf("  - %-12s %s\n", name+":", formatHealthStatus(status))
				}
			}
		}
	}

	fmt.Printf("\n")

	// Print system status
	fmt.Printf("⚙️  System Status\n")
	fmt.Printf("================\n")

	if data, ok := systemStatus["data"].(map[string]interface{}); ok {
		if runtime, ok := data["runtime"].(map[string]interface{}); ok {
			if state, ok := runtime["state"].(string); ok {
				fmt.Printf("State: %s\n", formatSystemState(state))
			}

			if startedAt, ok := runtime["started_at"].(string); ok {
				if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
					fmt.Printf("Started: %s\n", t.Format("2006-01-02 15:04:05"))
					fmt.Printf("Uptime: %s\n", time.Since(t).Truncate(time.Second))
				}
			}

			if version, ok := runtime["version"].(string); ok {
				fmt.Printf("Version: %s\n", version)
			}
		}
	}

	fmt.Printf("\n")

	// Print adapter statistics
	fmt.Printf("📊 Adapters\n")
	fmt.Printf("===========\n")

	if data, ok := stats["data"].(map[string]interface{}); ok {
		printStatsData(data)
	} else {
		fmt.Printf("Statistics not available\n")
	}

	fmt.Printf("\n")

	// Print alerts
	fmt.Printf("🚨 Alerts\n")
	fmt.Printf("=========\n")

	if data, ok := alerts["data"].(map[string]interface{}); ok {
		printAlertsData(data)
	} else {
		fmt.Printf("Alerts not available\n")
	}

	return nil
}

func formatHealthStatus(status interface{}) string {
	if str, ok := status.(string); ok {
		switch str {
		case "healthy":
			return "✅ Healthy"
		case "unhealthy":
			return "❌ Unhealthy"
		default:
			return "❓ " + str
		}
	}
	return "❓ Unknown"
}

func formatSystemState(state string) string {
	switch state {
	case "running":
		return "🟢 Running"
	case "starting":
		return "🟡 Starting"
	case "stopping":
		return "🟡 Stopping"
	case "stopped":
		return "🔴 Stopped"
	case "error":
		return "🔴 Error"
	default:
		return "❓ " + state
	}
}

func printStatsData(data map[string]interface{}) {
	for key, value := range data {
		switch key {
		case "total_adapters":
			fmt.Printf("Total Adapters: %s\n", formatNumber(value))
		case "active_adapters":
			fmt.Printf("Active Adapters: %s\n", formatNumber(value))
		case "healthy_adapters":
			fmt.Printf("Healthy Adapters: %s\n", formatNumber(value))
		case "total_health_records":
			fmt.Printf("Health Records: %s\n", formatNumber(value))
		}
	}
}

func printAlertsData(data map[string]interface{}) {
	total, _ := data["total"].(float64)
	if total == 0 {
		fmt.Printf("🎉 No active alerts\n")
		return
	}

	fmt.Printf("Active Alerts: %d\n", int(total))

	alerts, ok := data["alerts"].([]interface{})
	if !ok {
		return
	}

	for _, a := range alerts {
		alert, ok := a.(map[string]interface{})
		if !ok {
			continue
		}
		adapterID, _ := alert["adapter_id"].(string)
		severity, _ := alert["severity"].(string)
		message, _ := alert["message"].(string)
		fmt.Printf("  - [%s] %s: %s\n", severity, adapterID, message)
	}
}

func formatNumber(value interface{}) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}
