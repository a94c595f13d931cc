package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [adapter-id]",
	Short: "Force a health check of an adapter",
	Long: `Ask a running AdapterSentry instance to check an adapter immediately,
outside the regular sweep, and print the result. Without an adapter ID the
command lists the configured adapters instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

var (
	checkPort   int
	checkHost   string
	checkFormat string
)

func init() {
	checkCmd.Flags().IntVar(&checkPort, "port", 8080, "AdapterSentry API server port")
	checkCmd.Flags().StringVar(&checkHost, "host", "localhost", "AdapterSentry host")
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "Output format (text, json)")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	baseURL := fmt.Sprintf("http://%s:%d", checkHost, checkPort)

	if len(args) == 0 {
		return listAdapters(baseURL)
	}

	return forceCheck(baseURL, args[0])
}

func listAdapters(baseURL string) error {
	result, err := getJSON(baseURL + "/api/adapters")
	if err != nil {
		return fmt.Errorf("service unreachable: %w", err)
	}

	if checkFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	data, ok := result["data"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected response shape")
	}

	adapters, _ := data["adapters"].([]interface{})
	fmt.Printf("Configured adapters: %d\n", len(adapters))
	for _, a := range adapters {
		adapter, ok := a.(map[string]interface{})
		if !ok {
			continue
		}
		id, _ := adapter["id"].(string)
		protocol, _ := adapter["protocol"].(string)
		active, _ := adapter["active"].(bool)
		marker := "⏸"
		if active {
			marker = "▶"
		}
		fmt.Printf("  %s %-24s %s\n", marker, id, protocol)
	}

	return nil
}

func forceCheck(baseURL, adapterID string) error {
	url := fmt.Sprintf("%s/api/adapters/%s/check", baseURL, adapterID)

	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("service unreachable: %w", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		errMsg, _ := result["error"].(string)
		return fmt.Errorf("check failed (%d): %s", resp.StatusCode, errMsg)
	}

	if checkFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	data, ok := result["data"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected response shape")
	}

	checkResult, _ := data["result"].(map[string]interface{})
	healthy, _ := checkResult["healthy"].(bool)
	latency, _ := checkResult["response_time_ms"].(float64)

	if healthy {
		fmt.Printf("✅ %s is reachable (%.0f ms)\n", adapterID, latency)
	} else {
		message, _ := checkResult["error_message"].(string)
		fmt.Printf("❌ %s check failed: %s\n", adapterID, message)
	}

	return nil
}
