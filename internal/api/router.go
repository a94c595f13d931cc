package api

import (
	"net/http"

	"github.com/nexbridge/adaptersentry/internal/api/middleware"
)

// setupRouter configures all API routes
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/live", s.handleLiveness)
	mux.HandleFunc("/health/ready", s.handleReadiness)

	// Business API endpoints
	mux.HandleFunc("/api/adapters", s.handleAdapters)
	mux.HandleFunc("/api/adapters/", s.handleAdapter) // with ID and subresources

	mux.HandleFunc("/api/status", s.handleAdapterStatuses)
	mux.HandleFunc("/api/alerts", s.handleAlerts)
	mux.HandleFunc("/api/stats", s.handleStats)

	// System endpoints
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/metrics", s.handleMetrics)

	// API documentation and version
	mux.HandleFunc("/api", s.handleAPIDocumentation)
	mux.HandleFunc("/version", s.handleVersion)

	// Apply middleware
	handler := middleware.RequestLogger(s.logger)(mux)
	handler = middleware.CORS()(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}

// handleAPIDocumentation provides comprehensive API documentation
func (s *Server) handleAPIDocumentation(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	version := GetVersion()

	apiDoc := map[string]interface{}{
		"name":        "AdapterSentry API",
		"version":     version.API,
		"app_version": version.App,
		"description": "Integration adapter health monitoring API",
		"base_url":    r.Host,
		"endpoints": map[string]interface{}{
			"health": map[string]interface{}{
				"GET /health": map[string]string{
					"description": "Overall health status of all components",
					"returns":     "JSON with component health details",
				},
				"GET /health/live": map[string]string{
					"description": "Kubernetes liveness probe endpoint",
					"returns":     "Simple alive status",
				},
				"GET /health/ready": map[string]string{
					"description": "Kubernetes readiness probe endpoint",
					"returns":     "Ready status, checks storage connectivity",
				},
			},
			"adapters": map[string]interface{}{
				"GET /api/adapters": map[string]string{
					"description": "List all registered adapters with live health state",
					"parameters":  "active (true filters to active adapters)",
					"returns":     "Array of adapters",
				},
				"POST /api/adapters": map[string]string{
					"description": "Register a new adapter",
					"returns":     "Created adapter",
				},
				"GET /api/adapters/{id}": map[string]string{
					"description": "Get a specific adapter by id",
					"returns":     "Single adapter",
				},
				"PUT /api/adapters/{id}": map[string]string{
					"description": "Update an adapter",
					"returns":     "Updated adapter",
				},
				"DELETE /api/adapters/{id}": map[string]string{
					"description": "Remove an adapter and its health records",
					"returns":     "Deletion confirmation",
				},
				"GET /api/adapters/{id}/status": map[string]string{
					"description": "Live health status from the registry",
					"returns":     "Adapter health status",
				},
				"GET /api/adapters/{id}/score": map[string]string{
					"description": "Weighted health score with sub-scores",
					"returns":     "Health score",
				},
				"GET /api/adapters/{id}/history": map[string]string{
					"description": "Retained score snapshots for trend display",
					"returns":     "Array of snapshots",
				},
				"PUT /api/adapters/{id}/active": map[string]string{
					"description": "Activate or deactivate an adapter",
					"returns":     "New active flag",
				},
				"GET /api/adapters/{id}/records": map[string]string{
					"description": "Durable health check records",
					"parameters":  "limit (max 1000), since (RFC3339)",
					"returns":     "Array of health records",
				},
				"POST /api/adapters/{id}/check": map[string]string{
					"description": "Run an immediate out-of-cycle health check",
					"returns":     "Check result",
				},
			},
			"alerts": map[string]interface{}{
				"GET /api/status": map[string]string{
					"description": "Live health status of every monitored adapter",
					"returns":     "Array of adapter health statuses",
				},
				"GET /api/alerts": map[string]string{
					"description": "Current alerts derived from live monitoring state",
					"returns":     "Array of alerts sorted by severity",
				},
			},
			"system": map[string]interface{}{
				"GET /status": map[string]string{
					"description": "Runtime status and monitoring engine metrics",
					"returns":     "System status",
				},
				"GET /metrics": map[string]string{
					"description": "Prometheus exposition endpoint",
					"returns":     "Prometheus text format",
				},
				"GET /api/stats": map[string]string{
					"description": "Storage statistics",
					"returns":     "Adapter and record counts",
				},
				"GET /version": map[string]string{
					"description": "API and application version information",
					"returns":     "Version details",
				},
			},
		},
		"response_format": map[string]interface{}{
			"success": map[string]interface{}{
				"success":   true,
				"data":      "response payload",
				"timestamp": "ISO8601 timestamp",
			},
			"error": map[string]interface{}{
				"success":   false,
				"error":     "error message",
				"timestamp": "ISO8601 timestamp",
			},
		},
		"middleware": []string{
			"Request logging",
			"CORS headers",
			"Panic recovery",
		},
	}

	w.WriteHeader(http.StatusOK)
	response := NewJSONResponse(apiDoc)
	response.Write(w)
}
