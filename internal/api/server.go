package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nexbridge/adaptersentry/internal/config"
	"github.com/nexbridge/adaptersentry/internal/storage"
	"github.com/nexbridge/adaptersentry/pkg/logger"
	"github.com/nexbridge/adaptersentry/pkg/types"
	"github.com/nexbridge/adaptersentry/pkg/utils"
)

// Server represents the HTTP API server
type Server struct {
	port          int
	server        *http.Server
	configManager *config.Manager
	storage       storage.Storage
	runtime       RuntimeProvider
	components    Components
	logger        *logger.Entry
}

// NewServer creates a new API server
func NewServer(port int, configManager *config.Manager, storage storage.Storage, parentLogger *logger.Entry) *Server {
	return &Server{
		port:          port,
		configManager: configManager,
		storage:       storage,
		runtime:       nil, // Will be set by SetRuntime
		logger: parentLogger.WithFields(logger.Fields{
			"component": "api",
			"module":    "server",
			"port":      port,
		}),
	}
}

// SetRuntime sets the runtime provider (called after creation)
func (s *Server) SetRuntime(runtime RuntimeProvider) {
	s.runtime = runtime
}

// SetComponents wires the monitoring subsystems the API exposes
func (s *Server) SetComponents(components Components) {
	s.components = components
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	// Create router with all handlers
	router := s.setupRouter()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithFields(logger.Fields{
		"operation": "start",
		"addr":      s.server.Addr,
	}).Info("Starting API server")

	// Start server in goroutine
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithFields(logger.Fields{
				"operation": "start",
				"error":     err.Error(),
			}).Error("API server failed to start")
		}
	}()

	s.logger.WithFields(logger.Fields{
		"operation": "start",
		"port":      s.port,
	}).Info("API server started successfully")

	return nil
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.WithFields(logger.Fields{
		"operation": "stop",
	}).Info("Stopping API server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}

	s.logger.WithFields(logger.Fields{
		"operation": "stop",
	}).Info("API server stopped successfully")

	return nil
}

// Health returns the server health status
func (s *Server) Health(ctx context.Context) error {
	// Simple health check - server is healthy if it's running
	return nil
}

// HTTP Handlers

// handleHealth returns overall system health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.runtime != nil {
		health := s.runtime.Health(ctx)
		response := NewJSONResponse(health)
		if !health.Healthy {
			response.WriteWithStatus(w, http.StatusServiceUnavailable)
			return
		}
		response.Write(w)
		return
	}

	health := map[string]interface{}{
		"status": "healthy",
		"components": map[string]string{
			"api": "healthy",
		},
	}
	response := NewJSONResponse(health)
	response.Write(w)
}

// handleLiveness returns liveness probe status
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	response := NewJSONResponse(map[string]string{
		"status": "alive",
	})
	response.Write(w)
}

// handleReadiness returns readiness probe status
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.HealthCheck(r.Context()); err != nil {
		response := NewErrorResponse("storage not ready")
		response.WriteWithStatus(w, http.StatusServiceUnavailable)
		return
	}

	response := NewJSONResponse(map[string]string{
		"status": "ready",
	})
	response.Write(w)
}

// handleStatus returns system status and uptime
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{}

	if s.runtime != nil {
		status["runtime"] = *s.runtime.GetStatus()
	} else {
		status["runtime"] = map[string]string{
			"state":   "running",
			"message": "Runtime information not available",
		}
	}

	if s.components.Monitor != nil {
		status["monitor"] = s.components.Monitor.GetStatus()
		status["monitor_metrics"] = s.components.Monitor.GetMetrics()
	}

	response := NewJSONResponse(status)
	response.Write(w)
}

// handleAdapters lists or creates adapters
func (s *Server) handleAdapters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listAdapters(w, r)
	case http.MethodPost:
		s.createAdapter(w, r)
	default:
		response := NewErrorResponse("Method not allowed")
		response.WriteWithStatus(w, http.StatusMethodNotAllowed)
	}
}

func (s *Server) listAdapters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var adapters []types.MonitoredAdapter
	var err error
	if r.URL.Query().Get("active") == "true" {
		adapters, err = s.storage.GetActiveAdapters(ctx)
	} else {
		adapters, err = s.storage.GetAdapters(ctx)
	}
	if err != nil {
		s.logger.WithFields(logger.Fields{
			"error": err.Error(),
		}).Error("Failed to list adapters")

		response := NewErrorResponse("Failed to retrieve adapters")
		response.WriteWithStatus(w, http.StatusInternalServerError)
		return
	}

	apiAdapters := make([]map[string]interface{}, len(adapters))
	for i, adapter := range adapters {
		apiAdapters[i] = s.convertAdapterToAPI(adapter)
	}

	response := NewJSONResponse(map[string]interface{}{
		"total":    len(apiAdapters),
		"adapters": apiAdapters,
	})
	response.Write(w)
}

func (s *Server) createAdapter(w http.ResponseWriter, r *http.Request) {
	adapter, ok := s.decodeAdapter(w, r)
	if !ok {
		return
	}

	if adapter.ID == "" {
		response := NewErrorResponse("Adapter id is required")
		response.WriteWithStatus(w, http.StatusBadRequest)
		return
	}

	if err := s.storage.UpsertAdapter(r.Context(), adapter); err != nil {
		s.logger.WithFields(logger.Fields{
			"error":      err.Error(),
			"adapter_id": adapter.ID,
		}).Error("Failed to create adapter")

		response := NewErrorResponse("Failed to store adapter")
		response.WriteWithStatus(w, http.StatusInternalServerError)
		return
	}

	response := NewJSONResponse(adapter)
	response.WriteWithStatus(w, http.StatusCreated)
}

// handleAdapter routes single-adapter requests and their subresources
func (s *Server) handleAdapter(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/adapters/")
	if rest == "" {
		response := NewErrorResponse("Adapter id is required")
		response.WriteWithStatus(w, http.StatusBadRequest)
		return
	}

	adapterID := rest
	action := ""
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		adapterID = rest[:idx]
		action = strings.Trim(rest[idx+1:], "/")
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			s.getAdapter(w, r, adapterID)
		case http.MethodPut:
			s.updateAdapter(w, r, adapterID)
		case http.MethodDelete:
			s.deleteAdapter(w, r, adapterID)
		default:
			response := NewErrorResponse("Method not allowed")
			response.WriteWithStatus(w, http.StatusMethodNotAllowed)
		}
	case "active":
		s.setAdapterActive(w, r, adapterID)
	case "status":
		s.getAdapterStatus(w, r, adapterID)
	case "score":
		s.getAdapterScore(w, r, adapterID)
	case "history":
		s.getAdapterHistory(w, r, adapterID)
	case "records":
		s.getAdapterRecords(w, r, adapterID)
	case "check":
		s.checkAdapter(w, r, adapterID)
	default:
		response := NewErrorResponse("Unknown adapter resource")
		response.WriteWithStatus(w, http.StatusNotFound)
	}
}

func (s *Server) getAdapter(w http.ResponseWriter, r *http.Request, adapterID string) {
	adapter, err := s.storage.GetAdapter(r.Context(), adapterID)
	if err != nil {
		response := NewErrorResponse("Adapter not found")
		response.WriteWithStatus(w, http.StatusNotFound)
		return
	}

	response := NewJSONResponse(s.convertAdapterToAPI(*adapter))
	response.Write(w)
}

func (s *Server) updateAdapter(w http.ResponseWriter, r *http.Request, adapterID string) {
	adapter, ok := s.decodeAdapter(w, r)
	if !ok {
		return
	}
	adapter.ID = adapterID

	if err := s.storage.UpsertAdapter(r.Context(), adapter); err != nil {
		s.logger.WithFields(logger.Fields{
			"error":      err.Error(),
			"adapter_id": adapterID,
		}).Error("Failed to update adapter")

		response := NewErrorResponse("Failed to store adapter")
		response.WriteWithStatus(w, http.StatusInternalServerError)
		return
	}

	response := NewJSONResponse(adapter)
	response.Write(w)
}

func (s *Server) deleteAdapter(w http.ResponseWriter, r *http.Request, adapterID string) {
	if err := s.storage.DeleteAdapter(r.Context(), adapterID); err != nil {
		if _, notFound := err.(*storage.AdapterNotFoundError); notFound {
			response := NewErrorResponse("Adapter not found")
			response.WriteWithStatus(w, http.StatusNotFound)
			return
		}

		s.logger.WithFields(logger.Fields{
			"error":      err.Error(),
			"adapter_id": adapterID,
		}).Error("Failed to delete adapter")

		response := NewErrorResponse("Failed to delete adapter")
		response.WriteWithStatus(w, http.StatusInternalServerError)
		return
	}

	response := NewJSONResponse(map[string]string{
		"adapter_id": adapterID,
		"status":     "deleted",
	})
	response.Write(w)
}

// setAdapterActive flips the durable active flag without rewriting the
// rest of the adapter record
func (s *Server) setAdapterActive(w http.ResponseWriter, r *http.Request, adapterID string) {
	if r.Method != http.MethodPut {
		response := NewErrorResponse("Method not allowed")
		response.WriteWithStatus(w, http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response := NewErrorResponse("Invalid active payload")
		response.WriteWithStatus(w, http.StatusBadRequest)
		return
	}

	if err := s.storage.SetAdapterActive(r.Context(), adapterID, payload.Active); err != nil {
		if _, notFound := err.(*storage.AdapterNotFoundError); notFound {
			response := NewErrorResponse("Adapter not found")
			response.WriteWithStatus(w, http.StatusNotFound)
			return
		}

		s.logger.WithFields(logger.Fields{
			"error":      err.Error(),
			"adapter_id": adapterID,
		}).Error("Failed to update adapter active flag")

		response := NewErrorResponse("Failed to update adapter")
		response.WriteWithStatus(w, http.StatusInternalServerError)
		return
	}

	response := NewJSONResponse(map[string]interface{}{
		"adapter_id": adapterID,
		"active":     payload.Active,
	})
	response.Write(w)
}

func (s *Server) getAdapterStatus(w http.ResponseWriter, r *http.Request, adapterID string) {
	if s.components.Statuses == nil {
		response := NewErrorResponse("Monitoring not available")
		response.WriteWithStatus(w, http.StatusServiceUnavailable)
		return
	}

	status, found := s.components.Statuses.Get(adapterID)
	if !found {
		response := NewErrorResponse("Adapter not monitored")
		response.WriteWithStatus(w, http.StatusNotFound)
		return
	}

	response := NewJSONResponse(status)
	response.Write(w)
}

func (s *Server) getAdapterScore(w http.ResponseWriter, r *http.Request, adapterID string) {
	if s.components.Scores == nil {
		response := NewErrorResponse("Monitoring not available")
		response.WriteWithStatus(w, http.StatusServiceUnavailable)
		return
	}

	score, found := s.components.Scores.Score(adapterID)
	if !found {
		response := NewErrorResponse("Adapter not monitored")
		response.WriteWithStatus(w, http.StatusNotFound)
		return
	}

	response := NewJSONResponse(score)
	response.Write(w)
}

func (s *Server) getAdapterHistory(w http.ResponseWriter, r *http.Request, adapterID string) {
	if s.components.History == nil {
		response := NewErrorResponse("Monitoring not available")
		response.WriteWithStatus(w, http.StatusServiceUnavailable)
		return
	}

	history := s.components.History.History(adapterID)

	response := NewJSONResponse(map[string]interface{}{
		"adapter_id": adapterID,
		"total":      len(history),
		"snapshots":  history,
	})
	response.Write(w)
}

func (s *Server) getAdapterRecords(w http.ResponseWriter, r *http.Request, adapterID string) {
	ctx := r.Context()

	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			response := NewErrorResponse("Invalid since timestamp, expected RFC3339")
			response.WriteWithStatus(w, http.StatusBadRequest)
			return
		}

		records, err := s.storage.GetHealthRecordsSince(ctx, adapterID, since)
		if err != nil {
			s.logger.WithFields(logger.Fields{
				"error":      err.Error(),
				"adapter_id": adapterID,
				"since":      sinceStr,
			}).Error("Failed to get health records")

			response := NewErrorResponse("Failed to retrieve health records")
			response.WriteWithStatus(w, http.StatusInternalServerError)
			return
		}

		response := NewJSONResponse(map[string]interface{}{
			"adapter_id": adapterID,
			"total":      len(records),
			"since":      since,
			"records":    records,
		})
		response.Write(w)
		return
	}

	limit := 100 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	records, err := s.storage.GetHealthRecords(ctx, adapterID, limit)
	if err != nil {
		s.logger.WithFields(logger.Fields{
			"error":      err.Error(),
			"adapter_id": adapterID,
			"limit":      limit,
		}).Error("Failed to get health records")

		response := NewErrorResponse("Failed to retrieve health records")
		response.WriteWithStatus(w, http.StatusInternalServerError)
		return
	}

	response := NewJSONResponse(map[string]interface{}{
		"adapter_id": adapterID,
		"total":      len(records),
		"limit":      limit,
		"records":    records,
	})
	response.Write(w)
}

// checkAdapter triggers an immediate out-of-cycle health check
func (s *Server) checkAdapter(w http.ResponseWriter, r *http.Request, adapterID string) {
	if r.Method != http.MethodPost {
		response := NewErrorResponse("Method not allowed")
		response.WriteWithStatus(w, http.StatusMethodNotAllowed)
		return
	}

	if s.components.Monitor == nil {
		response := NewErrorResponse("Monitoring not available")
		response.WriteWithStatus(w, http.StatusServiceUnavailable)
		return
	}

	adapter, err := s.storage.GetAdapter(r.Context(), adapterID)
	if err != nil {
		response := NewErrorResponse("Adapter not found")
		response.WriteWithStatus(w, http.StatusNotFound)
		return
	}

	result := s.components.Monitor.CheckAdapterNow(r.Context(), *adapter)

	response := NewJSONResponse(map[string]interface{}{
		"adapter_id": adapterID,
		"result":     result,
	})
	response.Write(w)
}

// handleAdapterStatuses returns the live registry record for every adapter
func (s *Server) handleAdapterStatuses(w http.ResponseWriter, r *http.Request) {
	if s.components.Statuses == nil {
		response := NewErrorResponse("Monitoring not available")
		response.WriteWithStatus(w, http.StatusServiceUnavailable)
		return
	}

	statuses := s.components.Statuses.List()

	response := NewJSONResponse(map[string]interface{}{
		"total":    len(statuses),
		"statuses": statuses,
	})
	response.Write(w)
}

// handleAlerts derives the current alert set from live monitoring state
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if s.components.Alerts == nil {
		response := NewErrorResponse("Monitoring not available")
		response.WriteWithStatus(w, http.StatusServiceUnavailable)
		return
	}

	alerts := s.components.Alerts.Scan()

	response := NewJSONResponse(map[string]interface{}{
		"total":  len(alerts),
		"alerts": alerts,
	})
	response.Write(w)
}

// handleStats returns storage statistics
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.storage.GetStats(r.Context())
	if err != nil {
		s.logger.WithFields(logger.Fields{
			"error": err.Error(),
		}).Error("Failed to get storage stats")

		response := NewErrorResponse("Failed to retrieve statistics")
		response.WriteWithStatus(w, http.StatusInternalServerError)
		return
	}

	response := NewJSONResponse(stats)
	response.Write(w)
}

// handleMetrics serves the Prometheus exposition endpoint
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.components.Metrics == nil {
		response := NewErrorResponse("Metrics not available")
		response.WriteWithStatus(w, http.StatusServiceUnavailable)
		return
	}

	s.components.Metrics.ServeHTTP(w, r)
}

// handleVersion returns API and application version information
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	version := GetVersion()
	response := NewJSONResponse(version)
	response.Write(w)
}

// decodeAdapter decodes and sanitizes an adapter payload, expanding
// credential references against the configured allow-list
func (s *Server) decodeAdapter(w http.ResponseWriter, r *http.Request) (*types.MonitoredAdapter, bool) {
	var adapter types.MonitoredAdapter

	if err := json.NewDecoder(r.Body).Decode(&adapter); err != nil {
		response := NewErrorResponse("Invalid adapter payload")
		response.WriteWithStatus(w, http.StatusBadRequest)
		return nil, false
	}

	if adapter.Name == "" {
		adapter.Name = adapter.ID
	}
	if adapter.Config == nil {
		adapter.Config = make(map[string]string)
	}

	if !s.isKnownProtocol(adapter.Protocol) {
		response := NewErrorResponse("Unknown adapter protocol")
		response.WriteWithStatus(w, http.StatusBadRequest)
		return nil, false
	}

	// Expand ${VAR} credential references the same way the config loader does
	cfg := s.configManager.Get()
	if cfg != nil && len(cfg.Security.AllowedEnvVars) > 0 {
		expander := utils.NewEnvExpander(cfg.Security.AllowedEnvVars)
		expanded, err := expander.ExpandStringMap(adapter.Config)
		if err != nil {
			response := NewErrorResponse("Failed to expand adapter configuration")
			response.WriteWithStatus(w, http.StatusBadRequest)
			return nil, false
		}
		adapter.Config = expanded
	}

	return &adapter, true
}

func (s *Server) isKnownProtocol(protocol types.ProtocolType) bool {
	for _, known := range types.KnownProtocols() {
		if protocol == known {
			return true
		}
	}
	return false
}

// convertAdapterToAPI merges the stored adapter with its live registry state
func (s *Server) convertAdapterToAPI(adapter types.MonitoredAdapter) map[string]interface{} {
	apiAdapter := map[string]interface{}{
		"id":       adapter.ID,
		"name":     adapter.Name,
		"protocol": adapter.Protocol,
		"active":   adapter.Active,
	}

	if !adapter.CreatedAt.IsZero() {
		apiAdapter["created_at"] = adapter.CreatedAt
	}
	if !adapter.UpdatedAt.IsZero() {
		apiAdapter["updated_at"] = adapter.UpdatedAt
	}

	// Config values may hold credentials, expose only the keys
	if len(adapter.Config) > 0 {
		keys := make([]string, 0, len(adapter.Config))
		for key := range adapter.Config {
			keys = append(keys, key)
		}
		apiAdapter["config_keys"] = keys
	}

	if s.components.Statuses != nil {
		if status, found := s.components.Statuses.Get(adapter.ID); found {
			apiAdapter["healthy"] = status.Healthy
			apiAdapter["consecutive_failures"] = status.ConsecutiveFailures
			if !status.LastCheckTime.IsZero() {
				apiAdapter["last_check_time"] = status.LastCheckTime
			}
		}
	}

	return apiAdapter
}
