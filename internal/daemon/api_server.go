package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"shotrouter/internal/api"
	"shotrouter/internal/config"
	"shotrouter/internal/logging"
	"shotrouter/internal/router"
)

type apiServer struct {
	bind          string
	logger        *slog.Logger
	daemon        *Daemon
	screenshotSvc *api.ScreenshotService
	routingSvc    *api.RoutingService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:          bind,
		logger:        logger,
		daemon:        d,
		screenshotSvc: api.NewScreenshotService(d.store, d.router),
		routingSvc:    api.NewRoutingService(d.store),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/screenshots", srv.handleScreenshots)
	mux.HandleFunc("/api/screenshots/", srv.handleScreenshot)
	mux.HandleFunc("/api/destinations", srv.handleDestinations)
	mux.HandleFunc("/api/routes", srv.handleRoutes)
	mux.HandleFunc("/api/routes/", srv.handleRoute)
	mux.HandleFunc("/api/sources", srv.handleSources)
	mux.HandleFunc("/api/sources/watch", srv.handleWatch)
	mux.HandleFunc("/api/sources/unwatch", srv.handleUnwatch)
	mux.HandleFunc("/api/events", srv.handleEvents)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// addr returns the bound listener address, empty before start.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DBPath:       status.DBPath,
		LockFilePath: status.LockFilePath,
		Sources:      api.FromWatches(status.Sources),
		Counts:       api.MergeStats(status.Counts),
	})
}

func (s *apiServer) handleScreenshots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	items, err := s.screenshotSvc.List(r.Context(), query.Get("status"), limit, offset)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ScreenshotListResponse{Items: items})
}

func (s *apiServer) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/screenshots/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "screenshot not found")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		item, err := s.screenshotSvc.Describe(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if item == nil {
			s.writeError(w, http.StatusNotFound, "screenshot not found")
			return
		}
		s.writeJSON(w, http.StatusOK, api.ScreenshotResponse{Item: *item})

	case action == "" && r.Method == http.MethodDelete:
		removeFile := queryFlag(r, "remove_file")
		if err := s.screenshotSvc.Delete(r.Context(), id, removeFile); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"deleted": id})

	case action == "route" && r.Method == http.MethodPost:
		var req api.RouteScreenshotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.DestPath) == "" {
			s.writeError(w, http.StatusBadRequest, "dest_path is required")
			return
		}
		item, err := s.screenshotSvc.Route(r.Context(), id, req.DestPath, req.TargetDir)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.ScreenshotResponse{Item: *item})

	case action == "quarantine" && r.Method == http.MethodPost:
		item, err := s.screenshotSvc.Quarantine(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if item == nil {
			s.writeError(w, http.StatusNotFound, "screenshot not found")
			return
		}
		s.writeJSON(w, http.StatusOK, api.ScreenshotResponse{Item: *item})

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleDestinations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.routingSvc.Destinations(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.DestinationListResponse{Items: items})

	case http.MethodPost:
		var req api.DestinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		item, err := s.routingSvc.UpsertDestination(r.Context(), req)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.DestinationResponse{Item: *item})

	case http.MethodDelete:
		path := strings.TrimSpace(r.URL.Query().Get("path"))
		if path == "" {
			s.writeError(w, http.StatusBadRequest, "path query parameter is required")
			return
		}
		removed, err := s.routingSvc.DeleteDestination(r.Context(), path)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !removed {
			s.writeError(w, http.StatusNotFound, "destination not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"deleted": path})

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleRoutes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.routingSvc.Routes(r.Context(), strings.TrimSpace(r.URL.Query().Get("source")))
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.RouteListResponse{Items: items})

	case http.MethodPost:
		var req api.RouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		item, err := s.routingSvc.AddRoute(r.Context(), req)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.RouteResponse{Item: *item})

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleRoute(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/routes/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "route not found")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req api.RouteUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		item, err := s.routingSvc.UpdateRoute(r.Context(), id, req)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.RouteResponse{Item: *item})

	case http.MethodDelete:
		removed, err := s.routingSvc.DeleteRoute(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !removed {
			s.writeError(w, http.StatusNotFound, "route not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.SourceListResponse{Items: api.FromWatches(s.daemon.Sources())})
}

func (s *apiServer) handleWatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.WatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		s.writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := s.daemon.WatchSource(req.Path, req.DebounceMs); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.SourceListResponse{Items: api.FromWatches(s.daemon.Sources())})
}

func (s *apiServer) handleUnwatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.WatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	removed, err := s.daemon.UnwatchSource(req.Path)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "source not watched")
		return
	}
	s.writeJSON(w, http.StatusOK, api.SourceListResponse{Items: api.FromWatches(s.daemon.Sources())})
}

func (s *apiServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	since, _ := strconv.ParseUint(r.URL.Query().Get("since"), 10, 64)
	events, next := s.daemon.Hub().EventsSince(since)
	s.writeJSON(w, http.StatusOK, api.EventsResponse{Events: events, Next: next})
}

// writeServiceError maps domain errors to HTTP status codes.
func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, router.ErrRecordNotFound), errors.Is(err, api.ErrRouteNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, router.ErrNotRoutable):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func queryFlag(r *http.Request, key string) bool {
	value := r.URL.Query().Get(key)
	return value == "1" || strings.EqualFold(value, "true")
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
