// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"mcp-meal-score/internal/logging"
	"mcp-meal-score/internal/models"
	"mcp-meal-score/internal/nutrition"
	"mcp-meal-score/internal/storage"
)

const (
	serverName    = "meal-score"
	serverVersion = "1.0.0"
)

type Config struct {
	Host string
	Port int
}

// MealStore is the persistence the tools need.
type MealStore interface {
	SaveMeal(ctx context.Context, meal *models.MealRecord) error
	GetMeals(ctx context.Context, startDate, endDate string, limit int) ([]*models.MealRecord, error)
	GetMeal(ctx context.Context, id string) (*models.MealRecord, error)
	MealsSince(ctx context.Context, t time.Time) ([]*models.MealRecord, error)
	CountMeals(ctx context.Context) (int, error)
	DeleteMeal(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// ImageRecognizer turns uploaded image bytes into a scored label, or nil.
type ImageRecognizer interface {
	RecognizeBytes(ctx context.Context, data []byte) *models.RecognitionResult
}

type toolHandler func(context.Context, *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// errInvalidParams marks caller mistakes, answered with 400.
var errInvalidParams = errors.New("invalid parameters")

type MealScoreServer struct {
	httpServer *http.Server
	info       protocol.Implementation
	storage    MealStore
	recognizer ImageRecognizer
	matcher    *nutrition.Matcher
	facts      *nutrition.Facts
	logger     *logging.Logger
	tools      map[string]toolHandler
	now        func() time.Time
}

func NewMealScoreServer(cfg *Config, store MealStore, recognizer ImageRecognizer, logger *logging.Logger) (*MealScoreServer, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	mealServer := &MealScoreServer{
		info: protocol.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		storage:    store,
		recognizer: recognizer,
		matcher:    nutrition.NewMatcher(),
		facts:      nutrition.NewFacts(nil),
		logger:     logger.With("server"),
		now:        time.Now,
	}

	mealServer.registerTools()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", mealServer.handleHealth)
	mux.HandleFunc("/", mealServer.handleHTTP)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mealServer.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return mealServer, nil
}

// Handler exposes the HTTP routes.
func (s *MealScoreServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *MealScoreServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	start := time.Now()
	result, err := handler(r.Context(), &request)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, errInvalidParams):
			status = http.StatusBadRequest
		case errors.Is(err, storage.ErrNotFound):
			status = http.StatusNotFound
		}
		s.logger.Warn("tool call failed", "tool", request.Name, "status", status, "error", err)
		http.Error(w, err.Error(), status)
		return
	}
	s.logger.Debug("tool call handled", "tool", request.Name, "duration", time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *MealScoreServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.storage.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  status,
		"name":    s.info.Name,
		"version": s.info.Version,
		"foods":   nutrition.Size(),
	})
}

func (s *MealScoreServer) Start(ctx context.Context) error {
	s.logger.Info("starting meal score server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *MealScoreServer) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *MealScoreServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
