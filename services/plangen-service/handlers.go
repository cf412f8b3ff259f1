package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/services"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// API holds what the HTTP handlers need.
type API struct {
	generator   *services.PlanGenerator
	daily       *services.DailyPlanService
	store       store.PlanStore
	connections *ConnectionManager
	logger      *zap.Logger
}

func NewAPI(generator *services.PlanGenerator, daily *services.DailyPlanService, planStore store.PlanStore, connections *ConnectionManager, logger *zap.Logger) *API {
	return &API{
		generator:   generator,
		daily:       daily,
		store:       planStore,
		connections: connections,
		logger:      logger,
	}
}

func (a *API) respondWithError(w http.ResponseWriter, code int, message string) {
	a.respondWithJSON(w, code, map[string]string{"error": message})
}

func (a *API) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithGenerationError maps engine errors to status codes.
func (a *API) respondWithGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidConfiguration):
		a.respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		a.respondWithError(w, http.StatusNotFound, err.Error())
	default:
		a.logger.Error("Plan generation failed", zap.Error(err))
		a.respondWithError(w, http.StatusInternalServerError, "Failed to generate plan: "+err.Error())
	}
}

func parseDateParam(dateStr string) (string, error) {
	if dateStr == "" || dateStr == "today" {
		return time.Now().UTC().Format(models.DateLayout), nil
	}
	if _, err := time.Parse(models.DateLayout, dateStr); err != nil {
		return "", fmt.Errorf("invalid date format: %s, use YYYY-MM-DD or 'today'", dateStr)
	}
	return dateStr, nil
}

func (a *API) GenerateDietPlan(w http.ResponseWriter, r *http.Request) {
	var req models.DietRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	plan, err := a.generator.GenerateDietPlan(r.Context(), req)
	if err != nil {
		a.respondWithGenerationError(w, err)
		return
	}
	a.respondWithJSON(w, http.StatusOK, plan)
}

func (a *API) GenerateWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	var req models.WorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err))
		return
	}

	plan, err := a.generator.GenerateWorkoutPlan(r.Context(), req)
	if err != nil {
		a.respondWithGenerationError(w, err)
		return
	}
	a.respondWithJSON(w, http.StatusOK, plan)
}

func (a *API) GenerateDailyPlans(w http.ResponseWriter, r *http.Request) {
	if a.daily == nil {
		a.respondWithError(w, http.StatusServiceUnavailable, "Catalog and profile services are not configured")
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		a.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	plans, err := a.daily.GenerateDaily(r.Context(), chi.URLParam(r, "userId"), date, force)
	if err != nil {
		a.respondWithGenerationError(w, err)
		return
	}
	a.respondWithJSON(w, http.StatusOK, plans)
}

func (a *API) GetPlan(w http.ResponseWriter, r *http.Request) {
	kind := models.PlanKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		a.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unknown plan kind: %s", kind))
		return
	}
	date, err := parseDateParam(chi.URLParam(r, "date"))
	if err != nil {
		a.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID := chi.URLParam(r, "userId")

	plan, err := a.store.GetPlan(r.Context(), kind, userID, date)
	if errors.Is(err, store.ErrPlanNotFound) {
		a.respondWithError(w, http.StatusNotFound, fmt.Sprintf("No %s plan for %s on %s", kind, userID, date))
		return
	}
	if err != nil {
		a.respondWithError(w, http.StatusInternalServerError, "Failed to get plan: "+err.Error())
		return
	}
	a.respondWithJSON(w, http.StatusOK, plan)
}

// handleWebSocket registers a connection that receives plan notifications for ?user=.
func (a *API) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		a.respondWithError(w, http.StatusBadRequest, "Missing user query parameter")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	a.connections.Add(userID, conn)
	defer func() {
		a.connections.Remove(userID, conn)
		conn.Close()
	}()

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
