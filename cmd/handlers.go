package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/runtime"
	"github.com/sells-group/underwrite-cli/internal/schedule"
)

func newRouter(env *appEnv) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "PUT", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(rateLimit(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/baskets", env.handleListBaskets)
		r.Get("/baskets/{basketID}", env.handleBasketDefinition)
		r.Get("/projects/{projectID}/baskets/{basketID}", env.handleLoadBasket)
		r.Put("/projects/{projectID}/baskets/{basketID}/fields/{key}", env.handleSetField)
		r.Post("/projects/{projectID}/baskets/{basketID}/save", env.handleSaveBasket)
		r.Post("/schedule/compute", env.handleComputeSchedule)
		r.Get("/projects/{projectID}/tracks", env.handleListTracks)
		r.Put("/projects/{projectID}/tracks/{name}", env.handleSaveTrack)
	})

	return r
}

// rateLimit applies a process-wide token bucket to every request.
func rateLimit(rps rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rps, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func tierParam(r *http.Request) (model.Tier, bool) {
	s := r.URL.Query().Get("tier")
	if s == "" {
		return model.TierNapkin, true
	}
	tier, err := model.ParseTier(s)
	if err != nil {
		return 0, false
	}
	return tier, true
}

func (e *appEnv) handleListBaskets(w http.ResponseWriter, _ *http.Request) {
	type basketInfo struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}
	out := make([]basketInfo, 0, len(e.baskets))
	for _, b := range e.baskets {
		def := b.cat.Definition()
		out = append(out, basketInfo{ID: def.ID, Name: def.Name, Description: def.Description})
	}
	respondJSON(w, http.StatusOK, out)
}

func (e *appEnv) handleBasketDefinition(w http.ResponseWriter, r *http.Request) {
	b, ok := e.byID[chi.URLParam(r, "basketID")]
	if !ok {
		respondError(w, http.StatusNotFound, "unknown basket")
		return
	}
	tier, ok := tierParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid tier")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":     b.cat.ID(),
		"name":   b.cat.Name(),
		"tier":   tier.String(),
		"groups": b.cat.VisibleGroups(tier),
		"fields": b.cat.VisibleFields(tier),
	})
}

func (e *appEnv) handleLoadBasket(w http.ResponseWriter, r *http.Request) {
	b, ok := e.byID[chi.URLParam(r, "basketID")]
	if !ok {
		respondError(w, http.StatusNotFound, "unknown basket")
		return
	}
	tier, ok := tierParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid tier")
		return
	}

	rt := runtime.New(b.cat, b.graph, e.st, chi.URLParam(r, "projectID"))
	snap, err := rt.Load(r.Context(), tier)
	if err != nil {
		zap.L().Error("load basket", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "load failed")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// setFieldRequest carries the client's current edit-session values plus the
// one edit; the handler is stateless and rebuilds the session per request.
type setFieldRequest struct {
	Values model.ValueMap `json:"values"`
	Value  *model.Value   `json:"value"`
	Tier   string         `json:"tier"`
}

func (e *appEnv) handleSetField(w http.ResponseWriter, r *http.Request) {
	b, ok := e.byID[chi.URLParam(r, "basketID")]
	if !ok {
		respondError(w, http.StatusNotFound, "unknown basket")
		return
	}

	var req setFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tier, err := model.ParseTier(req.Tier)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tier")
		return
	}

	rt := runtime.New(b.cat, b.graph, e.st, chi.URLParam(r, "projectID"))
	rt.Hydrate(req.Values, tier)

	value := model.Value{}
	if req.Value != nil {
		value = *req.Value
	}
	snap, err := rt.SetField(chi.URLParam(r, "key"), value, tier)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

type saveRequest struct {
	Values model.ValueMap `json:"values"`
	Tier   string         `json:"tier"`
}

func (e *appEnv) handleSaveBasket(w http.ResponseWriter, r *http.Request) {
	b, ok := e.byID[chi.URLParam(r, "basketID")]
	if !ok {
		respondError(w, http.StatusNotFound, "unknown basket")
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tier, err := model.ParseTier(req.Tier)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tier")
		return
	}

	rt := runtime.New(b.cat, b.graph, e.st, chi.URLParam(r, "projectID"))
	snap := rt.Hydrate(req.Values, tier)

	if err := rt.Save(r.Context(), tier); err != nil {
		var blocked *runtime.BlockedSaveError
		if errors.As(err, &blocked) {
			respondJSON(w, http.StatusConflict, map[string]any{
				"error":  "save blocked by validation issues",
				"issues": blocked.Issues,
			})
			return
		}
		zap.L().Error("save basket", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "save failed")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

type computeScheduleRequest struct {
	Steps   []schedule.Step `json:"steps"`
	Horizon int             `json:"horizon,omitempty"`
}

func (e *appEnv) handleComputeSchedule(w http.ResponseWriter, r *http.Request) {
	var req computeScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	horizon := req.Horizon
	if horizon <= 0 {
		horizon = e.horizon
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"steps":  schedule.Compute(req.Steps, horizon),
		"issues": schedule.ValidateTrack(req.Steps),
	})
}

func (e *appEnv) handleListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := e.st.LoadTracks(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		zap.L().Error("load tracks", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "load failed")
		return
	}

	type trackView struct {
		Name  string                  `json:"name"`
		Steps []schedule.ComputedStep `json:"steps"`
	}
	out := make([]trackView, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, trackView{Name: t.Name, Steps: schedule.Compute(t.Steps, e.horizon)})
	}
	respondJSON(w, http.StatusOK, out)
}

func (e *appEnv) handleSaveTrack(w http.ResponseWriter, r *http.Request) {
	var steps []schedule.Step
	if err := json.NewDecoder(r.Body).Decode(&steps); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	track := schedule.Track{Name: chi.URLParam(r, "name"), Steps: steps}
	if err := e.st.SaveTrack(r.Context(), chi.URLParam(r, "projectID"), track); err != nil {
		zap.L().Error("save track", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "save failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"steps":  schedule.Compute(steps, e.horizon),
		"issues": schedule.ValidateTrack(steps),
	})
}
