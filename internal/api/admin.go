package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
	"github.com/MikeSquared-Agency/TwinScore/internal/store"
)

type AdminHandler struct {
	store  store.Store
	engine *scoring.Engine
}

func NewAdminHandler(s store.Store, e *scoring.Engine) *AdminHandler {
	return &AdminHandler{store: s, engine: e}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type scoringConfigResponse struct {
	Weights                    map[string]float64 `json:"weights"`
	WeightSum                  float64            `json:"weight_sum"`
	NormalizeWeights           bool               `json:"normalize_weights"`
	EfficiencyK                float64            `json:"efficiency_k"`
	DefaultRenewablePercentage float64            `json:"default_renewable_percentage"`
	ApplicationRenewable       map[string]float64 `json:"application_renewable"`
}

// Scoring reports the calibration the running engine uses.
func (h *AdminHandler) Scoring(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.Config()
	apps := cfg.Defaults.ApplicationRenewable
	if apps == nil {
		apps = map[string]float64{}
	}
	writeJSON(w, http.StatusOK, scoringConfigResponse{
		Weights: map[string]float64{
			scoring.ScoreComponentEfficiency: cfg.Weights.ComponentEfficiency,
			scoring.ScoreEnergySource:        cfg.Weights.EnergySource,
			scoring.ScoreReusability:         cfg.Weights.Reusability,
			scoring.ScoreWaste:               cfg.Weights.Waste,
		},
		WeightSum:                  cfg.Weights.Sum(),
		NormalizeWeights:           cfg.NormalizeWeights,
		EfficiencyK:                cfg.EfficiencyK,
		DefaultRenewablePercentage: cfg.Defaults.RenewablePercentage,
		ApplicationRenewable:       apps,
	})
}
