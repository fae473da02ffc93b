package handlers

import (
	"net/http"

	"github.com/Dias221467/cf_social/internal/services"
	"github.com/Dias221467/cf_social/pkg/middleware"
)

// RecommendationHandler serves practice recommendations and the leaderboard.
type RecommendationHandler struct {
	Recommendations *services.RecommendationService
	Leaderboard     *services.LeaderboardService
}

func NewRecommendationHandler(recs *services.RecommendationService, board *services.LeaderboardService) *RecommendationHandler {
	return &RecommendationHandler{Recommendations: recs, Leaderboard: board}
}

// GetRecommendationsHandler returns the caller's recommended problems.
func (h *RecommendationHandler) GetRecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Recommendations.GetRecommendations(r.Context(), middleware.Username(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]interface{}{
		"problems":  recs.Problems,
		"rating":    recs.Rating,
		"refreshed": recs.Refreshed,
		"degraded":  recs.Degraded,
	})
}

// GetLeaderboardHandler ranks the caller against the users they follow.
func (h *RecommendationHandler) GetLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	board, err := h.Leaderboard.GetLeaderboard(r.Context(), middleware.Username(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]interface{}{
		"entries":  board.Entries,
		"degraded": board.Degraded,
	})
}
