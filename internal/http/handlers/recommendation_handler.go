package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RecommendationItem is one advisory.
type RecommendationItem struct {
	ID          uint   `json:"id"`
	Priority    string `json:"priority"    example:"High"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"        example:"irrigation"`
}

// RecommendationsResponse wraps the advisories in priority order.
type RecommendationsResponse struct {
	Recommendations []RecommendationItem `json:"recommendations"`
}

// GetRecommendations godoc
// @ID          getRecommendations
// @Summary     AI recommendations
// @Description Returns active advisories ordered by priority (High, Medium, Watch) then newest first. Current profiles with none get the default set persisted.
// @Tags        Recommendations
// @Produce     json
//
// @Param       id  path  string  true  "Profile id"
//
// @Success     200  {object}  handlers.RecommendationsResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown profile"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /ai-recommendations/{id} [get]
func (h *Handlers) GetRecommendations(c *gin.Context) {
	recs, err := h.recSvc.List(c.Request.Context(), c.Param("id"), h.today())
	if err != nil {
		writeError(c, err)
		return
	}
	out := RecommendationsResponse{Recommendations: make([]RecommendationItem, 0, len(recs))}
	for _, r := range recs {
		out.Recommendations = append(out.Recommendations, RecommendationItem{
			ID:          r.ID,
			Priority:    r.Priority,
			Title:       r.Title,
			Description: r.Description,
			Type:        r.RecommendationType,
		})
	}
	ok(c, http.StatusOK, out)
}
