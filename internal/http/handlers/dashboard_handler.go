package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MarketResponse is the nearest market shown on the dashboard.
type MarketResponse struct {
	Name     string `json:"name"     example:"Central Farmers Market"`
	Distance string `json:"distance" example:"12km"`
}

// DashboardResponse is returned by GET /dashboard/{id}. CurrentRank is
// omitted for legacy profiles.
type DashboardResponse struct {
	FirstName       string         `json:"firstName"`
	LastName        string         `json:"lastName"`
	CreditPoints    int            `json:"creditPoints"    example:"1247"`
	CurrentRank     *string        `json:"currentRank,omitempty" example:"Gold"`
	FarmHealth      float64        `json:"farmHealth"      example:"85"`
	ActiveNeighbors int64          `json:"activeNeighbors" example:"23"`
	NearestMarket   MarketResponse `json:"nearestMarket"`
}

// GetDashboard godoc
// @ID          getDashboard
// @Summary     Unified farm dashboard
// @Description Resolves the id against both profile schemas and returns credits, farm health, neighbors and the nearest market, seeding credit metrics on first access.
// @Tags        Dashboard
// @Produce     json
//
// @Param       id  path  string  true  "Profile id (UUID or legacy id)"
//
// @Success     200  {object}  handlers.DashboardResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown profile"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /dashboard/{id} [get]
func (h *Handlers) GetDashboard(c *gin.Context) {
	v, err := h.dashSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := DashboardResponse{
		FirstName:       v.FirstName,
		LastName:        v.LastName,
		CreditPoints:    v.CreditPoints,
		FarmHealth:      v.FarmHealth,
		ActiveNeighbors: v.ActiveNeighbors,
		NearestMarket:   MarketResponse{Name: v.NearestMarket.Name, Distance: v.NearestMarket.Distance},
	}
	if v.Identity.IsCurrent() {
		resp.CurrentRank = v.CurrentRank
	}
	ok(c, http.StatusOK, resp)
}
