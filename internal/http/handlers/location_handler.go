package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
)

// FarmLocationRequest is the JSON payload for PUT /farm-location/{id}.
// Latitude and Longitude are required.
type FarmLocationRequest struct {
	FarmName     *string  `json:"farmName,omitempty"     example:"Sunrise Acres"`
	Latitude     *float64 `json:"latitude"               example:"-1.2921"`
	Longitude    *float64 `json:"longitude"              example:"36.8219"`
	SizeHectares *float64 `json:"sizeHectares,omitempty" example:"12.5"`
}

// ProfileResponse is a profile including its farm fields.
type ProfileResponse struct {
	UserResponse
	FarmName         *string  `json:"farmName,omitempty"`
	FarmLatitude     *float64 `json:"farmLatitude,omitempty"`
	FarmLongitude    *float64 `json:"farmLongitude,omitempty"`
	FarmSizeHectares *float64 `json:"farmSizeHectares,omitempty"`
}

// RefreshResponse acknowledges a scheduled ingestion run.
type RefreshResponse struct {
	Status string `json:"status" example:"accepted"`
}

func profileResponse(p domain.UserProfile) ProfileResponse {
	return ProfileResponse{
		UserResponse:     userResponse(p),
		FarmName:         p.FarmName,
		FarmLatitude:     p.FarmLatitude,
		FarmLongitude:    p.FarmLongitude,
		FarmSizeHectares: p.FarmSizeHectares,
	}
}

// UpdateFarmLocation godoc
// @ID          updateFarmLocation
// @Summary     Set farm coordinates
// @Description Updates the farm location of a current-schema profile and schedules a NASA POWER ingestion run.
// @Tags        Farm
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                        true  "Profile id"
// @Param       body  body  handlers.FarmLocationRequest  true  "Farm location"
//
// @Success     200  {object}  handlers.ProfileResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid coordinates or legacy profile"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown profile"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /farm-location/{id} [put]
func (h *Handlers) UpdateFarmLocation(c *gin.Context) {
	var req FarmLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "latitude and longitude are required")
		return
	}

	p, err := h.locSvc.UpdateFarmLocation(c.Request.Context(), c.Param("id"), repo.FarmLocation{
		FarmName:     req.FarmName,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		SizeHectares: req.SizeHectares,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, profileResponse(p))
}

// RefreshNASAData godoc
// @ID          refreshNasaData
// @Summary     Refresh NASA data
// @Description Schedules a background NASA POWER ingestion run for the profile.
// @Tags        Farm
// @Produce     json
//
// @Param       id  path  string  true  "Profile id"
//
// @Success     202  {object}  handlers.RefreshResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown profile"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /nasa-refresh/{id} [post]
func (h *Handlers) RefreshNASAData(c *gin.Context) {
	if err := h.locSvc.Refresh(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusAccepted, RefreshResponse{Status: "accepted"})
}
