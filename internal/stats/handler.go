package stats

import (
	"errors"
	"net/http"
	"strconv"

	"sportbeacon/internal/api"
	"sportbeacon/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Earnings godoc
// @Summary      Creator ledger aggregate
// @Description  Full stats row: totals, tip count, streak, tier. Creators see their own; admins see anyone's.
// @Tags         earnings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Creator ID"
// @Success      200  {object}  CreatorStats
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /creators/{id}/earnings [get]
func (h *Handler) Earnings(c *gin.Context) {
	creatorID, ok := h.authorizedCreator(c)
	if !ok {
		return
	}

	s, err := h.service.Get(c.Request.Context(), creatorID)
	if err != nil {
		if errors.Is(err, ErrStatsNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "no earnings yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load earnings"})
		return
	}

	c.JSON(http.StatusOK, s)
}

// Summary godoc
// @Summary      Creator earnings summary
// @Description  Lifetime, weekly and monthly earnings. A creator with no tips gets a zero summary, not a 404.
// @Tags         earnings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Creator ID"
// @Success      200  {object}  EarningsSummary
// @Failure      403  {object}  api.ErrorResponse
// @Router       /creators/{id}/earnings/summary [get]
func (h *Handler) Summary(c *gin.Context) {
	creatorID, ok := h.authorizedCreator(c)
	if !ok {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), creatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) authorizedCreator(c *gin.Context) (int, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return 0, false
	}

	creatorID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid creator id"})
		return 0, false
	}

	role, _ := auth.GetUserRole(c)
	if creatorID != userID && role != auth.RoleAdmin {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "not your earnings"})
		return 0, false
	}
	return creatorID, true
}
