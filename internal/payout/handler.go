package payout

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

// Request godoc
// @Summary      Request a payout
// @Description  Allocates the amount against the creator's completed, unrefunded tips.
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      RequestPayoutRequest  true  "Payout data"
// @Success      201  {object}  Request
// @Failure      400  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /payouts [post]
func (h *Handler) Request(c *gin.Context) {
	creatorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	var req RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
		return
	}

	p, err := h.service.Request(c.Request.Context(), creatorID, req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, p)
	case errors.Is(err, ErrBelowMinimum):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrInsufficientBalance):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to request payout"})
	}
}

// List godoc
// @Summary      Payout history of the current creator
// @Tags         payouts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  Request
// @Router       /payouts/history [get]
func (h *Handler) List(c *gin.Context) {
	creatorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	payouts, err := h.service.ListByCreator(c.Request.Context(), creatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list payouts"})
		return
	}

	c.JSON(http.StatusOK, payouts)
}

// Get godoc
// @Summary      One payout with its allocation breakdown
// @Tags         payouts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Payout ID"
// @Success      200  {object}  Request
// @Failure      404  {object}  api.ErrorResponse
// @Router       /payouts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	creatorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	payoutID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid payout id"})
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), payoutID)
	if err != nil {
		if errors.Is(err, ErrPayoutNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load payout"})
		return
	}

	if p.CreatorID != creatorID {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "not your payout"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// Complete godoc
// @Summary      Mark a payout settled
// @Description  Admin only. The allocated tip balances stay consumed.
// @Tags         payouts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Payout ID"
// @Success      200  {object}  Request
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /payouts/{id}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	h.resolve(c, true)
}

// Fail godoc
// @Summary      Mark a payout failed
// @Description  Admin only. Releases the allocated tip balances.
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int             true  "Payout ID"
// @Param        request  body      ResolveRequest  false  "Failure reason"
// @Success      200  {object}  Request
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /payouts/{id}/fail [post]
func (h *Handler) Fail(c *gin.Context) {
	h.resolve(c, false)
}

func (h *Handler) resolve(c *gin.Context, success bool) {
	payoutID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid payout id"})
		return
	}

	var req ResolveRequest
	if !success {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
			return
		}
	}

	p, err := h.service.Resolve(c.Request.Context(), payoutID, success, req.Reason)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, p)
	case errors.Is(err, ErrPayoutNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrAlreadyResolved):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to resolve payout"})
	}
}

// GetSettings godoc
// @Summary      Payout destination of the current creator
// @Tags         payouts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Settings
// @Failure      404  {object}  api.ErrorResponse
// @Router       /payouts/settings [get]
func (h *Handler) GetSettings(c *gin.Context) {
	creatorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	settings, err := h.service.GetSettings(c.Request.Context(), creatorID)
	if err != nil {
		if errors.Is(err, ErrSettingsNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary      Update the payout destination
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      UpdateSettingsRequest  true  "Destination"
// @Success      200  {object}  Settings
// @Failure      400  {object}  api.ErrorResponse
// @Router       /payouts/settings [put]
func (h *Handler) UpdateSettings(c *gin.Context) {
	creatorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), creatorID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}
