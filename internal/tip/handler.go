package tip

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

// Submit godoc
// @Summary      Send a tip
// @Description  Charges the tipper and credits the creator. Pass an Idempotency-Key header to make client retries safe.
// @Tags         tips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string            false  "Client retry token"
// @Param        request          body      SubmitTipRequest  true   "Tip data"
// @Success      201  {object}  Tip
// @Failure      400  {object}  api.ErrorResponse
// @Failure      402  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /tips [post]
func (h *Handler) Submit(c *gin.Context) {
	tipperID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	var req SubmitTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
		return
	}

	t, err := h.service.Submit(c.Request.Context(), tipperID, req, c.GetHeader("Idempotency-Key"))
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, t)
	case errors.Is(err, ErrAmountInvalid), errors.Is(err, ErrAmountTooLarge),
		errors.Is(err, ErrSelfTip), errors.Is(err, ErrMissingParty):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrCreatorNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case t != nil && t.Status == StatusFailed:
		c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to submit tip"})
	}
}

// ListSent godoc
// @Summary      Tips sent by the current user
// @Tags         tips
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max rows"
// @Success      200    {array}   Tip
// @Router       /tips/me [get]
func (h *Handler) ListSent(c *gin.Context) {
	tipperID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	tips, err := h.service.ListByTipper(c.Request.Context(), tipperID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list tips"})
		return
	}

	c.JSON(http.StatusOK, tips)
}

// ListReceived godoc
// @Summary      Tips received by a creator
// @Description  Creators see their own history; admins see anyone's.
// @Tags         tips
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      int  true   "Creator ID"
// @Param        limit  query     int  false  "Max rows"
// @Success      200    {array}   Tip
// @Failure      403    {object}  api.ErrorResponse
// @Router       /creators/{id}/tips [get]
func (h *Handler) ListReceived(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	creatorID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid creator id"})
		return
	}

	role, _ := auth.GetUserRole(c)
	if creatorID != userID && role != auth.RoleAdmin {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "not your tips"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	tips, err := h.service.ListByCreator(c.Request.Context(), creatorID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list tips"})
		return
	}

	c.JSON(http.StatusOK, tips)
}

// Refund godoc
// @Summary      Refund a completed tip
// @Description  Admin only. Tips consumed by a payout allocation are not refundable.
// @Tags         tips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int            true  "Tip ID"
// @Param        request  body      RefundRequest  true  "Refund reason"
// @Success      200  {object}  Tip
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /admin/tips/{id}/refund [post]
func (h *Handler) Refund(c *gin.Context) {
	tipID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid tip id"})
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
		return
	}

	t, err := h.service.Refund(c.Request.Context(), tipID, req.Reason)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, t)
	case errors.Is(err, ErrTipNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotRefundable), errors.Is(err, ErrTipAllocated):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to refund tip"})
	}
}
