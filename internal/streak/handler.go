package streak

import (
	"net/http"
	"strconv"

	"sportbeacon/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	tracker Tracker
}

func NewHandler(tracker Tracker) *Handler {
	return &Handler{tracker: tracker}
}

// Get godoc
// @Summary      Tipping streak of a user
// @Tags         streaks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  Result
// @Failure      400  {object}  api.ErrorResponse
// @Router       /users/{id}/streak [get]
func (h *Handler) Get(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user id"})
		return
	}

	res, err := h.tracker.ForTipper(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to compute streak"})
		return
	}

	c.JSON(http.StatusOK, res)
}
