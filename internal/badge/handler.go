package badge

import (
	"net/http"
	"strconv"

	"sportbeacon/internal/api"
	"sportbeacon/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	evaluator Evaluator
}

func NewHandler(evaluator Evaluator) *Handler {
	return &Handler{evaluator: evaluator}
}

// ListMine godoc
// @Summary      Badges of the current user
// @Tags         badges
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   Badge
// @Failure      401  {object}  api.ErrorResponse
// @Router       /badges/me [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	badges, err := h.evaluator.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list badges"})
		return
	}

	c.JSON(http.StatusOK, badges)
}

// ListByUser godoc
// @Summary      Badges of a user
// @Tags         badges
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {array}   Badge
// @Failure      400  {object}  api.ErrorResponse
// @Router       /users/{id}/badges [get]
func (h *Handler) ListByUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user id"})
		return
	}

	badges, err := h.evaluator.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list badges"})
		return
	}

	c.JSON(http.StatusOK, badges)
}

// Catalog godoc
// @Summary      Badge catalog
// @Description  Returns the read-only criteria catalog.
// @Tags         badges
// @Produce      json
// @Success      200  {array}  Criterion
// @Router       /badges/catalog [get]
func (h *Handler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, Catalog)
}
