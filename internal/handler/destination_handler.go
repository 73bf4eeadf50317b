package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"lakbay.com/lakbaypoints/internal/repository"
	"lakbay.com/lakbaypoints/internal/service"
	"lakbay.com/lakbaypoints/pkg/response"
)

type DestinationHandler struct {
	destinations repository.DestinationRepository
	leaderboard  service.LeaderboardService
}

func NewDestinationHandler(destinations repository.DestinationRepository, leaderboard service.LeaderboardService) *DestinationHandler {
	return &DestinationHandler{destinations: destinations, leaderboard: leaderboard}
}

func (h *DestinationHandler) GetAll(c *gin.Context) {
	city := c.Query("city")
	categoryID, _ := strconv.Atoi(c.DefaultQuery("category_id", "0"))

	destinations, err := h.destinations.FindAll(c.Request.Context(), city, uint(categoryID))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"destinations": destinations})
}

func (h *DestinationHandler) GetCategories(c *gin.Context) {
	categories, err := h.destinations.FindAllCategories(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *DestinationHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
