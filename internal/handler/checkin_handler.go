package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"lakbay.com/lakbaypoints/internal/dto"
	"lakbay.com/lakbaypoints/internal/model"
	"lakbay.com/lakbaypoints/internal/service"
	"lakbay.com/lakbaypoints/pkg/response"
	"lakbay.com/lakbaypoints/pkg/validator"
)

type CheckInHandler struct {
	service service.CheckInService
}

func NewCheckInHandler(service service.CheckInService) *CheckInHandler {
	return &CheckInHandler{service: service}
}

func (h *CheckInHandler) CheckIn(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	result, err := h.service.CheckIn(c.Request.Context(), userID, service.CheckInInput{
		DestinationID: req.DestinationID,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Method:        model.CheckInMethod(req.Method),
		QRToken:       req.QRToken,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *CheckInHandler) History(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, offset := pagination(c)
	checkIns, err := h.service.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"check_ins": checkIns})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
