package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"lakbay.com/lakbaypoints/internal/dto"
	"lakbay.com/lakbaypoints/internal/model"
	"lakbay.com/lakbaypoints/internal/repository"
	"lakbay.com/lakbaypoints/internal/service"
	"lakbay.com/lakbaypoints/pkg/response"
	"lakbay.com/lakbaypoints/pkg/validator"
)

type AdminHandler struct {
	destinations repository.DestinationRepository
	badges       repository.BadgeRepository
	ledger       service.LedgerService
	awards       service.AwardService
}

func NewAdminHandler(
	destinations repository.DestinationRepository,
	badges repository.BadgeRepository,
	ledger service.LedgerService,
	awards service.AwardService,
) *AdminHandler {
	return &AdminHandler{
		destinations: destinations,
		badges:       badges,
		ledger:       ledger,
		awards:       awards,
	}
}

func (h *AdminHandler) CreateDestination(c *gin.Context) {
	var req dto.CreateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	destination := &model.Destination{
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		City:            req.City,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		VisitRadiusM:    req.VisitRadiusM,
		QRCode:          req.QRCode,
		BasePoints:      req.BasePoints,
		BonusMultiplier: req.BonusMultiplier,
		Active:          true,
	}
	if destination.BonusMultiplier == 0 {
		destination.BonusMultiplier = 1
	}

	if err := h.destinations.Create(c.Request.Context(), destination); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, destination)
}

func (h *AdminHandler) CreateBadge(c *gin.Context) {
	var req dto.CreateBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	badge := &model.Badge{
		Name:               req.Name,
		Slug:               req.Slug,
		Description:        req.Description,
		Icon:               req.Icon,
		RequirementType:    model.RequirementType(req.RequirementType),
		RequirementValue:   req.RequirementValue,
		RequirementDetails: req.RequirementDetails,
		PointsReward:       req.PointsReward,
		Active:             true,
		Hidden:             req.Hidden,
	}

	if err := h.badges.Create(c.Request.Context(), badge); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, badge)
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	category := &model.Category{Name: req.Name, Slug: req.Slug}
	if err := h.destinations.CreateCategory(c.Request.Context(), category); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// Adjust appends a manual ledger entry (support corrections, promo grants)
// and re-runs the award pass, since a points badge may now be complete.
func (h *AdminHandler) Adjust(c *gin.Context) {
	var req dto.LedgerAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	entry, err := h.ledger.Append(c.Request.Context(), userID, req.Delta,
		model.SourceAdjustment, "", req.Description)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	newBadges, err := h.awards.EvaluateAndAward(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entry":      entry,
		"new_badges": newBadges,
	})
}
