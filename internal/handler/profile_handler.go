package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"lakbay.com/lakbaypoints/internal/repository"
	"lakbay.com/lakbaypoints/internal/service"
	"lakbay.com/lakbaypoints/pkg/response"
)

type ProfileHandler struct {
	users  repository.UserRepository
	awards service.AwardService
	ledger service.LedgerService
}

func NewProfileHandler(users repository.UserRepository, awards service.AwardService, ledger service.LedgerService) *ProfileHandler {
	return &ProfileHandler{users: users, awards: awards, ledger: ledger}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"level_status": service.StatusFor(user.TotalPoints),
	})
}

func (h *ProfileHandler) Badges(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	progress, err := h.awards.Progress(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": progress})
}

func (h *ProfileHandler) Ledger(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, offset := pagination(c)
	entries, err := h.ledger.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	balance, err := h.ledger.CurrentBalance(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance": balance,
		"entries": entries,
	})
}
