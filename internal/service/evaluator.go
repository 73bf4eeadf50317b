package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"lakbay.com/lakbaypoints/internal/model"
	"lakbay.com/lakbaypoints/internal/repository"
)

// Evaluator computes how far a user is toward a badge's requirement. It is
// pure with respect to badge state: persisting the result is the award
// coordinator's job.
type Evaluator struct {
	repos repository.Repos
}

func NewEvaluator(repos repository.Repos) *Evaluator {
	return &Evaluator{repos: repos}
}

// customRule is the payload carried by custom badges. Only one key is
// expected per badge; when several are present the first recognized one wins,
// in the order destination_ids, city, category_id. That ordered fallback
// mirrors the historical behavior and is deliberately not a merge.
type customRule struct {
	DestinationIDs []uint `json:"destination_ids"`
	City           string `json:"city"`
	CategoryID     uint   `json:"category_id"`
}

// CurrentValue returns the raw metric behind a badge's requirement.
func (e *Evaluator) CurrentValue(ctx context.Context, userID uuid.UUID, badge model.Badge) (int, error) {
	switch badge.RequirementType {
	case model.RequirementVisits:
		n, err := e.repos.CheckIns().CountVerified(ctx, userID)
		return int(n), err
	case model.RequirementPoints:
		return e.repos.Ledger().SumEarned(ctx, userID)
	case model.RequirementCheckIns:
		n, err := e.repos.CheckIns().CountDistinctDestinations(ctx, userID)
		return int(n), err
	case model.RequirementCategories:
		n, err := e.repos.CheckIns().CountDistinctCategories(ctx, userID)
		return int(n), err
	case model.RequirementCustom:
		return e.customValue(ctx, userID, badge.RequirementDetails)
	default:
		// Unknown requirement types score zero rather than failing the pass.
		return 0, nil
	}
}

func (e *Evaluator) customValue(ctx context.Context, userID uuid.UUID, details string) (int, error) {
	details = strings.TrimSpace(details)
	if details == "" {
		return 0, nil
	}

	var rule customRule
	if err := json.Unmarshal([]byte(details), &rule); err != nil {
		// A malformed payload on one badge must not block the rest of the
		// evaluation pass.
		return 0, nil
	}

	switch {
	case len(rule.DestinationIDs) > 0:
		n, err := e.repos.CheckIns().CountAtDestinations(ctx, userID, rule.DestinationIDs)
		return int(n), err
	case rule.City != "":
		n, err := e.repos.CheckIns().CountInCity(ctx, userID, rule.City)
		return int(n), err
	case rule.CategoryID != 0:
		n, err := e.repos.CheckIns().CountInCategory(ctx, userID, rule.CategoryID)
		return int(n), err
	default:
		return 0, nil
	}
}

// ProgressPercent is min(100, floor(current/required*100)), 0 when the
// requirement is unset.
func ProgressPercent(currentValue, requirementValue int) int {
	if requirementValue <= 0 {
		return 0
	}
	pct := currentValue * 100 / requirementValue
	if pct > 100 {
		return 100
	}
	return pct
}

// Completed reports whether the requirement is met. Badges with a
// non-positive requirement never complete; a zero threshold is a
// misconfiguration, not a free badge.
func Completed(currentValue, requirementValue int) bool {
	return requirementValue > 0 && currentValue >= requirementValue
}
