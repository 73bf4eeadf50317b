package dto

type CreateDestinationRequest struct {
	Name            string  `json:"name" binding:"required,max=150"`
	Slug            string  `json:"slug" binding:"required,max=170"`
	Description     string  `json:"description"`
	CategoryID      uint    `json:"category_id" binding:"required"`
	City            string  `json:"city" binding:"required,max=100"`
	Latitude        float64 `json:"latitude" binding:"required,latitude"`
	Longitude       float64 `json:"longitude" binding:"required,longitude"`
	VisitRadiusM    float64 `json:"visit_radius_m"`
	QRCode          string  `json:"qr_code"`
	BasePoints      int     `json:"base_points" binding:"required,min=1"`
	BonusMultiplier float64 `json:"bonus_multiplier"`
}

type CreateBadgeRequest struct {
	Name               string `json:"name" binding:"required,max=100"`
	Slug               string `json:"slug" binding:"required,max=120"`
	Description        string `json:"description"`
	Icon               string `json:"icon"`
	RequirementType    string `json:"requirement_type" binding:"required,oneof=visits points checkins categories custom"`
	RequirementValue   int    `json:"requirement_value" binding:"required,min=1"`
	RequirementDetails string `json:"requirement_details"`
	PointsReward       int    `json:"points_reward" binding:"min=0"`
	Hidden             bool   `json:"hidden"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"required,max=120"`
}
