package dto

type CheckInRequest struct {
	DestinationID uint    `json:"destination_id" binding:"required"`
	Latitude      float64 `json:"latitude" binding:"required"`
	Longitude     float64 `json:"longitude" binding:"required"`
	Method        string  `json:"method" binding:"required,oneof=qr_code gps manual"`
	QRToken       string  `json:"qr_token"`
}

type LedgerAdjustmentRequest struct {
	UserID      string `json:"user_id" binding:"required,uuid"`
	Delta       int    `json:"delta" binding:"required"`
	Description string `json:"description" binding:"required,max=255"`
}
