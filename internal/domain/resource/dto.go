package resource

import "github.com/shopspring/decimal"

type SetStatusRequest struct {
	Type   string `json:"type" binding:"required"`
	ID     int64  `json:"id" binding:"required,gt=0"`
	Status string `json:"status" binding:"required"`
}

type MoveRequest struct {
	Type string           `json:"type" binding:"required"`
	ID   int64            `json:"id" binding:"required,gt=0"`
	X    *decimal.Decimal `json:"x" binding:"required"`
	Y    *decimal.Decimal `json:"y" binding:"required"`
}
