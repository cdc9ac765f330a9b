package models

import "math"

// PurchaseStatus is the lifecycle state of a purchase.
type PurchaseStatus string

const (
	PurchasePending  PurchaseStatus = "PENDENTE"
	PurchaseApproved PurchaseStatus = "APROVADO"
)

// Purchase is a stock-decrementing acquisition record.
type Purchase struct {
	ID        int            `json:"id,omitempty"`
	UserID    int            `json:"usuarioId,omitempty"`
	BookID    int            `json:"livroId,omitempty"`
	Quantity  int            `json:"quantidade,omitempty"`
	Status    PurchaseStatus `json:"status"`
	Total     float64        `json:"total"`
	CreatedAt string         `json:"criadoEm,omitempty"`
}

// PurchaseRequest is the body of POST /compras.
type PurchaseRequest struct {
	UserID   int `json:"usuarioId"`
	BookID   int `json:"livroId"`
	Quantity int `json:"quantidade"`
}

// ExpectedTotal is unit price times quantity.
func ExpectedTotal(unitPrice float64, quantity int) float64 {
	return unitPrice * float64(quantity)
}

// SameAmount compares two monetary values to the cent.
func SameAmount(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}
