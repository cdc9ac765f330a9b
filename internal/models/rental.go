package models

// RentalStatus is the lifecycle state of a rental.
type RentalStatus string

const (
	RentalPending  RentalStatus = "PENDENTE"
	RentalApproved RentalStatus = "APROVADO"
	RentalRejected RentalStatus = "REJEITADO"
	RentalReturned RentalStatus = "DEVOLVIDO"
)

// Valid reports whether the application accepts s as a rental status.
func (s RentalStatus) Valid() bool {
	switch s {
	case RentalPending, RentalApproved, RentalRejected, RentalReturned:
		return true
	}
	return false
}

// Rental is a time-bounded loan record.
type Rental struct {
	ID        int          `json:"id"`
	UserID    int          `json:"usuarioId"`
	BookID    int          `json:"livroId"`
	StartDate string       `json:"dataInicio,omitempty"`
	EndDate   string       `json:"dataFim,omitempty"`
	Status    RentalStatus `json:"status"`
	CreatedAt string       `json:"criadoEm,omitempty"`
}

// RentalRequest is the body of POST /arrendamentos.
type RentalRequest struct {
	UserID    int    `json:"usuarioId"`
	BookID    int    `json:"livroId"`
	StartDate string `json:"dataInicio"`
	EndDate   string `json:"dataFim"`
}

// StatusUpdate is the body of PUT /arrendamentos/{id}/status.
type StatusUpdate struct {
	Status RentalStatus `json:"status"`
}
