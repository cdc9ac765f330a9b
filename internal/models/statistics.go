package models

// Statistics is the aggregate snapshot served by /estatisticas.
type Statistics struct {
	TotalBooks       int         `json:"totalLivros"`
	TotalPages       int         `json:"totalPaginas"`
	TotalUsers       int         `json:"totalUsuarios"`
	AvailableBooks   int         `json:"livrosDisponiveis"`
	PendingRentals   int         `json:"arrendamentosPendentes"`
	PendingPurchases int         `json:"comprasPendentes"`
	UsersByType      UsersByType `json:"usuariosPorTipo"`
}

// UsersByType breaks the user total down by account type.
type UsersByType struct {
	Students  int `json:"alunos"`
	Employees int `json:"funcionarios"`
	Admins    int `json:"admins"`
}

// Sum adds every per-type count.
func (u UsersByType) Sum() int {
	return u.Students + u.Employees + u.Admins
}

// Consistent reports whether the per-type breakdown adds up to TotalUsers.
func (s *Statistics) Consistent() bool {
	return s.UsersByType.Sum() == s.TotalUsers
}
