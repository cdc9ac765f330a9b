package models

import "strconv"

// Book is a catalog entry as serialized by the /livros endpoints.
type Book struct {
	ID          int     `json:"id,omitempty"`
	Name        string  `json:"nome"`
	Author      string  `json:"autor"`
	Pages       int     `json:"paginas"`
	Description string  `json:"descricao"`
	ImageURL    string  `json:"imagemUrl"`
	Stock       int     `json:"estoque"`
	Price       float64 `json:"preco"`
	// CreatedAt is kept as served; deployments differ on date vs timestamp.
	CreatedAt string `json:"dataCadastro,omitempty"`
}

// InStock reports whether at least one copy is available.
func (b *Book) InStock() bool {
	return b.Stock > 0
}

// PriceLabel renders the price the way the books page shows it.
func (b *Book) PriceLabel() string {
	return "R$ " + FormatPrice(b.Price)
}

// FormatPrice prints a price without trailing zeros (49.9, 57, 39.95).
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
