package libstub

import (
	"fmt"

	"github.com/bookshelf-qa/library-e2e/internal/models"
)

var seedTitles = []string{
	"Dom Casmurro", "Memórias Póstumas de Brás Cubas", "O Cortiço", "Vidas Secas",
	"Capitães da Areia", "Grande Sertão: Veredas", "A Hora da Estrela", "Iracema",
	"O Guarani", "Macunaíma", "Quincas Borba", "Senhora", "Triste Fim de Policarpo Quaresma",
	"O Alienista", "Menino do Engenho", "Fogo Morto", "O Tempo e o Vento",
	"Incidente em Antares", "Sagarana", "Gabriela, Cravo e Canela", "Dona Flor e Seus Dois Maridos",
	"Mar Morto", "A Moreninha", "Lucíola", "O Ateneu", "Os Sertões",
	"Claro Enigma", "Morte e Vida Severina", "Perto do Coração Selvagem", "O Quinze",
}

// Seed fills the store with the catalog and accounts the suite expects:
// books 1..30 and users 1 (admin), 2 (funcionario), 3 (aluno).
func (s *Store) Seed() error {
	for i, title := range seedTitles {
		_, err := s.CreateBook(models.Book{
			Name:        title,
			Author:      fmt.Sprintf("Autor %02d", i+1),
			Pages:       120 + 10*i,
			Description: "Exemplar do acervo inicial",
			ImageURL:    fmt.Sprintf("https://picsum.photos/seed/livro%d/200/300", i+1),
			Stock:       5,
			Price:       29.9 + float64(i),
		})
		if err != nil {
			return fmt.Errorf("seed book %q: %w", title, err)
		}
	}

	accounts := []struct {
		name  string
		email string
		kind  models.UserType
	}{
		{"Administrador", "admin@biblioteca.com", models.UserTypeAdmin},
		{"Funcionário Padrão", "funcionario@biblioteca.com", models.UserTypeEmployee},
		{"Aluno Padrão", "aluno@biblioteca.com", models.UserTypeStudent},
	}
	for _, a := range accounts {
		if _, err := s.addUser(a.name, a.email, "123456", a.kind); err != nil {
			return fmt.Errorf("seed user %s: %w", a.email, err)
		}
	}
	return nil
}
