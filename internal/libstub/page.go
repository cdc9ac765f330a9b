package libstub

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookshelf-qa/library-e2e/internal/models"
)

const booksPageTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
	<meta charset="utf-8">
	<title>Gerenciar Livros</title>
</head>
<body>
	<main>
		<h1>📚 Gerenciar Livros</h1>
		{{if .Error}}<p class="alert alert-danger">{{.Error}}</p>{{end}}
		<form id="bookForm" method="post" action="/livros.html">
			<label for="nome">Nome</label>
			<input id="nome" name="nome" type="text" required>
			<label for="autor">Autor</label>
			<input id="autor" name="autor" type="text" required>
			<label for="paginas">Páginas</label>
			<input id="paginas" name="paginas" type="number" min="0">
			<label for="descricao">Descrição</label>
			<textarea id="descricao" name="descricao"></textarea>
			<label for="imagemUrl">URL da imagem</label>
			<input id="imagemUrl" name="imagemUrl" type="text">
			<label for="estoque">Estoque</label>
			<input id="estoque" name="estoque" type="number" min="0" value="1">
			<label for="preco">Preço</label>
			<input id="preco" name="preco" type="number" min="0" step="0.01" value="0">
			<button type="submit" class="btn btn-primary">Adicionar Livro</button>
		</form>
		<section id="books">
		{{range .Books}}
			<div class="book-card" data-id="{{.ID}}">
				<h3>{{.Name}}</h3>
				<p>Autor: {{.Author}}</p>
				<p>Páginas: {{.Pages}}</p>
				<p>Estoque: {{.Stock}}</p>
				<p>Preço: R$ {{price .Price}}</p>
				<form method="post" action="/livros.html/{{.ID}}/excluir" onsubmit="return confirm('Deseja deletar este livro?')">
					<button type="submit" class="btn btn-danger">🗑️ Deletar Livro</button>
				</form>
			</div>
		{{end}}
		</section>
	</main>
</body>
</html>`

type booksPageData struct {
	Books []models.Book
	Error string
}

func (s *Server) booksPage(c *gin.Context) {
	c.HTML(http.StatusOK, "livros.html", booksPageData{Books: s.store.Books()})
}

// booksPageCreate handles the form post and redirects back to the page,
// which renders a fresh form.
func (s *Server) booksPageCreate(c *gin.Context) {
	book := models.Book{
		Name:        strings.TrimSpace(c.PostForm("nome")),
		Author:      strings.TrimSpace(c.PostForm("autor")),
		Pages:       formInt(c, "paginas", 0),
		Description: c.PostForm("descricao"),
		ImageURL:    c.PostForm("imagemUrl"),
		Stock:       formInt(c, "estoque", 1),
		Price:       formFloat(c, "preco"),
	}
	if _, err := s.store.CreateBook(book); err != nil {
		c.HTML(http.StatusBadRequest, "livros.html", booksPageData{
			Books: s.store.Books(),
			Error: models.MsgInvalidPayload,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/livros.html")
}

func (s *Server) booksPageDelete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err == nil {
		// a missing book just re-renders the list
		_ = s.store.DeleteBook(id)
	}
	c.Redirect(http.StatusSeeOther, "/livros.html")
}

func formInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.PostForm(key)))
	if err != nil {
		return def
	}
	return v
}

func formFloat(c *gin.Context, key string) float64 {
	raw := strings.ReplaceAll(strings.TrimSpace(c.PostForm(key)), ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
