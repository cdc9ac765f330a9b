package scenarios

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bookshelf-qa/library-e2e/internal/models"
	"github.com/bookshelf-qa/library-e2e/internal/schema"
)

func catalogBook() models.Book {
	return models.Book{
		Name:        "Catalog Test Book",
		Author:      "Tech Author Catalog",
		Pages:       212,
		Description: "A book created to test the catalog endpoints",
		ImageURL:    "https://exemplo.com/imagem.jpg",
		Stock:       4,
		Price:       44.5,
	}
}

func bookCases() []Case {
	return []Case{
		{ID: "CT-API-001", Suite: SuiteBooks, Title: "Create a book", Run: createBook},
		{ID: "CT-API-002", Suite: SuiteBooks, Title: "Read a book", Run: readBook},
		{ID: "CT-API-003", Suite: SuiteBooks, Title: "Update book stock", Run: updateBookStock},
	}
}

func sameCatalogFields(step string, want, got models.Book) error {
	return expectf(step,
		want.Name == got.Name && want.Author == got.Author && want.Pages == got.Pages &&
			want.Stock == got.Stock && models.SameAmount(want.Price, got.Price),
		fmt.Sprintf("%+v", want), fmt.Sprintf("%+v", got))
}

func createBook(ctx context.Context, env *Env) error {
	want := catalogBook()
	created, resp, err := env.API.Books.Create(ctx, want)
	if err != nil {
		return err
	}
	if err := expectStatus("create book", resp, http.StatusCreated); err != nil {
		return err
	}
	if err := expectContract(env, "create book", schema.KindBook, resp); err != nil {
		return err
	}
	return sameCatalogFields("create book echoes fields", want, *created)
}

func readBook(ctx context.Context, env *Env) error {
	created, err := env.Fixtures.CreateBook(ctx, catalogBook())
	if err != nil {
		return err
	}

	got, resp, err := env.API.Books.Get(ctx, created.ID)
	if err != nil {
		return err
	}
	if err := expectStatus("read book", resp, http.StatusOK); err != nil {
		return err
	}
	if err := expectContract(env, "read book", schema.KindBook, resp); err != nil {
		return err
	}
	if err := expectf("read book id", got.ID == created.ID, fmt.Sprint(created.ID), got.ID); err != nil {
		return err
	}
	return sameCatalogFields("read book fields", *created, *got)
}

func updateBookStock(ctx context.Context, env *Env) error {
	book, err := env.Fixtures.CreateBook(ctx, catalogBook())
	if err != nil {
		return err
	}

	want := book.Stock + 3
	book.Stock = want
	_, resp, err := env.API.Books.Update(ctx, book.ID, *book)
	if err != nil {
		return err
	}
	if err := expectStatus("update stock", resp, http.StatusOK); err != nil {
		return err
	}

	after, err := env.Fixtures.Book(ctx, book.ID)
	if err != nil {
		return err
	}
	return expectf("stock after update", after.Stock == want, fmt.Sprintf("estoque %d", want), after.Stock)
}
