// Package pages holds page objects for the library's server-rendered screens.
package pages

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/playwright-community/playwright-go"

	"github.com/bookshelf-qa/library-e2e/internal/models"
)

// BooksTitle is the heading of the books management page.
const BooksTitle = "📚 Gerenciar Livros"

var booksURL = regexp.MustCompile(`livros\.html$`)

// Form controls are matched by element type as well as id.
const (
	nameSelector        = `input[type="text"][id="nome"]`
	authorSelector      = `input[type="text"][id="autor"]`
	pagesSelector       = `input[type="number"][id="paginas"]`
	descriptionSelector = `textarea[id="descricao"]`
	imageURLSelector    = `input[type="text"][id="imagemUrl"]`
	stockSelector       = `input[type="number"][id="estoque"]`
	priceSelector       = `input[type="number"][id="preco"]`
	submitSelector      = `button[type="submit"]`
	deleteSelector      = `button[class="btn btn-danger"]`

	addBookText    = "Adicionar Livro"
	deleteBookText = "Deletar Livro"
)

// BooksPage is the page object for livros.html.
type BooksPage struct {
	page   playwright.Page
	expect playwright.PlaywrightAssertions

	Title            playwright.Locator
	NameField        playwright.Locator
	AuthorField      playwright.Locator
	PagesField       playwright.Locator
	DescriptionField playwright.Locator
	ImageURLField    playwright.Locator
	StockField       playwright.Locator
	PriceField       playwright.Locator
	AddBookButton    playwright.Locator
	DeleteButton     playwright.Locator

	acceptingDialogs bool
}

// NewBooksPage binds the locators to page.
func NewBooksPage(page playwright.Page) *BooksPage {
	return &BooksPage{
		page:   page,
		expect: playwright.NewPlaywrightAssertions(),

		Title:            page.Locator("h1", playwright.PageLocatorOptions{HasText: BooksTitle}),
		NameField:        page.Locator(nameSelector),
		AuthorField:      page.Locator(authorSelector),
		PagesField:       page.Locator(pagesSelector),
		DescriptionField: page.Locator(descriptionSelector),
		ImageURLField:    page.Locator(imageURLSelector),
		StockField:       page.Locator(stockSelector),
		PriceField:       page.Locator(priceSelector),
		AddBookButton:    page.Locator(submitSelector, playwright.PageLocatorOptions{HasText: addBookText}),
		DeleteButton:     page.Locator(deleteSelector, playwright.PageLocatorOptions{HasText: deleteBookText}),
	}
}

// BookCard locates the card showing title by author. When several cards
// match, the last one (most recently added) wins.
func (p *BooksPage) BookCard(title, author string) playwright.Locator {
	return p.page.Locator(".book-card").
		Filter(playwright.LocatorFilterOptions{Has: p.page.Locator("h3", playwright.PageLocatorOptions{HasText: title})}).
		Filter(playwright.LocatorFilterOptions{HasText: "Autor: " + author}).
		Last()
}

// BookByTitle locates card headings with the given title.
func (p *BooksPage) BookByTitle(title string) playwright.Locator {
	return p.page.Locator(".book-card h3", playwright.PageLocatorOptions{HasText: title})
}

// FillFormToAddBook fills every field of the form and submits it.
func (p *BooksPage) FillFormToAddBook(form models.Book) error {
	fields := []struct {
		name    string
		locator playwright.Locator
		value   string
	}{
		{"nome", p.NameField, form.Name},
		{"autor", p.AuthorField, form.Author},
		{"paginas", p.PagesField, strconv.Itoa(form.Pages)},
		{"descricao", p.DescriptionField, form.Description},
		{"imagemUrl", p.ImageURLField, form.ImageURL},
		{"estoque", p.StockField, strconv.Itoa(form.Stock)},
		{"preco", p.PriceField, models.FormatPrice(form.Price)},
	}
	for _, f := range fields {
		if err := f.locator.Fill(f.value); err != nil {
			return fmt.Errorf("fill %s: %w", f.name, err)
		}
	}
	if err := p.AddBookButton.Click(); err != nil {
		return fmt.Errorf("submit book form: %w", err)
	}
	return nil
}

// VerifyBooksTitle checks the heading is visible and the URL ends in livros.html.
func (p *BooksPage) VerifyBooksTitle() error {
	if err := p.expect.Locator(p.Title).ToBeVisible(); err != nil {
		return fmt.Errorf("books title: %w", err)
	}
	if err := p.expect.Page(p.page).ToHaveURL(booksURL); err != nil {
		return fmt.Errorf("books url: %w", err)
	}
	return nil
}

// ValidateAddBookFieldsAfterSubmit checks the form came back reset: text
// fields empty, stock 1, price 0.
func (p *BooksPage) ValidateAddBookFieldsAfterSubmit() error {
	want := []struct {
		name    string
		locator playwright.Locator
		value   string
	}{
		{"nome", p.NameField, ""},
		{"autor", p.AuthorField, ""},
		{"paginas", p.PagesField, ""},
		{"descricao", p.DescriptionField, ""},
		{"imagemUrl", p.ImageURLField, ""},
		{"estoque", p.StockField, "1"},
		{"preco", p.PriceField, "0"},
	}
	for _, w := range want {
		if err := p.expect.Locator(w.locator).ToHaveValue(w.value); err != nil {
			return fmt.Errorf("field %s after submit: %w", w.name, err)
		}
	}
	return nil
}

// ClickOnBookCard clicks a card on its title, clear of the delete button.
func (p *BooksPage) ClickOnBookCard(card playwright.Locator) error {
	return card.Locator("h3").Click()
}

// VerifyBookInfoInCard checks the card shows every catalog field of book.
func (p *BooksPage) VerifyBookInfoInCard(card playwright.Locator, book models.Book) error {
	if err := p.expect.Locator(card.Locator("h3")).ToHaveText(book.Name); err != nil {
		return fmt.Errorf("card title: %w", err)
	}
	lines := []string{
		"Autor: " + book.Author,
		"Páginas: " + strconv.Itoa(book.Pages),
		"Estoque: " + strconv.Itoa(book.Stock),
		"Preço: " + book.PriceLabel(),
	}
	for _, line := range lines {
		if err := p.expect.Locator(card).ToContainText(line); err != nil {
			return fmt.Errorf("card %q: %w", line, err)
		}
	}
	return nil
}

// DeleteBook clicks the card's delete button, accepts the confirmation and
// waits for the card to disappear.
func (p *BooksPage) DeleteBook(card playwright.Locator) error {
	id, err := card.GetAttribute("data-id")
	if err != nil {
		return fmt.Errorf("card id: %w", err)
	}
	if !p.acceptingDialogs {
		p.page.OnDialog(func(d playwright.Dialog) {
			_ = d.Accept()
		})
		p.acceptingDialogs = true
	}
	del := card.Locator(deleteSelector, playwright.LocatorLocatorOptions{HasText: deleteBookText})
	if err := del.Click(); err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	gone := p.page.Locator(fmt.Sprintf(`.book-card[data-id=%q]`, id))
	if err := p.expect.Locator(gone).ToHaveCount(0); err != nil {
		return fmt.Errorf("book %s still listed: %w", id, err)
	}
	return nil
}
