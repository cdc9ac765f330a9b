package scenarios

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bookshelf-qa/library-e2e/internal/models"
	"github.com/bookshelf-qa/library-e2e/internal/schema"
)

func rentalBook() models.Book {
	return models.Book{
		Name:        "Rental Test Book",
		Author:      "Tech Author Rentals",
		Pages:       124,
		Description: "A book created to test rental functionality",
		ImageURL:    "https://exemplo.com/imagem.jpg",
		Stock:       5,
		Price:       49.9,
	}
}

// statusTransition is one row of the rental status table: move a fresh
// PENDENTE rental to Status and check the outcome.
type statusTransition struct {
	ID         string
	Title      string
	Status     models.RentalStatus
	HTTPStatus int
	Message    string
	StockDelta int
}

var statusTransitions = []statusTransition{
	{
		ID:         "CT-API-020",
		Title:      "Update rental status to approved",
		Status:     models.RentalApproved,
		HTTPStatus: http.StatusOK,
		StockDelta: -1,
	},
	{
		ID:         "CT-API-021",
		Title:      "Update rental status to invalid status",
		Status:     "EM_ANALISE",
		HTTPStatus: http.StatusBadRequest,
		Message:    models.MsgInvalidStatus,
	},
}

func rentalCases() []Case {
	cases := []Case{
		{ID: "CT-API-018", Suite: SuiteRentals, Title: "Valid book rental", Run: validRental},
		{ID: "CT-API-019", Suite: SuiteRentals, Title: "Rental a book without stock", Run: rentalWithoutStock},
	}
	for _, tr := range statusTransitions {
		cases = append(cases, Case{ID: tr.ID, Suite: SuiteRentals, Title: tr.Title, Run: tr.run})
	}
	return append(cases, Case{ID: "CT-API-022", Suite: SuiteRentals, Title: "List all rentals from a user", Run: listUserRentals})
}

func (env *Env) rentalRequest(bookID int) models.RentalRequest {
	w := env.Window.Next()
	return models.RentalRequest{
		UserID:    env.Config.RentalUserID,
		BookID:    bookID,
		StartDate: w.Start,
		EndDate:   w.End,
	}
}

func validRental(ctx context.Context, env *Env) error {
	bookID, err := env.Fixtures.ProvisionBook(ctx, env.Config.RentalBookID, rentalBook())
	if err != nil {
		return err
	}
	if _, err := env.Fixtures.EnsureStockAvailable(ctx, bookID, env.Config.RentalRestock); err != nil {
		return err
	}

	req := env.rentalRequest(bookID)
	rental, resp, err := env.API.Rentals.Create(ctx, req)
	if err != nil {
		return err
	}
	if err := expectStatus("create rental", resp, http.StatusCreated); err != nil {
		return err
	}
	if err := expectContract(env, "create rental", schema.KindRental, resp); err != nil {
		return err
	}

	step := "rental body"
	if err := expectf(step, rental.UserID == req.UserID, fmt.Sprintf("usuarioId %d", req.UserID), rental.UserID); err != nil {
		return err
	}
	if err := expectf(step, rental.BookID == req.BookID, fmt.Sprintf("livroId %d", req.BookID), rental.BookID); err != nil {
		return err
	}
	if err := expectf(step, rental.Status == models.RentalPending, "status PENDENTE", rental.Status); err != nil {
		return err
	}
	return expectf(step, rental.CreatedAt != "", "criadoEm present", string(resp.Body))
}

func rentalWithoutStock(ctx context.Context, env *Env) error {
	bookID, err := env.Fixtures.ProvisionBook(ctx, env.Config.RentalBookID, rentalBook())
	if err != nil {
		return err
	}
	if _, err := env.Fixtures.EnsureOutOfStock(ctx, bookID); err != nil {
		return err
	}

	_, resp, err := env.API.Rentals.Create(ctx, env.rentalRequest(bookID))
	if err != nil {
		return err
	}
	return expectRejection(env, "rent book without stock", resp, http.StatusBadRequest, models.MsgNoStockForRental)
}

func (tr statusTransition) run(ctx context.Context, env *Env) error {
	bookID, err := env.Fixtures.ProvisionBook(ctx, env.Config.ApprovalBookID, rentalBook())
	if err != nil {
		return err
	}
	if _, err := env.Fixtures.EnsureStockAvailable(ctx, bookID, env.Config.RentalRestock); err != nil {
		return err
	}

	rental, resp, err := env.API.Rentals.Create(ctx, env.rentalRequest(bookID))
	if err != nil {
		return err
	}
	if err := expectStatus("create rental", resp, http.StatusCreated); err != nil {
		return err
	}
	// baseline after creation: some deployments reserve stock on create
	before, err := env.Fixtures.Book(ctx, bookID)
	if err != nil {
		return err
	}

	step := fmt.Sprintf("set rental %d to %s", rental.ID, tr.Status)
	resp, err = env.API.Rentals.UpdateStatus(ctx, rental.ID, tr.Status)
	if err != nil {
		return err
	}
	if tr.Message != "" {
		err = expectRejection(env, step, resp, tr.HTTPStatus, tr.Message)
	} else {
		err = expectStatus(step, resp, tr.HTTPStatus)
	}
	if err != nil {
		return err
	}

	after, err := env.Fixtures.Book(ctx, bookID)
	if err != nil {
		return err
	}
	want := before.Stock + tr.StockDelta
	return expectf("stock after status update", after.Stock == want,
		fmt.Sprintf("estoque %d (was %d)", want, before.Stock), after.Stock)
}

func listUserRentals(ctx context.Context, env *Env) error {
	userID := env.Config.RentalUserID
	rentals, resp, err := env.API.Rentals.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := expectStatus("list rentals", resp, http.StatusOK); err != nil {
		return err
	}
	if err := expectContract(env, "list rentals", schema.KindRentalList, resp); err != nil {
		return err
	}
	for _, r := range rentals {
		if err := expectf("rental owner", r.UserID == userID, fmt.Sprintf("usuarioId %d", userID), fmt.Sprintf("rental %d of user %d", r.ID, r.UserID)); err != nil {
			return err
		}
	}
	return nil
}
