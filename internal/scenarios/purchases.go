package scenarios

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bookshelf-qa/library-e2e/internal/models"
	"github.com/bookshelf-qa/library-e2e/internal/schema"
)

func purchaseBook() models.Book {
	return models.Book{
		Name:        "Purchase Test Book",
		Author:      "Author Pur",
		Pages:       347,
		Description: "A book created to test purchase functionality",
		ImageURL:    "https://exemplo.com/imagem.jpg",
		Stock:       16,
		Price:       57.0,
	}
}

func purchaseCases() []Case {
	return []Case{
		{ID: "CT-API-023", Suite: SuitePurchases, Title: "Purchase with stock available", Run: purchaseWithStock},
		{ID: "CT-API-024", Suite: SuitePurchases, Title: "Purchase above available stock", Run: purchaseAboveStock},
	}
}

func purchaseWithStock(ctx context.Context, env *Env) error {
	quantity := env.Config.PurchaseQuantity
	bookID, err := env.Fixtures.ProvisionBook(ctx, env.Config.PurchaseBookID, purchaseBook())
	if err != nil {
		return err
	}
	book, err := env.Fixtures.EnsureStockAtLeast(ctx, bookID, quantity, env.Config.PurchaseRestock)
	if err != nil {
		return err
	}

	purchase, resp, err := env.API.Purchases.Create(ctx, models.PurchaseRequest{
		UserID:   env.Config.RentalUserID,
		BookID:   bookID,
		Quantity: quantity,
	})
	if err != nil {
		return err
	}
	if err := expectStatus("create purchase", resp, http.StatusCreated); err != nil {
		return err
	}
	if err := expectContract(env, "create purchase", schema.KindPurchase, resp); err != nil {
		return err
	}
	if err := expectf("purchase status", purchase.Status == models.PurchasePending, "status PENDENTE", purchase.Status); err != nil {
		return err
	}

	want := models.ExpectedTotal(book.Price, quantity)
	return expectf("purchase total", models.SameAmount(purchase.Total, want),
		fmt.Sprintf("total %s (%s x %d)", models.FormatPrice(want), models.FormatPrice(book.Price), quantity),
		models.FormatPrice(purchase.Total))
}

func purchaseAboveStock(ctx context.Context, env *Env) error {
	quantity := env.Config.ShortStockQuantity
	bookID, err := env.Fixtures.ProvisionBook(ctx, env.Config.ShortStockBookID, purchaseBook())
	if err != nil {
		return err
	}
	if _, err := env.Fixtures.EnsureStockBelow(ctx, bookID, quantity); err != nil {
		return err
	}

	_, resp, err := env.API.Purchases.Create(ctx, models.PurchaseRequest{
		UserID:   env.Config.RentalUserID,
		BookID:   bookID,
		Quantity: quantity,
	})
	if err != nil {
		return err
	}
	return expectRejection(env, "purchase above stock", resp, http.StatusBadRequest, models.MsgInsufficientStock)
}
