package scenarios

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bookshelf-qa/library-e2e/internal/models"
	"github.com/bookshelf-qa/library-e2e/internal/schema"
)

func favoriteBook() models.Book {
	return models.Book{
		Name:        "Favorites Test Book",
		Author:      "Tech Author Fav",
		Pages:       567,
		Description: "A book created to test favorites functionality",
		ImageURL:    "https://exemplo.com/imagem.jpg",
		Stock:       3,
		Price:       69.9,
	}
}

func favoriteCases() []Case {
	return []Case{
		{ID: "CT-API-014", Suite: SuiteFavorites, Title: "Add a book to favorites", Run: addFavorite},
		{ID: "CT-API-015", Suite: SuiteFavorites, Title: "Add a book already in favorites", Run: addDuplicateFavorite},
		{ID: "CT-API-016", Suite: SuiteFavorites, Title: "List user favorites", Run: listFavorites},
		{ID: "CT-API-017", Suite: SuiteFavorites, Title: "Remove book from favorites", Run: removeFavorite},
	}
}

// cleanFavorite resolves the fixture pair and makes sure it is not favorited.
func cleanFavorite(ctx context.Context, env *Env) (models.Favorite, error) {
	bookID, err := env.Fixtures.ProvisionBook(ctx, env.Config.FavoriteBookID, favoriteBook())
	if err != nil {
		return models.Favorite{}, err
	}
	fav := models.Favorite{UserID: env.Config.FavoriteUserID, BookID: bookID}
	if _, err := env.Fixtures.ClearFavorite(ctx, fav); err != nil {
		return models.Favorite{}, err
	}
	return fav, nil
}

func addFavorite(ctx context.Context, env *Env) error {
	fav, err := cleanFavorite(ctx, env)
	if err != nil {
		return err
	}
	resp, err := env.API.Favorites.Add(ctx, fav)
	if err != nil {
		return err
	}
	if err := expectStatus("add favorite", resp, http.StatusCreated); err != nil {
		return err
	}
	return expectf("add favorite message", resp.Message() == models.MsgFavoriteAdded,
		fmt.Sprintf("%q", models.MsgFavoriteAdded), fmt.Sprintf("%q", resp.Message()))
}

func addDuplicateFavorite(ctx context.Context, env *Env) error {
	fav, err := cleanFavorite(ctx, env)
	if err != nil {
		return err
	}
	first, err := env.API.Favorites.Add(ctx, fav)
	if err != nil {
		return err
	}
	if err := expectStatus("first add", first, http.StatusCreated); err != nil {
		return err
	}

	second, err := env.API.Favorites.Add(ctx, fav)
	if err != nil {
		return err
	}
	return expectRejection(env, "second add", second, http.StatusBadRequest, models.MsgAlreadyFavorite)
}

func listFavorites(ctx context.Context, env *Env) error {
	userID := env.Config.FavoriteUserID
	_, resp, err := env.API.Favorites.List(ctx, userID)
	if err != nil {
		return err
	}
	if err := expectStatus("list favorites", resp, http.StatusOK); err != nil {
		return err
	}
	if err := expectContract(env, "list favorites", schema.KindFavoriteList, resp); err != nil {
		return err
	}
	env.Logger.Debug("favorites listed", slog.Int("user_id", userID), slog.Int("bytes", len(resp.Body)))
	return nil
}

func removeFavorite(ctx context.Context, env *Env) error {
	book, err := env.Fixtures.CreateBook(ctx, models.Book{
		Name:        "Book to be favorited",
		Author:      "Some Author",
		Pages:       425,
		Description: "A book to test favorites removal",
		ImageURL:    "https://exemplo.com/imagem.jpg",
		Stock:       2,
		Price:       39.9,
	})
	if err != nil {
		return err
	}
	fav := models.Favorite{UserID: env.Config.FavoriteUserID, BookID: book.ID}

	added, err := env.API.Favorites.Add(ctx, fav)
	if err != nil {
		return err
	}
	if err := expectStatus("add favorite", added, http.StatusCreated); err != nil {
		return err
	}

	removed, err := env.API.Favorites.Remove(ctx, fav)
	if err != nil {
		return err
	}
	if err := expectStatus("remove favorite", removed, http.StatusOK); err != nil {
		return err
	}
	if err := expectf("remove favorite message", removed.Message() == models.MsgFavoriteRemoved,
		fmt.Sprintf("%q", models.MsgFavoriteRemoved), fmt.Sprintf("%q", removed.Message())); err != nil {
		return err
	}

	again, err := env.API.Favorites.Remove(ctx, fav)
	if err != nil {
		return err
	}
	return expectStatus("remove absent favorite", again, http.StatusNotFound)
}
