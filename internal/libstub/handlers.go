package libstub

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookshelf-qa/library-e2e/internal/models"
)

func respondError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.status, models.Message{Message: apiErr.message})
		return
	}
	c.JSON(http.StatusInternalServerError, models.Message{Message: err.Error()})
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.Message{Message: models.MsgInvalidPayload})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, models.Message{Message: models.MsgInvalidPayload})
		return false
	}
	return true
}

func (s *Server) listBooks(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Books())
}

func (s *Server) createBook(c *gin.Context) {
	var in models.Book
	if !bindJSON(c, &in) {
		return
	}
	book, err := s.store.CreateBook(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (s *Server) getBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	book, err := s.store.Book(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (s *Server) updateBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in models.Book
	if !bindJSON(c, &in) {
		return
	}
	book, err := s.store.UpdateBook(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (s *Server) deleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteBook(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Message{Message: models.MsgBookDeleted})
}

func (s *Server) createRental(c *gin.Context) {
	var in models.RentalRequest
	if !bindJSON(c, &in) {
		return
	}
	rental, err := s.store.CreateRental(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rental)
}

func (s *Server) updateRentalStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in models.StatusUpdate
	if !bindJSON(c, &in) {
		return
	}
	rental, err := s.store.UpdateRentalStatus(id, in.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}

func (s *Server) myRentals(c *gin.Context) {
	userID, err := strconv.Atoi(c.Query("usuarioId"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, models.Message{Message: models.MsgInvalidPayload})
		return
	}
	c.JSON(http.StatusOK, s.store.RentalsByUser(userID))
}

func (s *Server) addFavorite(c *gin.Context) {
	var in models.Favorite
	if !bindJSON(c, &in) {
		return
	}
	if err := s.store.AddFavorite(in); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.Message{Message: models.MsgFavoriteAdded})
}

func (s *Server) removeFavorite(c *gin.Context) {
	var in models.Favorite
	if !bindJSON(c, &in) {
		return
	}
	if err := s.store.RemoveFavorite(in); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Message{Message: models.MsgFavoriteRemoved})
}

func (s *Server) listFavorites(c *gin.Context) {
	userID, ok := pathID(c, "usuarioId")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.store.Favorites(userID))
}

func (s *Server) createPurchase(c *gin.Context) {
	var in models.PurchaseRequest
	if !bindJSON(c, &in) {
		return
	}
	purchase, err := s.store.CreatePurchase(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (s *Server) statistics(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Statistics())
}

func (s *Server) register(c *gin.Context) {
	var in models.RegisterRequest
	if !bindJSON(c, &in) {
		return
	}
	user, err := s.store.RegisterUser(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.RegisterResponse{Message: models.MsgUserRegistered, User: user})
}
