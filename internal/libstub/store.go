package libstub

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bookshelf-qa/library-e2e/internal/models"
)

// apiError is a rule violation rendered as {mensagem} with a status code.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%d %s", e.status, e.message)
}

func badRequest(msg string) *apiError { return &apiError{status: http.StatusBadRequest, message: msg} }
func notFound(msg string) *apiError   { return &apiError{status: http.StatusNotFound, message: msg} }

// Store is the in-memory state of the library application.
type Store struct {
	mu         sync.Mutex
	books      map[int]*models.Book
	users      map[int]*models.User
	rentals    map[int]*models.Rental
	purchases  map[int]*models.Purchase
	favorites  []models.Favorite
	nextBook   int
	nextUser   int
	nextRental int
	nextBuy    int
	now        func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		books:      make(map[int]*models.Book),
		users:      make(map[int]*models.User),
		rentals:    make(map[int]*models.Rental),
		purchases:  make(map[int]*models.Purchase),
		nextBook:   1,
		nextUser:   1,
		nextRental: 1,
		nextBuy:    1,
		now:        time.Now,
	}
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func validBook(b models.Book) *apiError {
	if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Author) == "" {
		return badRequest(models.MsgInvalidPayload)
	}
	if b.Stock < 0 || b.Pages < 0 || b.Price < 0 {
		return badRequest(models.MsgInvalidPayload)
	}
	return nil
}

// CreateBook stores a new book and assigns its id.
func (s *Store) CreateBook(b models.Book) (models.Book, error) {
	if err := validBook(b); err != nil {
		return models.Book{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.nextBook
	s.nextBook++
	b.CreatedAt = s.timestamp()
	s.books[b.ID] = &b
	return b, nil
}

// Book returns a copy of a book.
func (s *Store) Book(id int) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return models.Book{}, notFound(models.MsgBookNotFound)
	}
	return *b, nil
}

// Books lists every book ordered by id.
func (s *Store) Books() []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b models.Book) int { return a.ID - b.ID })
	return out
}

// UpdateBook replaces every field except id and creation date.
func (s *Store) UpdateBook(id int, in models.Book) (models.Book, error) {
	if err := validBook(in); err != nil {
		return models.Book{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return models.Book{}, notFound(models.MsgBookNotFound)
	}
	in.ID = id
	in.CreatedAt = b.CreatedAt
	*b = in
	return *b, nil
}

// DeleteBook removes a book and every favorite pointing at it.
func (s *Store) DeleteBook(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return notFound(models.MsgBookNotFound)
	}
	delete(s.books, id)
	s.favorites = slices.DeleteFunc(s.favorites, func(f models.Favorite) bool { return f.BookID == id })
	return nil
}

// RegisterUser creates a student account. E-mails are unique, case-insensitively.
func (s *Store) RegisterUser(req models.RegisterRequest) (models.User, error) {
	if strings.TrimSpace(req.Name) == "" || !strings.Contains(req.Email, "@") || req.Password == "" {
		return models.User{}, badRequest(models.MsgInvalidPayload)
	}
	return s.addUser(req.Name, req.Email, req.Password, models.UserTypeStudent)
}

func (s *Store) addUser(name, email, password string, kind models.UserType) (models.User, error) {
	u := models.User{FullName: name, Email: strings.ToLower(email), Type: kind}
	if err := u.SetPassword(password); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return models.User{}, badRequest(models.MsgEmailTaken)
		}
	}
	u.ID = s.nextUser
	s.nextUser++
	s.users[u.ID] = &u
	return u, nil
}

// CreateRental opens a PENDENTE rental. Stock is only taken on approval.
func (s *Store) CreateRental(req models.RentalRequest) (models.Rental, error) {
	if req.UserID <= 0 || req.BookID <= 0 {
		return models.Rental{}, badRequest(models.MsgInvalidPayload)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[req.BookID]
	if !ok {
		return models.Rental{}, notFound(models.MsgBookNotFound)
	}
	if b.Stock <= 0 {
		return models.Rental{}, badRequest(models.MsgNoStockForRental)
	}

	r := models.Rental{
		ID:        s.nextRental,
		UserID:    req.UserID,
		BookID:    req.BookID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    models.RentalPending,
		CreatedAt: s.timestamp(),
	}
	s.nextRental++
	s.rentals[r.ID] = &r
	return r, nil
}

// UpdateRentalStatus moves a rental to status. Approval takes one copy,
// return gives it back.
func (s *Store) UpdateRentalStatus(id int, status models.RentalStatus) (models.Rental, error) {
	if !status.Valid() {
		return models.Rental{}, badRequest(models.MsgInvalidStatus)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rentals[id]
	if !ok {
		return models.Rental{}, notFound(models.MsgRentalNotFound)
	}
	b, ok := s.books[r.BookID]
	if !ok {
		return models.Rental{}, notFound(models.MsgBookNotFound)
	}

	switch {
	case status == models.RentalApproved && r.Status != models.RentalApproved:
		if b.Stock <= 0 {
			return models.Rental{}, badRequest(models.MsgNoStockForRental)
		}
		b.Stock--
	case status == models.RentalReturned && r.Status == models.RentalApproved:
		b.Stock++
	}
	r.Status = status
	return *r, nil
}

// RentalsByUser lists a user's rentals ordered by id.
func (s *Store) RentalsByUser(userID int) []models.Rental {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Rental, 0)
	for _, r := range s.rentals {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	slices.SortFunc(out, func(a, b models.Rental) int { return a.ID - b.ID })
	return out
}

// AddFavorite links a user to a book once.
func (s *Store) AddFavorite(f models.Favorite) error {
	if f.UserID <= 0 || f.BookID <= 0 {
		return badRequest(models.MsgInvalidPayload)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[f.BookID]; !ok {
		return notFound(models.MsgBookNotFound)
	}
	if slices.Contains(s.favorites, f) {
		return badRequest(models.MsgAlreadyFavorite)
	}
	s.favorites = append(s.favorites, f)
	return nil
}

// RemoveFavorite unlinks a pair that must exist.
func (s *Store) RemoveFavorite(f models.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.favorites, f)
	if i < 0 {
		return notFound(models.MsgFavoriteNotFound)
	}
	s.favorites = slices.Delete(s.favorites, i, i+1)
	return nil
}

// Favorites returns the full books a user bookmarked, in insertion order.
func (s *Store) Favorites(userID int) []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Book, 0)
	for _, f := range s.favorites {
		if f.UserID != userID {
			continue
		}
		if b, ok := s.books[f.BookID]; ok {
			out = append(out, *b)
		}
	}
	return out
}

// CreatePurchase takes quantity copies and records a PENDENTE purchase.
func (s *Store) CreatePurchase(req models.PurchaseRequest) (models.Purchase, error) {
	if req.UserID <= 0 || req.Quantity <= 0 {
		return models.Purchase{}, badRequest(models.MsgInvalidPayload)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[req.BookID]
	if !ok {
		return models.Purchase{}, notFound(models.MsgBookNotFound)
	}
	if req.Quantity > b.Stock {
		return models.Purchase{}, badRequest(models.MsgInsufficientStock)
	}
	b.Stock -= req.Quantity

	p := models.Purchase{
		ID:        s.nextBuy,
		UserID:    req.UserID,
		BookID:    req.BookID,
		Quantity:  req.Quantity,
		Status:    models.PurchasePending,
		Total:     models.ExpectedTotal(b.Price, req.Quantity),
		CreatedAt: s.timestamp(),
	}
	s.nextBuy++
	s.purchases[p.ID] = &p
	return p, nil
}

// Statistics aggregates the current state.
func (s *Store) Statistics() models.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st models.Statistics
	for _, b := range s.books {
		st.TotalBooks++
		st.TotalPages += b.Pages
		if b.Stock > 0 {
			st.AvailableBooks++
		}
	}
	for _, u := range s.users {
		st.TotalUsers++
		switch u.Type {
		case models.UserTypeAdmin:
			st.UsersByType.Admins++
		case models.UserTypeEmployee:
			st.UsersByType.Employees++
		default:
			st.UsersByType.Students++
		}
	}
	for _, r := range s.rentals {
		if r.Status == models.RentalPending {
			st.PendingRentals++
		}
	}
	for _, p := range s.purchases {
		if p.Status == models.PurchasePending {
			st.PendingPurchases++
		}
	}
	return st
}
