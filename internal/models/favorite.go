package models

// Favorite links a user to a bookmarked book. Also used as the request body
// of POST and DELETE /favoritos.
type Favorite struct {
	UserID int `json:"usuarioId"`
	BookID int `json:"livroId"`
}
