package models

// Message is the body of every validation and not-found response.
type Message struct {
	Message string `json:"mensagem"`
}

// Messages returned by the library application.
const (
	MsgNoStockForRental  = "Livro sem estoque para arrendamento"
	MsgInvalidStatus     = "Status inválido"
	MsgFavoriteAdded     = "Livro adicionado aos favoritos"
	MsgAlreadyFavorite   = "Já está nos favoritos"
	MsgFavoriteRemoved   = "Livro removido dos favoritos"
	MsgFavoriteNotFound  = "Favorito não encontrado"
	MsgInsufficientStock = "Estoque insuficiente"
	MsgBookNotFound      = "Livro não encontrado"
	MsgRentalNotFound    = "Arrendamento não encontrado"
	MsgEmailTaken        = "Email já cadastrado"
	MsgInvalidPayload    = "Dados inválidos"
	MsgUserRegistered    = "Usuário registrado com sucesso"
	MsgBookDeleted       = "Livro removido"
)
