package schema

const draft07 = "http://json-schema.org/draft-07/schema#"

func counter() map[string]any {
	return map[string]any{"type": "integer", "minimum": 0}
}

func bookSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":        map[string]any{"type": "integer", "minimum": 1},
			"nome":      map[string]any{"type": "string"},
			"autor":     map[string]any{"type": "string"},
			"paginas":   counter(),
			"descricao": map[string]any{"type": "string"},
			"imagemUrl": map[string]any{"type": "string"},
			"estoque":   counter(),
			"preco":     map[string]any{"type": "number", "minimum": 0},
		},
		"required": []string{"id", "nome", "autor", "estoque"},
	}
}

// favoriteBookSchema is a book as listed by /favoritos/{usuarioId}: every
// catalog field must be present.
func favoriteBookSchema() map[string]any {
	b := bookSchema()
	b["properties"].(map[string]any)["dataCadastro"] = map[string]any{"type": "string"}
	b["required"] = []string{
		"id", "nome", "autor", "paginas", "descricao", "imagemUrl", "dataCadastro", "estoque", "preco",
	}
	return b
}

func rentalSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":         map[string]any{"type": "integer", "minimum": 1},
			"usuarioId":  map[string]any{"type": "integer"},
			"livroId":    map[string]any{"type": "integer"},
			"dataInicio": map[string]any{"type": "string"},
			"dataFim":    map[string]any{"type": "string"},
			"status":     map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"id", "usuarioId", "livroId", "status"},
	}
}

func builtin() map[Kind]map[string]any {
	return map[Kind]map[string]any{
		KindBook: withDraft(bookSchema()),
		KindBookList: withDraft(map[string]any{
			"type":  "array",
			"items": bookSchema(),
		}),
		KindFavoriteList: withDraft(map[string]any{
			"type":  "array",
			"items": favoriteBookSchema(),
		}),
		KindRental: withDraft(rentalSchema()),
		KindRentalList: withDraft(map[string]any{
			"type":  "array",
			"items": rentalSchema(),
		}),
		KindPurchase: withDraft(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":     map[string]any{"type": "integer", "minimum": 1},
				"status": map[string]any{"type": "string", "minLength": 1},
				"total":  map[string]any{"type": "number", "minimum": 0},
			},
			"required": []string{"status", "total"},
		}),
		KindStatistics: withDraft(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"totalLivros":            counter(),
				"totalPaginas":           counter(),
				"totalUsuarios":          counter(),
				"livrosDisponiveis":      counter(),
				"arrendamentosPendentes": counter(),
				"comprasPendentes":       counter(),
				"usuariosPorTipo": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"alunos":       counter(),
						"funcionarios": counter(),
						"admins":       counter(),
					},
					"required": []string{"alunos", "funcionarios", "admins"},
				},
			},
			"required": []string{
				"totalLivros", "totalPaginas", "totalUsuarios", "livrosDisponiveis",
				"arrendamentosPendentes", "comprasPendentes", "usuariosPorTipo",
			},
		}),
		KindMessage: withDraft(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"mensagem": map[string]any{"type": "string", "minLength": 1},
			},
			"required": []string{"mensagem"},
		}),
		KindRegistered: withDraft(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"mensagem": map[string]any{"type": "string"},
				"usuario": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":    map[string]any{"type": "integer", "minimum": 1},
						"nome":  map[string]any{"type": "string"},
						"email": map[string]any{"type": "string"},
						"tipo":  map[string]any{"type": "string"},
					},
					"required": []string{"id"},
				},
			},
			"required": []string{"usuario"},
		}),
	}
}

func withDraft(doc map[string]any) map[string]any {
	doc["$schema"] = draft07
	return doc
}
