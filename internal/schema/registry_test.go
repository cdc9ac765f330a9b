package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinContracts(t *testing.T) {
	r := NewRegistry()

	testCases := []struct {
		name  string
		kind  Kind
		body  string
		valid bool
	}{
		{"book", KindBook, `{"id":15,"nome":"Rental Test Book","autor":"Autor","estoque":5,"preco":49.9}`, true},
		{"book with negative stock", KindBook, `{"id":15,"nome":"x","autor":"y","estoque":-1}`, false},
		{"book list", KindBookList, `[{"id":1,"nome":"a","autor":"b","estoque":0}]`, true},
		{"favorites list with bare ids", KindFavoriteList, `[20]`, false},
		{"favorite missing dataCadastro", KindFavoriteList, `[{"id":20,"nome":"a","autor":"b","paginas":1,"descricao":"","imagemUrl":"","estoque":0,"preco":1}]`, false},
		{
			"favorites list",
			KindFavoriteList,
			`[{"id":20,"nome":"a","autor":"b","paginas":1,"descricao":"","imagemUrl":"","dataCadastro":"2025-01-02T03:04:05Z","estoque":0,"preco":1}]`,
			true,
		},
		{"pending rental", KindRental, `{"id":7,"usuarioId":3,"livroId":15,"status":"PENDENTE"}`, true},
		{"rental with other status", KindRental, `{"id":7,"usuarioId":3,"livroId":15,"status":"CANCELADO"}`, true},
		{"rental without status", KindRental, `{"id":7,"usuarioId":3,"livroId":15}`, false},
		{"rental list", KindRentalList, `[]`, true},
		{"rental list with terminal states", KindRentalList, `[{"id":7,"usuarioId":3,"livroId":15,"status":"CANCELADO"},{"id":8,"usuarioId":3,"livroId":4,"status":"FINALIZADO"}]`, true},
		{"purchase", KindPurchase, `{"id":1,"status":"PENDENTE","total":114}`, true},
		{"purchase without id", KindPurchase, `{"status":"PENDENTE","total":114}`, true},
		{"purchase without total", KindPurchase, `{"status":"PENDENTE"}`, false},
		{"message", KindMessage, `{"mensagem":"Status inválido"}`, true},
		{"empty message", KindMessage, `{"mensagem":""}`, false},
		{"registered", KindRegistered, `{"mensagem":"ok","usuario":{"id":9,"email":"ana.souza_ab12c@teste.com"}}`, true},
		{"registered with id only", KindRegistered, `{"usuario":{"id":42}}`, true},
		{"registered without id", KindRegistered, `{"usuario":{"email":"a@b.c"}}`, false},
		{
			"statistics",
			KindStatistics,
			`{"totalLivros":30,"totalPaginas":9000,"totalUsuarios":3,"livrosDisponiveis":28,
			  "arrendamentosPendentes":0,"comprasPendentes":0,
			  "usuariosPorTipo":{"alunos":1,"funcionarios":1,"admins":1}}`,
			true,
		},
		{
			"statistics with fractional counter",
			KindStatistics,
			`{"totalLivros":30.5,"totalPaginas":1,"totalUsuarios":3,"livrosDisponiveis":1,
			  "arrendamentosPendentes":0,"comprasPendentes":0,
			  "usuariosPorTipo":{"alunos":1,"funcionarios":1,"admins":1}}`,
			false,
		},
		{
			"statistics without per-type breakdown",
			KindStatistics,
			`{"totalLivros":1,"totalPaginas":1,"totalUsuarios":1,"livrosDisponiveis":1,
			  "arrendamentosPendentes":0,"comprasPendentes":0}`,
			false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := r.Validate(tc.kind, []byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.valid, res.Valid, res.Error())
			if !tc.valid {
				assert.NotEmpty(t, res.Violations)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	r := Default()

	assert.NoError(t, r.Check(KindMessage, []byte(`{"mensagem":"Livro sem estoque para arrendamento"}`)))

	err := r.Check(KindMessage, []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message contract")
	assert.Contains(t, err.Error(), "mensagem")

	_, err = r.Validate(Kind("unknown"), []byte(`{}`))
	assert.ErrorContains(t, err, "no schema registered")

	_, err = r.Validate(KindBook, []byte(`not json`))
	assert.Error(t, err)
}

func TestRegisterCustomContract(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("ids", map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "integer"},
	}))

	res, err := r.Validate("ids", []byte(`[1,2,3]`))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	assert.Error(t, r.Register("broken", map[string]any{"type": 12}))
}
