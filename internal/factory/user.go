// Package factory generates disposable test identities and registers them.
package factory

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/bookshelf-qa/library-e2e/internal/client"
	"github.com/bookshelf-qa/library-e2e/internal/models"
)

var firstNames = []string{
	"Ana", "Bruno", "Carlos", "Daniela", "Eduardo", "Fernanda", "Gabriel",
	"Helena", "Iris", "João", "Katia", "Luís", "Mariana", "Nuno", "Joana", "Paulo",
	"Olivia", "Pedro", "Raquel", "Sergio", "Teresa", "Vítor", "Henrique", "Ines",
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard",
	"Susan", "Joseph", "Jessica", "Thomas", "Sarah", "Charles", "Karen",
}

var lastNames = []string{
	"Silva", "Santos", "Ferreira", "Pereira", "Oliveira", "Costa", "Rodrigues",
	"Martins", "Jesus", "Sousa", "Fernandes", "Gonçalves", "Gomes", "Lopes",
	"Marques", "Alves", "Almeida", "Ribeiro", "Pinto", "Carvalho", "Simoes", "Barbosa",
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzales",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
}

const (
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength   = 5

	DefaultDomain   = "teste.com"
	DefaultPassword = "123456"
)

// SuffixSource produces the token that keeps generated e-mails apart.
type SuffixSource func() string

// RandomSuffix returns 5 base-36 characters. Collisions are possible but rare.
func RandomSuffix() string {
	var b strings.Builder
	limit := big.NewInt(int64(len(suffixAlphabet)))
	for i := 0; i < suffixLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
		}
		b.WriteByte(suffixAlphabet[n.Int64()])
	}
	return b.String()
}

// UUIDSuffix returns a random UUID without dashes; collisions are not a concern.
func UUIDSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SuffixByName maps the identity.suffix config value to a source.
func SuffixByName(name string) (SuffixSource, error) {
	switch name {
	case "", "random":
		return RandomSuffix, nil
	case "uuid":
		return UUIDSuffix, nil
	}
	return nil, fmt.Errorf("unknown suffix source %q", name)
}

// Identity is a generated, not yet registered, user.
type Identity struct {
	FirstName string
	LastName  string
	FullName  string
	Email     string
	Password  string
}

// Registration is the outcome of RegisterTestUser. UserID is 0 when the
// application did not accept the registration; Response tells why.
type Registration struct {
	Response *client.Response
	UserID   int
	FullName string
	Email    string
	Password string
}

// Registered reports whether the application assigned an id.
func (r *Registration) Registered() bool {
	return r.Response != nil && r.Response.IsSuccess() && r.UserID > 0
}

// Option customizes a UserFactory.
type Option func(*UserFactory)

// WithSuffix replaces the suffix source.
func WithSuffix(src SuffixSource) Option {
	return func(f *UserFactory) { f.suffix = src }
}

// WithDomain sets the e-mail domain.
func WithDomain(domain string) Option {
	return func(f *UserFactory) { f.domain = domain }
}

// WithPassword sets the fixed password.
func WithPassword(password string) Option {
	return func(f *UserFactory) { f.password = password }
}

// WithPicker replaces the name picker, mostly for deterministic tests.
func WithPicker(pick func(n int) int) Option {
	return func(f *UserFactory) { f.pick = pick }
}

// UserFactory builds identities and registers them through /registro.
type UserFactory struct {
	api      *client.Client
	suffix   SuffixSource
	domain   string
	password string
	pick     func(n int) int
}

// NewUserFactory creates a factory bound to an API client.
func NewUserFactory(api *client.Client, opts ...Option) *UserFactory {
	f := &UserFactory{
		api:      api,
		suffix:   RandomSuffix,
		domain:   DefaultDomain,
		password: DefaultPassword,
		pick:     randomIndex,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewIdentity draws a name pair and builds the matching e-mail.
func (f *UserFactory) NewIdentity() Identity {
	first := firstNames[f.pick(len(firstNames))]
	last := lastNames[f.pick(len(lastNames))]
	email := fmt.Sprintf("%s.%s_%s@%s", emailPart(first), emailPart(last), f.suffix(), f.domain)
	return Identity{
		FirstName: first,
		LastName:  last,
		FullName:  first + " " + last,
		Email:     email,
		Password:  f.password,
	}
}

// RegisterTestUser registers a fresh identity. It never retries; a rejected
// registration comes back as a Registration with UserID 0, not as an error.
func (f *UserFactory) RegisterTestUser(ctx context.Context) (*Registration, error) {
	id := f.NewIdentity()
	created, resp, err := f.api.Registration.Register(ctx, models.RegisterRequest{
		Name:     id.FullName,
		Email:    id.Email,
		Password: id.Password,
	})
	if resp == nil {
		return nil, err
	}

	reg := &Registration{
		Response: resp,
		FullName: id.FullName,
		Email:    id.Email,
		Password: id.Password,
	}
	if created != nil {
		reg.UserID = created.User.ID
	}
	return reg, err
}

// emailPart lowercases a name and strips diacritics (João -> joao).
func emailPart(name string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(folded)
}

func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return int(v.Int64())
}
