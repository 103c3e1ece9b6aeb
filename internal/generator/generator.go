// Package generator provides the random source used to synthesize node
// identifiers, names and addresses. Consumers depend on the Generator
// interface so tests can substitute a deterministic fake.
package generator

import (
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// IDSource produces short node identifiers
type IDSource interface {
	NextID() string
}

// Generator is the full random capability used by bulk generation
type Generator interface {
	IDSource
	// NextWord returns a generic single-word token
	NextWord() string
	// NextName returns a person-style first name
	NextName() string
	// NextAddress returns a synthetic network address
	NextAddress() string
}

// NewID returns the first hyphen-delimited segment of a random UUID.
// Eight hex characters keep ids short; collisions are possible but rare.
func NewID() string {
	id := uuid.NewString()
	if i := strings.IndexByte(id, '-'); i >= 0 {
		return id[:i]
	}
	return id
}

// Faker is the production Generator backed by gofakeit
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a Generator. A zero seed draws from a random seed.
func NewFaker(seed uint64) *Faker {
	return &Faker{faker: gofakeit.New(seed)}
}

// NextID returns a short unique identifier
func (f *Faker) NextID() string {
	return NewID()
}

// NextWord returns a random word
func (f *Faker) NextWord() string {
	return f.faker.Word()
}

// NextName returns a random first name
func (f *Faker) NextName() string {
	return f.faker.FirstName()
}

// NextAddress returns a random IPv4 address
func (f *Faker) NextAddress() string {
	return f.faker.IPv4Address()
}
