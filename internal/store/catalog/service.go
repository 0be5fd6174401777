package catalog

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested game does not exist.
var ErrNotFound = errors.New("catalog: game not found")

// Service exposes catalog lookups to the view layer.
type Service interface {
	// Games returns every game in catalog order.
	Games(ctx context.Context) ([]Game, error)
	// Game returns a single game by id.
	Game(ctx context.Context, id int) (Game, error)
}

// StaticService serves a fixed in-memory catalog.
type StaticService struct {
	Catalog *Catalog
}

// NewStaticService returns a StaticService over c, falling back to the seed catalog.
func NewStaticService(c *Catalog) *StaticService {
	if c == nil {
		c = Seed()
	}
	return &StaticService{Catalog: c}
}

// Games implements Service.
func (s *StaticService) Games(context.Context) ([]Game, error) {
	return s.Catalog.All(), nil
}

// Game implements Service.
func (s *StaticService) Game(_ context.Context, id int) (Game, error) {
	g, ok := s.Catalog.ByID(id)
	if !ok {
		return Game{}, ErrNotFound
	}
	return g, nil
}
