package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed games.yaml
var seedYAML []byte

// ErrInvalidCatalog indicates a catalog document failed validation.
var ErrInvalidCatalog = errors.New("catalog: invalid document")

// Category groups games for the catalog filter.
type Category string

const (
	CategoryFamily    Category = "family"
	CategoryStrategy  Category = "strategy"
	CategoryAdventure Category = "adventure"
	CategoryRPG       Category = "rpg"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryFamily, CategoryStrategy, CategoryAdventure, CategoryRPG}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Game is an immutable catalog record. Price is in whole rubles.
type Game struct {
	ID          int
	Name        string
	Price       int64
	Players     string
	MinAge      int
	Duration    string
	Category    Category
	Description string
}

// Catalog is a read-only, ordered list of games.
type Catalog struct {
	games  []Game
	byID   map[int]int
	byName map[string]int
}

type document struct {
	Games []gameRecord `yaml:"games"`
}

type gameRecord struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Price       int64  `yaml:"price"`
	Players     string `yaml:"players"`
	Age         int    `yaml:"age"`
	Duration    string `yaml:"duration"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

var seed = mustParse(seedYAML)

// Seed returns the built-in six-game catalog.
func Seed() *Catalog {
	return seed
}

// Load reads a catalog document from path. An empty path yields the seed catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Seed(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	games := make([]Game, 0, len(doc.Games))
	for _, rec := range doc.Games {
		games = append(games, Game{
			ID:          rec.ID,
			Name:        strings.TrimSpace(rec.Name),
			Price:       rec.Price,
			Players:     rec.Players,
			MinAge:      rec.Age,
			Duration:    rec.Duration,
			Category:    Category(strings.ToLower(strings.TrimSpace(rec.Category))),
			Description: strings.TrimSpace(rec.Description),
		})
	}
	return New(games)
}

// New validates games and builds a Catalog preserving their order.
func New(games []Game) (*Catalog, error) {
	c := &Catalog{
		games:  make([]Game, len(games)),
		byID:   make(map[int]int, len(games)),
		byName: make(map[string]int, len(games)),
	}
	copy(c.games, games)
	for i, g := range c.games {
		if g.Name == "" {
			return nil, fmt.Errorf("%w: game %d has no name", ErrInvalidCatalog, g.ID)
		}
		if g.Price < 0 {
			return nil, fmt.Errorf("%w: game %q has negative price", ErrInvalidCatalog, g.Name)
		}
		if !g.Category.Valid() {
			return nil, fmt.Errorf("%w: game %q has unknown category %q", ErrInvalidCatalog, g.Name, g.Category)
		}
		if _, dup := c.byID[g.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidCatalog, g.ID)
		}
		if _, dup := c.byName[g.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidCatalog, g.Name)
		}
		c.byID[g.ID] = i
		c.byName[g.Name] = i
	}
	return c, nil
}

func mustParse(raw []byte) *Catalog {
	c, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns a copy of every game in catalog order.
func (c *Catalog) All() []Game {
	out := make([]Game, len(c.games))
	copy(out, c.games)
	return out
}

// Len returns the number of games.
func (c *Catalog) Len() int {
	return len(c.games)
}

// ByID looks up a game by identifier.
func (c *Catalog) ByID(id int) (Game, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Game{}, false
	}
	return c.games[i], true
}

// ByName looks up a game by its unique name.
func (c *Catalog) ByName(name string) (Game, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Game{}, false
	}
	return c.games[i], true
}

// Filtered returns the games matching filter in catalog order.
func (c *Catalog) Filtered(filter Filter) []Game {
	return FilteredGames(c.All(), filter)
}
