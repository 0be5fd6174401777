package ui

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/boardgame-store/internal/store/catalog"
	custommw "finitefield.org/boardgame-store/internal/store/httpserver/middleware"
	"finitefield.org/boardgame-store/internal/store/observability"
	"finitefield.org/boardgame-store/internal/store/templates"
	"finitefield.org/boardgame-store/internal/store/templates/helpers"
)

// Catalog renders the game grid for the category in ?category=.
func (h *Handlers) Catalog(w http.ResponseWriter, r *http.Request) {
	st, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	filter := catalog.ParseFilter(r.URL.Query().Get("category"))
	returnPath := custommw.RequestURIFromContext(ctx)
	token := custommw.CSRFTokenFromContext(ctx)

	c := st.sess.Cart()
	filtered := catalog.FilteredGames(st.games, filter)
	cards := make([]templates.GameCard, 0, len(filtered))
	for _, g := range filtered {
		cards = append(cards, templates.GameCard{
			Game:       g,
			Quantity:   c.Quantity(g.Name),
			CSRFToken:  token,
			ReturnPath: returnPath,
		})
	}

	page := templates.CatalogPage{
		Base:    h.base(ctx, st, "Каталог"),
		Filters: filterOptions(filter),
		Cards:   cards,
	}
	h.render(w, r, h.renderer.Page(templates.PageCatalog, page), http.StatusOK)
}

// Game renders a single game with its description.
func (h *Handlers) Game(w http.ResponseWriter, r *http.Request) {
	game, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}
	st, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	page := templates.GamePage{
		Base: h.base(ctx, st, game.Name),
		Card: templates.GameCard{
			Game:       game,
			Quantity:   st.sess.Cart().Quantity(game.Name),
			CSRFToken:  custommw.CSRFTokenFromContext(ctx),
			ReturnPath: custommw.RequestURIFromContext(ctx),
		},
		Description: helpers.Markdown(game.Description),
	}
	h.render(w, r, h.renderer.Page(templates.PageGame, page), http.StatusOK)
}

// gameFromRequest resolves the {id} URL parameter, answering 404 for unknown games.
func (h *Handlers) gameFromRequest(w http.ResponseWriter, r *http.Request) (catalog.Game, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r, "Игра не найдена")
		return catalog.Game{}, false
	}
	game, err := h.catalog.Game(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		h.notFound(w, r, "Игра не найдена")
		return catalog.Game{}, false
	}
	if err != nil {
		observability.FromContext(r.Context()).Error("catalog: lookup failed", zap.Int("game_id", id), zap.Error(err))
		http.Error(w, "Каталог временно недоступен", http.StatusServiceUnavailable)
		return catalog.Game{}, false
	}
	return game, true
}

func filterOptions(active catalog.Filter) []templates.FilterOption {
	options := make([]templates.FilterOption, 0, len(catalog.Categories)+1)
	options = append(options, templates.FilterOption{
		Href:   "/",
		Icon:   "🎲",
		Label:  "Все игры",
		Active: active.IsAll(),
	})
	for _, c := range catalog.Categories {
		options = append(options, templates.FilterOption{
			Href:   "/?" + url.Values{"category": {string(c)}}.Encode(),
			Icon:   helpers.CategoryIcon(c),
			Label:  helpers.CategoryLabel(c),
			Active: active == catalog.FilterFor(c),
		})
	}
	return options
}
