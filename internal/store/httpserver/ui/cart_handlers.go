package ui

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"finitefield.org/boardgame-store/internal/store/cart"
	"finitefield.org/boardgame-store/internal/store/catalog"
	custommw "finitefield.org/boardgame-store/internal/store/httpserver/middleware"
	"finitefield.org/boardgame-store/internal/store/observability"
	"finitefield.org/boardgame-store/internal/store/templates"
)

const cartPanelTarget = "cart-panel"

// maxItemQuantity bounds a single cart line so the totals stay far from overflow.
const maxItemQuantity = 999

// Cart renders the cart page.
func (h *Handlers) Cart(w http.ResponseWriter, r *http.Request) {
	st, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	page := templates.CartPage{
		Base:  h.base(ctx, st, "Корзина"),
		Panel: h.cartPanel(r, st),
	}
	h.render(w, r, h.renderer.Page(templates.PageCart, page), http.StatusOK)
}

// CartSummary renders the header badge for htmx refreshes.
func (h *Handlers) CartSummary(w http.ResponseWriter, r *http.Request) {
	st, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, h.renderer.Fragment(templates.FragmentCartSummary, summary(st, false)), http.StatusOK)
}

// IncreaseItem adds one unit of the game to the cart. A line already at
// maxItemQuantity stays as it is.
func (h *Handlers) IncreaseItem(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, "increase", func(c *cart.Cart, g catalog.Game) {
		if c.Quantity(g.Name) < maxItemQuantity {
			c.Increase(g.Name)
		}
	})
}

// DecreaseItem removes one unit of the game; the entry disappears at zero.
func (h *Handlers) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, "decrease", func(c *cart.Cart, g catalog.Game) {
		c.Decrease(g.Name)
	})
}

// SetItemQuantity sets the quantity from the "quantity" form field. Zero or less removes the entry;
// values above maxItemQuantity are rejected.
func (h *Handlers) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	qty, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("quantity")))
	if err != nil || qty > maxItemQuantity {
		http.Error(w, "Некорректное количество", http.StatusBadRequest)
		return
	}
	h.mutateItem(w, r, "set_quantity", func(c *cart.Cart, g catalog.Game) {
		c.SetQuantity(g.Name, qty)
	}, attribute.Int("cart.quantity", qty))
}

// RemoveItem deletes the game's entry from the cart.
func (h *Handlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, "remove", func(c *cart.Cart, g catalog.Game) {
		c.Remove(g.Name)
	})
}

// ClearCart empties the cart.
func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	st, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx, span := observability.StartSpan(r.Context(), "cart.clear")
	c := st.sess.Cart()
	c.Clear()
	st.sess.SetCart(c)
	span.End()

	observability.FromContext(ctx).Debug("cart cleared")
	h.respondCartChange(w, r, st, nil)
}

// Checkout confirms the order with a generated number. The cart is left as is.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	st, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	c := st.sess.Cart()
	if len(c.Lines(st.games)) == 0 {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	page := templates.CheckoutPage{
		Base:        h.base(ctx, st, "Заказ оформлен"),
		OrderNumber: h.orderNumber(),
		TotalItems:  c.TotalItems(),
		TotalPrice:  c.TotalPrice(st.games),
	}
	observability.FromContext(ctx).Info("order placed",
		zap.String("order_number", page.OrderNumber),
		zap.Int("items", page.TotalItems),
		zap.Int64("total_rub", page.TotalPrice),
	)
	h.render(w, r, h.renderer.Page(templates.PageCheckout, page), http.StatusOK)
}

func (h *Handlers) mutateItem(w http.ResponseWriter, r *http.Request, op string, apply func(*cart.Cart, catalog.Game), attrs ...attribute.KeyValue) {
	game, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}
	st, ok := h.load(w, r)
	if !ok {
		return
	}

	attrs = append(attrs, attribute.Int("game.id", game.ID), attribute.String("game.name", game.Name))
	ctx, span := observability.StartSpan(r.Context(), "cart."+op, attrs...)
	c := st.sess.Cart()
	apply(c, game)
	st.sess.SetCart(c)
	span.SetAttributes(attribute.Int("cart.quantity_after", c.Quantity(game.Name)))
	span.End()

	observability.FromContext(ctx).Debug("cart updated",
		zap.String("op", op),
		zap.String("game", game.Name),
		zap.Int("quantity", c.Quantity(game.Name)),
	)
	h.respondCartChange(w, r, st, &game)
}

// respondCartChange answers htmx with the updated fragment plus an out-of-band header badge,
// and plain form posts with a redirect back to the page the form came from.
func (h *Handlers) respondCartChange(w http.ResponseWriter, r *http.Request, st pageState, game *catalog.Game) {
	ctx := r.Context()
	if !custommw.IsHTMXRequest(ctx) {
		fallback := "/cart"
		if game != nil {
			fallback = "/"
		}
		http.Redirect(w, r, safeReturnPath(r.PostFormValue("return"), fallback), http.StatusSeeOther)
		return
	}

	var main templ.Component
	if game == nil || custommw.HTMXInfoFromContext(ctx).Targets(cartPanelTarget) {
		main = h.renderer.Fragment(templates.FragmentCartPanel, h.cartPanel(r, st))
	} else {
		main = h.renderer.Fragment(templates.FragmentGameCard, templates.GameCard{
			Game:       *game,
			Quantity:   st.sess.Cart().Quantity(game.Name),
			CSRFToken:  custommw.CSRFTokenFromContext(ctx),
			ReturnPath: safeReturnPath(r.PostFormValue("return"), "/"),
		})
	}
	oob := h.renderer.Fragment(templates.FragmentCartSummary, summary(st, true))
	h.render(w, r, templates.Join(main, oob), http.StatusOK)
}

func (h *Handlers) cartPanel(r *http.Request, st pageState) templates.CartPanel {
	c := st.sess.Cart()
	return templates.CartPanel{
		Lines:      c.Lines(st.games),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(st.games),
		CSRFToken:  custommw.CSRFTokenFromContext(r.Context()),
	}
}
