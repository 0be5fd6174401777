package httpserver_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"finitefield.org/boardgame-store/internal/store/catalog"
	"finitefield.org/boardgame-store/internal/store/login"
	"finitefield.org/boardgame-store/internal/store/testutil"
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp := testutil.NewBrowser(t, ts).Get("/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(resp.Body))
}

func TestStaticAssetsServed(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp := testutil.NewBrowser(t, ts).Get("/public/static/app.css", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(resp.Body), `[data-theme="dark"]`)
}

func TestCatalogRendersSeed(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp := testutil.NewBrowser(t, ts).Get("/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	doc := resp.Doc(t)
	require.Equal(t, "Каталог · BoardGame Store", doc.Find("title").Text())
	cards := doc.Find("article.game-card-square")
	require.Equal(t, 6, cards.Length())
	require.Equal(t, "Каркассон", testutil.Text(cards.First().Find(".game-name-square")))
	require.Equal(t, "2 990 ₽", testutil.Text(cards.First().Find(".game-price-square")))
	require.Equal(t, "0 товаров", testutil.Text(doc.Find("#cart-summary .cart-items")))
	require.Equal(t, "0 ₽", testutil.Text(doc.Find("#cart-summary .cart-price")))
	require.Equal(t, "light", doc.Find("html").AttrOr("data-theme", ""))
	require.Equal(t, 5, doc.Find(".filter-nav a").Length())
}

func TestCatalogFilter(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts)

	tests := []struct {
		query string
		want  []string
	}{
		{"rpg", []string{"Подземелья и драконы"}},
		{"family", []string{"Каркассон", "Диксит"}},
		{"strategy", []string{"Колонизаторы", "Эпичные схватки"}},
		{"bogus", []string{"Каркассон", "Колонизаторы", "Манчкин", "Эпичные схватки", "Диксит", "Подземелья и драконы"}},
	}
	for _, tc := range tests {
		doc := b.Get("/?category="+tc.query, nil).Doc(t)
		var got []string
		doc.Find("article .game-name-square").Each(func(_ int, s *goquery.Selection) {
			got = append(got, testutil.Text(s))
		})
		require.Equal(t, tc.want, got, "category %s", tc.query)
	}
}

func TestCatalogEmptyFilterState(t *testing.T) {
	t.Parallel()

	c, err := catalog.New([]catalog.Game{
		{ID: 1, Name: "Каркассон", Price: 2990, Category: catalog.CategoryFamily},
	})
	require.NoError(t, err)

	ts := testutil.NewServer(t, testutil.WithCatalog(c))
	doc := testutil.NewBrowser(t, ts).Get("/?category=rpg", nil).Doc(t)
	require.Zero(t, doc.Find("article.game-card-square").Length())
	require.Equal(t, "Игры не найдены", testutil.Text(doc.Find(".no-games h3")))
}

func TestCartFlowWithPlainForms(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts)

	resp := b.Post("/cart/items/1/increase", url.Values{"return": {"/?category=family"}}, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/?category=family", resp.Header.Get("Location"))

	b.Post("/cart/items/1/increase", nil, nil)
	b.Post("/cart/items/5/quantity", url.Values{"quantity": {"3"}}, nil)
	b.Post("/cart/items/3/increase", nil, nil)

	doc := b.Get("/cart", nil).Doc(t)
	require.Equal(t, 3, doc.Find(".cart-item-card").Length())
	require.Equal(t, "6 товаров", testutil.Text(doc.Find(".cart-items-count")))
	require.Equal(t, "16 240 ₽", testutil.Text(doc.Find(".cart-total-price")))

	b.Post("/cart/items/3/decrease", nil, nil)
	b.Post("/cart/items/1/remove", url.Values{"return": {"/cart"}}, nil)

	doc = b.Get("/cart", nil).Doc(t)
	require.Equal(t, 1, doc.Find(".cart-item-card").Length())
	require.Equal(t, "Диксит", doc.Find(".cart-item-card").AttrOr("data-game", ""))
	require.Equal(t, "8 370 ₽", testutil.Text(doc.Find(".cart-total-price")))

	doc = b.Get("/", nil).Doc(t)
	require.Equal(t, "3", testutil.Text(doc.Find("#game-5 .quantity-square")))
	require.Equal(t, 1, doc.Find("#game-1 .add-to-cart-btn-square").Length(), "removed item resets the card counter")

	resp = b.Post("/cart/clear", nil, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/cart", resp.Header.Get("Location"))

	doc = b.Get("/cart", nil).Doc(t)
	require.Equal(t, "Корзина пуста", testutil.Text(doc.Find(".no-games h3")))
}

func TestQuantityZeroRemovesEntry(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts)

	b.Post("/cart/items/1/quantity", url.Values{"quantity": {"2"}}, nil)
	doc := b.Get("/dashboard", nil).Doc(t)
	require.Equal(t, "2", testutil.Text(doc.Find("#stat-items .stat-number")))
	require.Equal(t, "5 980 ₽", testutil.Text(doc.Find("#stat-price .stat-number")))

	b.Post("/cart/items/1/quantity", url.Values{"quantity": {"0"}}, nil)
	doc = b.Get("/dashboard", nil).Doc(t)
	require.Equal(t, "0", testutil.Text(doc.Find("#stat-items .stat-number")))
	require.Equal(t, "0", testutil.Text(doc.Find("#stat-distinct .stat-number")))
}

func TestInvalidQuantityIsBadRequest(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp := testutil.NewBrowser(t, ts).Post("/cart/items/1/quantity", url.Values{"quantity": {"many"}}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuantityIsBounded(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts)

	for _, qty := range []string{"9223372036854775807", "1000"} {
		resp := b.Post("/cart/items/6/quantity", url.Values{"quantity": {qty}}, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "quantity %s", qty)
	}

	resp := b.Post("/cart/items/6/quantity", url.Values{"quantity": {"999"}}, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	b.Post("/cart/items/6/increase", nil, nil)
	b.Post("/cart/items/1/increase", nil, nil)

	doc := b.Get("/dashboard", nil).Doc(t)
	require.Equal(t, "1000", testutil.Text(doc.Find("#stat-items .stat-number")))
	require.Equal(t, "5 887 100 ₽", testutil.Text(doc.Find("#stat-price .stat-number")))
}

func TestUnknownGameIsNotFound(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts)

	resp := b.Post("/cart/items/99/increase", nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = b.Get("/games/abc", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Игра не найдена", testutil.Text(resp.Doc(t).Find(".not-found h3")))

	doc := b.Get("/dashboard", nil).Doc(t)
	require.Equal(t, "0", testutil.Text(doc.Find("#stat-items .stat-number")))
}

func TestUnknownRouteRendersNotFoundPage(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp := testutil.NewBrowser(t, ts).Get("/nope", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Страница не найдена", testutil.Text(resp.Doc(t).Find(".not-found h3")))
}

func TestPostWithoutCSRFIsForbidden(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts)
	b.CSRFToken()

	resp := b.Post("/cart/items/1/increase", url.Values{"csrf_token": {"forged"}}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHTMXIncreaseReturnsCardAndOOBSummary(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts)

	resp := b.Post("/cart/items/2/increase", nil, testutil.HTMX("game-2"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := resp.Doc(t)
	require.Zero(t, doc.Find("header.app-header").Length(), "fragment must not include the layout")
	require.Equal(t, "1", testutil.Text(doc.Find("#game-2 .quantity-square")))
	summary := doc.Find("#cart-summary")
	require.Equal(t, "true", summary.AttrOr("hx-swap-oob", ""))
	require.Equal(t, "1 товаров", testutil.Text(summary.Find(".cart-items")))
	require.Equal(t, "4 590 ₽", testutil.Text(summary.Find(".cart-price")))
}

func TestHTMXCartPanelUpdates(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts)
	b.Post("/cart/items/3/quantity", url.Values{"quantity": {"1"}}, nil)
	b.Post("/cart/items/5/quantity", url.Values{"quantity": {"3"}}, nil)

	resp := b.Post("/cart/items/3/remove", nil, testutil.HTMX("cart-panel"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := resp.Doc(t)
	require.Equal(t, 1, doc.Find("#cart-panel .cart-item-card").Length())
	require.Equal(t, "3 товаров", testutil.Text(doc.Find("#cart-summary .cart-items")))
	require.Equal(t, "8 370 ₽", testutil.Text(doc.Find("#cart-summary .cart-price")))

	resp = b.Post("/cart/clear", nil, testutil.HTMX("cart-panel"))
	doc = resp.Doc(t)
	require.Equal(t, "Корзина пуста", testutil.Text(doc.Find("#cart-panel .no-games h3")))
	require.Equal(t, "0 товаров", testutil.Text(doc.Find("#cart-summary .cart-items")))
}

func TestCartSummaryFragmentRequiresHTMX(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts)

	require.Equal(t, http.StatusNotFound, b.Get("/fragments/cart-summary", nil).StatusCode)

	b.Post("/cart/items/6/increase", nil, nil)
	resp := b.Get("/fragments/cart-summary", testutil.HTMX(""))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := resp.Doc(t)
	require.Equal(t, "5 890 ₽", testutil.Text(doc.Find("#cart-summary .cart-price")))
	require.Empty(t, doc.Find("#cart-summary").AttrOr("hx-swap-oob", ""))
}

func TestCheckoutKeepsCart(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t, testutil.WithOrderNumber(func() string { return "order-42" }))
	b := testutil.NewBrowser(t, ts)

	resp := b.Post("/cart/checkout", nil, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/cart", resp.Header.Get("Location"))

	b.Post("/cart/items/1/quantity", url.Values{"quantity": {"2"}}, nil)
	resp = b.Post("/cart/checkout", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := resp.Doc(t)
	require.Equal(t, "Заказ оформлен! Сумма: 5 980 ₽", testutil.Text(doc.Find(".checkout-confirmation h3")))
	require.Equal(t, "order-42", testutil.Text(doc.Find(".order-number")))

	doc = b.Get("/cart", nil).Doc(t)
	require.Equal(t, "5 980 ₽", testutil.Text(doc.Find(".cart-total-price")))
}

func TestLoginStub(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts)

	doc := b.Get("/login", nil).Doc(t)
	require.Equal(t, 1, doc.Find(`form[action="/login"] input[name=email][required]`).Length())
	require.Equal(t, "/login", doc.Find(".main-nav a.active").AttrOr("href", ""))

	resp := b.Post("/login", url.Values{"email": {""}, "password": {""}}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Введите email и пароль", testutil.Text(resp.Doc(t).Find(".form-error")))

	resp = b.Post("/login", url.Values{"email": {"player@example.com"}, "password": {"anything"}}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc = resp.Doc(t)
	require.Equal(t, "Вход выполнен успешно!", testutil.Text(doc.Find(".login-success h3")))
	require.Equal(t, "1;url=/dashboard", doc.Find(`meta[http-equiv=refresh]`).AttrOr("content", ""))

	doc = b.Get("/dashboard", nil).Doc(t)
	require.Equal(t, "player@example.com", testutil.Text(doc.Find(".account-email")))

	resp = b.Post("/logout", nil, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	doc = b.Get("/", nil).Doc(t)
	require.Zero(t, doc.Find(".account-email").Length())
	require.Equal(t, "Вы вышли из системы", testutil.Text(doc.Find(".flash")))
}

type blockingAuthenticator struct{}

func (blockingAuthenticator) Authenticate(ctx context.Context, creds login.Credentials) (*login.Account, error) {
	if err := login.Wait(ctx, time.Hour); err != nil {
		return nil, err
	}
	return &login.Account{Email: creds.Email}, nil
}

func TestAbandonedLoginIsNotRecorded(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t, testutil.WithAuthenticator(blockingAuthenticator{}))
	b := testutil.NewBrowser(t, ts)
	token := b.CSRFToken()

	jar := b.Jar()
	client := &http.Client{Jar: jar, Timeout: 100 * time.Millisecond}
	form := url.Values{"email": {"a@b.c"}, "password": {"x"}, "csrf_token": {token}}
	_, err := client.PostForm(ts.URL+"/login", form)
	require.Error(t, err)

	doc := b.Get("/dashboard", nil).Doc(t)
	require.Zero(t, doc.Find(".account-email").Length())
}

func TestThemeToggle(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts)

	doc := b.Get("/?category=rpg", nil).Doc(t)
	require.Equal(t, "/?category=rpg", doc.Find(`.theme-form input[name=return]`).AttrOr("value", ""))
	resp := b.Post("/theme", url.Values{"return": {"/?category=rpg"}}, nil)
	require.Equal(t, "/?category=rpg", resp.Header.Get("Location"))
	doc = b.Get("/?category=rpg", nil).Doc(t)
	require.Equal(t, "dark", doc.Find("html").AttrOr("data-theme", ""))
	require.Equal(t, 1, doc.Find("article.game-card-square").Length())
	b.Post("/theme", nil, nil)

	doc = b.Get("/cart", nil).Doc(t)
	require.Equal(t, "🌙", testutil.Text(doc.Find(".theme-toggle")))
	require.Equal(t, "/cart", doc.Find(`.theme-form input[name=return]`).AttrOr("value", ""))

	resp = b.Post("/theme", url.Values{"return": {"/cart"}}, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/cart", resp.Header.Get("Location"))

	doc = b.Get("/cart", nil).Doc(t)
	require.Equal(t, "dark", doc.Find("html").AttrOr("data-theme", ""))
	require.Equal(t, "☀️", testutil.Text(doc.Find(".theme-toggle")))

	resp = b.Post("/theme", url.Values{"return": {"https://evil.example/"}}, nil)
	require.Equal(t, "/", resp.Header.Get("Location"))
	doc = b.Get("/", nil).Doc(t)
	require.Equal(t, "light", doc.Find("html").AttrOr("data-theme", ""))
}

func TestGameDetail(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp := testutil.NewBrowser(t, ts).Get("/games/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := resp.Doc(t)
	require.Equal(t, "Манчкин", testutil.Text(doc.Find(".game-description h2")))
	require.Contains(t, testutil.Text(doc.Find(".game-category")), "Приключения")
	require.Greater(t, doc.Find(".game-description p").Length(), 1)
}

func TestSessionsAreIsolated(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	alice := testutil.NewBrowser(t, ts)
	bob := testutil.NewBrowser(t, ts)

	alice.Post("/cart/items/4/increase", nil, nil)
	doc := bob.Get("/dashboard", nil).Doc(t)
	require.Equal(t, "0", testutil.Text(doc.Find("#stat-items .stat-number")))
	doc = alice.Get("/dashboard", nil).Doc(t)
	require.Equal(t, "1", testutil.Text(doc.Find("#stat-items .stat-number")))
}
