package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerLevels(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("bogus")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestFromContextDefaultsToNop(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	core, _ := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestRequestLoggerRecordsStatusAndRoute(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	r := chi.NewRouter()
	r.Use(RequestLogger(zap.New(core)))
	r.Get("/games/{id}", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/42", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	inside := logs.FilterMessage("inside handler").All()
	require.Len(t, inside, 1)
	assert.Equal(t, "/games/42", inside[0].ContextMap()["path"])

	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 1)
	entry := completed[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	assert.Equal(t, "/games/{id}", fields["route"])
}

func TestRecovererReturns500(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := Recoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestTraceMiddlewareStartsServerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	handler := TraceMiddleware()(RequestLogger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, span := StartSpan(r.Context(), "cart.increase")
		span.End()
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cart/items/1/increase", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "cart.increase", spans[0].Name())
	server := spans[1]
	assert.Equal(t, "POST /cart/items/1/increase", server.Name())
	assert.Equal(t, codes.Ok, server.Status().Code)
	assert.Equal(t, server.SpanContext().TraceID(), spans[0].SpanContext().TraceID())
	assert.Equal(t, server.SpanContext().TraceID().String(), rec.Header().Get("X-Trace-Id"))
}

func TestSanitizeStripsControlCharacters(t *testing.T) {
	assert.Equal(t, "/evilline", SanitizeRoute("/evil\nline"))
	assert.Equal(t, "/", SanitizeRoute(""))
	assert.Equal(t, "GET", SanitizeMethod("GET\x00"))
}
