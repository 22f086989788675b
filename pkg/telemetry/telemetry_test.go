package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func TestInit_MetricsWithoutTracing(t *testing.T) {
	p, shutdown, err := Init(context.Background(), &Config{ServiceName: "catalog-api"})
	require.NoError(t, err)
	defer shutdown(context.Background())

	counter, err := p.NewHTTPRequestCounter()
	require.NoError(t, err)
	counter.Add(context.Background(), 2, metric.WithAttributes(attribute.String("route", "/api/songs")))

	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), "catalog_api_http_requests_total")
	assert.Contains(t, string(body), `route="/api/songs"`)
}

func TestInit_TwiceDoesNotCollide(t *testing.T) {
	_, s1, err := Init(context.Background(), &Config{ServiceName: "a"})
	require.NoError(t, err)
	defer s1(context.Background())

	_, s2, err := Init(context.Background(), &Config{ServiceName: "a"})
	require.NoError(t, err)
	defer s2(context.Background())
}

func TestNoopSpan(t *testing.T) {
	p := NewNoop()
	ctx, span := p.StartSpan(context.Background(), "op")
	span.SetAttribute("k", 1)
	span.SetError(errors.New("boom"))
	span.End()

	assert.Empty(t, span.TraceID())
	assert.Empty(t, TraceIDFromContext(ctx))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "catalog_api", sanitizeName("catalog-api"))
}

func TestAnyAttr(t *testing.T) {
	assert.Equal(t, attribute.StringValue("x"), anyAttr("k", "x").Value)
	assert.Equal(t, attribute.IntValue(3), anyAttr("k", 3).Value)
	assert.Equal(t, attribute.BoolValue(true), anyAttr("k", true).Value)
	assert.Equal(t, attribute.StringValue("[1 2]"), anyAttr("k", []int{1, 2}).Value)
}
