package geodata

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*HTTPProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := NewHTTPProviderWithEndpoints(srv.Client(), srv.URL+"/pedestrian", srv.URL+"/overpass", srv.URL+"/crime",
		100, zap.NewNop())
	p.now = func() time.Time { return time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC) }
	return p, srv
}

func TestHTTPProviderSignals(t *testing.T) {
	var lastCrimeQuery string
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pedestrian":
			fmt.Fprint(w, `[{"vol":"2500"},{"vol":"2500"},{"vol":null},{}]`)
		case "/overpass":
			assert.NoError(t, r.ParseForm())
			assert.Contains(t, r.PostForm.Get("data"), `node["highway"="street_lamp"]`)
			elements := strings.Repeat(`{"type":"node"},`, 78)
			fmt.Fprintf(w, `{"elements":[%s{"type":"node"}]}`, elements)
		case "/crime":
			lastCrimeQuery = r.URL.Query().Get("$where")
			fmt.Fprintf(w, "[%s{}]", strings.Repeat("{},", 24))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	pop, err := p.FetchPopulationDensity(ctx, -7.79, 110.37)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, pop, 1e-9)

	light, err := p.FetchStreetlightCoverage(ctx, -7.79, 110.37)
	require.NoError(t, err)
	want := math.Min(1, 79/(math.Pi*100*100)*1000/MAX_LAMPS_PER_1000_M2)
	assert.InDelta(t, want, light, 1e-9)

	crime, err := p.FetchCrimeInArea(ctx, -7.79, 110.37)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, crime, 1e-9)
	assert.Contains(t, lastCrimeQuery, "cmplnt_fr_dt >= '2025-01-15'")
}

func TestHTTPProviderFailures(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pedestrian":
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		default:
			fmt.Fprint(w, `not json`)
		}
	})
	ctx := context.Background()

	_, err := p.FetchPopulationDensity(ctx, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = p.FetchCrimeInArea(ctx, 0, 0)
	assert.Error(t, err)

	disabled := NewHTTPProviderWithEndpoints(http.DefaultClient, "", "", "", 0, zap.NewNop())
	assert.False(t, disabled.Configured())
	_, err = disabled.FetchStreetlightCoverage(ctx, 0, 0)
	assert.ErrorIs(t, err, ErrSignalDisabled)
}
