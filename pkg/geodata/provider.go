package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	MAX_PEDESTRIAN_VOLUME     = 10000.0
	MAX_LAMPS_PER_1000_M2     = 5.0
	MAX_CRIMES_PER_AREA       = 100.0
	CRIME_LOOKBACK_MONTHS     = 6
	CRIME_QUERY_LIMIT         = 1000
	DEFAULT_QUERY_RADIUS      = 100.0
	DEFAULT_FETCH_TIMEOUT_SEC = 30
)

// HTTPProvider. pedestrian counts and crime complaints from socrata endpoints,
// street lamps from an overpass endpoint. an empty endpoint disables that signal.
type HTTPProvider struct {
	client             *http.Client
	pedestrianEndpoint string
	overpassEndpoint   string
	crimeEndpoint      string
	radiusMeters       float64
	now                func() time.Time
	log                *zap.Logger
}

func NewHTTPProvider(log *zap.Logger) *HTTPProvider {
	viper.SetDefault("geodata.query_radius_meters", DEFAULT_QUERY_RADIUS)
	viper.SetDefault("geodata.fetch_timeout", fmt.Sprintf("%ds", DEFAULT_FETCH_TIMEOUT_SEC))

	return NewHTTPProviderWithEndpoints(
		&http.Client{Timeout: viper.GetDuration("geodata.fetch_timeout")},
		viper.GetString("geodata.pedestrian_endpoint"),
		viper.GetString("geodata.overpass_endpoint"),
		viper.GetString("geodata.crime_endpoint"),
		viper.GetFloat64("geodata.query_radius_meters"),
		log,
	)
}

func NewHTTPProviderWithEndpoints(client *http.Client, pedestrianEndpoint, overpassEndpoint, crimeEndpoint string,
	radiusMeters float64, log *zap.Logger) *HTTPProvider {
	if radiusMeters <= 0 {
		radiusMeters = DEFAULT_QUERY_RADIUS
	}
	return &HTTPProvider{
		client:             client,
		pedestrianEndpoint: pedestrianEndpoint,
		overpassEndpoint:   overpassEndpoint,
		crimeEndpoint:      crimeEndpoint,
		radiusMeters:       radiusMeters,
		now:                time.Now,
		log:                log,
	}
}

// Configured. true when at least one signal has an endpoint.
func (p *HTTPProvider) Configured() bool {
	return p.pedestrianEndpoint != "" || p.overpassEndpoint != "" || p.crimeEndpoint != ""
}

type pedestrianCount struct {
	Vol json.Number `json:"vol"`
}

// FetchPopulationDensity. summed pedestrian volume around the point, normalized by MAX_PEDESTRIAN_VOLUME.
func (p *HTTPProvider) FetchPopulationDensity(ctx context.Context, lat, lon float64) (float64, error) {
	if p.pedestrianEndpoint == "" {
		return 0, ErrSignalDisabled
	}
	q := url.Values{}
	q.Set("$where", fmt.Sprintf("within_circle(the_geom, %f, %f, %f)", lat, lon, p.radiusMeters))

	var rows []pedestrianCount
	if err := p.getJSON(ctx, p.pedestrianEndpoint+"?"+q.Encode(), &rows); err != nil {
		return 0, fmt.Errorf("fetch pedestrian counts: %w", err)
	}

	total := 0.0
	for _, r := range rows {
		if v, err := r.Vol.Float64(); err == nil {
			total += v
		}
	}
	return math.Min(1, total/MAX_PEDESTRIAN_VOLUME), nil
}

type overpassResponse struct {
	Elements []json.RawMessage `json:"elements"`
}

// FetchStreetlightCoverage. street lamps per 1000 m2 around the point, normalized by MAX_LAMPS_PER_1000_M2.
func (p *HTTPProvider) FetchStreetlightCoverage(ctx context.Context, lat, lon float64) (float64, error) {
	if p.overpassEndpoint == "" {
		return 0, ErrSignalDisabled
	}
	query := fmt.Sprintf(`[out:json][timeout:25];node["highway"="street_lamp"](around:%f,%f,%f);out ids;`,
		p.radiusMeters, lat, lon)
	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.overpassEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp overpassResponse
	if err := p.do(req, &resp); err != nil {
		return 0, fmt.Errorf("fetch street lamps: %w", err)
	}

	area := math.Pi * p.radiusMeters * p.radiusMeters
	lampsPer1000 := float64(len(resp.Elements)) / area * 1000
	return math.Min(1, lampsPer1000/MAX_LAMPS_PER_1000_M2), nil
}

// FetchCrimeInArea. complaints of the last CRIME_LOOKBACK_MONTHS around the point, normalized by MAX_CRIMES_PER_AREA.
func (p *HTTPProvider) FetchCrimeInArea(ctx context.Context, lat, lon float64) (float64, error) {
	if p.crimeEndpoint == "" {
		return 0, ErrSignalDisabled
	}
	since := p.now().AddDate(0, -CRIME_LOOKBACK_MONTHS, 0).Format("2006-01-02")
	q := url.Values{}
	q.Set("$where", fmt.Sprintf("within_circle(lat_lon, %f, %f, %f) AND cmplnt_fr_dt >= '%s'",
		lat, lon, p.radiusMeters, since))
	q.Set("$limit", fmt.Sprint(CRIME_QUERY_LIMIT))

	var rows []json.RawMessage
	if err := p.getJSON(ctx, p.crimeEndpoint+"?"+q.Encode(), &rows); err != nil {
		return 0, fmt.Errorf("fetch crime complaints: %w", err)
	}
	return math.Min(1, float64(len(rows))/MAX_CRIMES_PER_AREA), nil
}

func (p *HTTPProvider) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return p.do(req, out)
}

func (p *HTTPProvider) do(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Host, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	p.log.Debug("geodata fetched", zap.String("host", req.URL.Host), zap.String("path", req.URL.Path))
	return nil
}
