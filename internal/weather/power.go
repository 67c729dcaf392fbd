package weather

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"resty.dev/v3"
)

// PowerURL is the NASA POWER daily point endpoint.
const PowerURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

var powerParameters = []string{"ALLSKY_SFC_SW_DWN", "T2M_MAX", "T2M_MIN", "PRECTOTCORR"}

// Power is a NASA POWER client.
type Power struct {
	http *resty.Client
	url  string
}

// NewPower returns a NASA POWER provider.
func NewPower(opts ...Option) *Power {
	client, url := newClient(PowerURL, opts)
	return &Power{http: client, url: url}
}

func (p *Power) Name() string { return "nasa_power" }

type powerResponse struct {
	Header struct {
		FillValue float64 `json:"fill_value"`
	} `json:"header"`
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
	Messages []string `json:"messages"`
}

// Fetch downloads radiation, temperature extremes and corrected rainfall.
// Days the service reports as missing take the previous day's value.
func (p *Power) Fetch(ctx context.Context, pt Point, start, end time.Time) (*Series, error) {
	logger := ctxlog.FromContext(ctx)
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	var body powerResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"parameters": strings.Join(powerParameters, ","),
			"community":  "AG",
			"longitude":  fmt.Sprintf("%.4f", pt.Lon),
			"latitude":   fmt.Sprintf("%.4f", pt.Lat),
			"start":      start.Format("20060102"),
			"end":        end.Format("20060102"),
			"format":     "JSON",
		}).
		SetForceResponseContentType("application/json").
		SetResult(&body).
		Get(p.url)
	if err != nil {
		return nil, fmt.Errorf("nasa power request for %s: %w", pt, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("nasa power request for %s: %s", pt, resp.Status())
	}

	params := body.Properties.Parameter
	for _, name := range powerParameters {
		if _, ok := params[name]; !ok {
			return nil, fmt.Errorf("nasa power response for %s lacks %s", pt, name)
		}
	}
	fill := body.Header.FillValue
	if fill == 0 {
		fill = -999
	}

	days := make([]string, 0, len(params["T2M_MAX"]))
	for day := range params["T2M_MAX"] {
		days = append(days, day)
	}
	slices.Sort(days)

	series := &Series{Latitude: pt.Lat, Longitude: pt.Lon, Source: p.Name()}
	var filled int
	var prev Record
	for i, day := range days {
		date, err := time.Parse("20060102", day)
		if err != nil {
			return nil, fmt.Errorf("nasa power response: bad date %q", day)
		}
		rec := Record{Date: date}
		fields := []*float64{&rec.Radn, &rec.MaxT, &rec.MinT, &rec.Rain}
		previous := []float64{prev.Radn, prev.MaxT, prev.MinT, prev.Rain}
		for j, name := range powerParameters {
			v, ok := params[name][day]
			if !ok || v == fill || math.IsNaN(v) {
				if i == 0 {
					return nil, fmt.Errorf("nasa power response: %s missing on first day %s", name, day)
				}
				v = previous[j]
				filled++
			}
			*fields[j] = v
		}
		series.Records = append(series.Records, rec)
		prev = rec
	}
	if filled > 0 {
		logger.Warn("Filled missing weather values from the previous day.", "source", p.Name(), "values", filled)
	}
	logger.Info("Weather downloaded.", "source", p.Name(), "point", pt.String(), "days", len(series.Records))
	return series, nil
}
