package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"resty.dev/v3"
)

// DaymetURL is the ORNL DAYMET single-pixel endpoint.
const DaymetURL = "https://daymet.ornl.gov/single-pixel/api/data"

const (
	daymetYear = "year"
	daymetDay  = "yday"
	daymetDayl = "dayl (s)"
	daymetPrcp = "prcp (mm/day)"
	daymetSrad = "srad (W/m^2)"
	daymetTmax = "tmax (deg c)"
	daymetTmin = "tmin (deg c)"
)

// Daymet is an ORNL DAYMET client.
type Daymet struct {
	http *resty.Client
	url  string
}

// NewDaymet returns a DAYMET provider.
func NewDaymet(opts ...Option) *Daymet {
	client, url := newClient(DaymetURL, opts)
	return &Daymet{http: client, url: url}
}

func (d *Daymet) Name() string { return "daymet" }

type daymetResponse struct {
	Data map[string][]float64 `json:"data"`
}

// Fetch downloads day length, rainfall, shortwave radiation and temperature
// extremes. Radiation is converted from mean daylight W/m^2 to MJ/m^2/day.
func (d *Daymet) Fetch(ctx context.Context, pt Point, start, end time.Time) (*Series, error) {
	logger := ctxlog.FromContext(ctx)
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	var body daymetResponse
	resp, err := d.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":    fmt.Sprintf("%.4f", pt.Lat),
			"lon":    fmt.Sprintf("%.4f", pt.Lon),
			"vars":   "dayl,prcp,srad,tmax,tmin",
			"start":  start.Format(time.DateOnly),
			"end":    end.Format(time.DateOnly),
			"format": "json",
		}).
		SetForceResponseContentType("application/json").
		SetResult(&body).
		Get(d.url)
	if err != nil {
		return nil, fmt.Errorf("daymet request for %s: %w", pt, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("daymet request for %s: %s", pt, resp.Status())
	}

	cols := []string{daymetYear, daymetDay, daymetDayl, daymetPrcp, daymetSrad, daymetTmax, daymetTmin}
	n := -1
	for _, c := range cols {
		v, ok := body.Data[c]
		if !ok {
			return nil, fmt.Errorf("daymet response for %s lacks %q", pt, c)
		}
		if n >= 0 && len(v) != n {
			return nil, fmt.Errorf("daymet response for %s: column %q has %d values, want %d", pt, c, len(v), n)
		}
		n = len(v)
	}

	series := &Series{Latitude: pt.Lat, Longitude: pt.Lon, Source: d.Name()}
	data := body.Data
	for i := 0; i < n; i++ {
		year := int(data[daymetYear][i])
		date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(data[daymetDay][i])-1)
		series.Records = append(series.Records, Record{
			Date: date,
			Radn: data[daymetSrad][i] * data[daymetDayl][i] / 1e6,
			MaxT: data[daymetTmax][i],
			MinT: data[daymetTmin][i],
			Rain: data[daymetPrcp][i],
		})
	}
	if filled := fillLeapDays(series, end); filled > 0 {
		logger.Debug("Added Dec 31 to leap years.", "source", d.Name(), "days", filled)
	}
	logger.Info("Weather downloaded.", "source", d.Name(), "point", pt.String(), "days", len(series.Records))
	return series, nil
}

// fillLeapDays inserts Dec 31 into every leap year of s that ends on
// Dec 30, since DAYMET calendars have 365 days. The inserted day averages
// Dec 30 and the following Jan 1, or copies Dec 30 at the end of the
// series. Days after end are not added.
func fillLeapDays(s *Series, end time.Time) int {
	var out []Record
	filled := 0
	for i, r := range s.Records {
		out = append(out, r)
		if r.Date.Month() != time.December || r.Date.Day() != 30 || !isLeap(r.Date.Year()) {
			continue
		}
		dec31 := r.Date.AddDate(0, 0, 1)
		if dec31.After(end) {
			continue
		}
		if i+1 < len(s.Records) && !s.Records[i+1].Date.After(dec31) {
			continue
		}
		extra := r
		extra.Date = dec31
		if i+1 < len(s.Records) {
			next := s.Records[i+1]
			extra.Radn = (r.Radn + next.Radn) / 2
			extra.MaxT = (r.MaxT + next.MaxT) / 2
			extra.MinT = (r.MinT + next.MinT) / 2
			extra.Rain = (r.Rain + next.Rain) / 2
		}
		out = append(out, extra)
		filled++
	}
	s.Records = out
	return filled
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
