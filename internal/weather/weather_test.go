package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/apsimgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func powerHandler(t *testing.T, failures int32) (http.HandlerFunc, *atomic.Int32) {
	var calls atomic.Int32
	return func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		q := r.URL.Query()
		assert.Equal(t, "AG", q.Get("community"))
		assert.Equal(t, "20200101", q.Get("start"))
		assert.Equal(t, "20200103", q.Get("end"))
		assert.Equal(t, "-93.6000", q.Get("longitude"))
		assert.Equal(t, "42.0000", q.Get("latitude"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
		  "header": {"fill_value": -999.0},
		  "properties": {"parameter": {
		    "ALLSKY_SFC_SW_DWN": {"20200101": 7.5, "20200102": -999.0, "20200103": 8.1},
		    "T2M_MAX": {"20200101": 1.2, "20200102": 3.4, "20200103": -0.5},
		    "T2M_MIN": {"20200101": -8.0, "20200102": -6.5, "20200103": -10.1},
		    "PRECTOTCORR": {"20200101": 0.0, "20200102": 2.5, "20200103": 0.1}
		  }}
		}`)
	}, &calls
}

func TestPower_Fetch(t *testing.T) {
	ctx, logs := testutil.Context(t)
	handler, _ := powerHandler(t, 0)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	p := NewPower(WithBaseURL(srv.URL), WithRetry(0, time.Millisecond))
	series, err := p.Fetch(ctx, Point{Lon: -93.6, Lat: 42}, day("2020-01-01"), day("2020-01-03"))
	require.NoError(t, err)

	want := []Record{
		{Date: day("2020-01-01"), Radn: 7.5, MaxT: 1.2, MinT: -8.0, Rain: 0},
		{Date: day("2020-01-02"), Radn: 7.5, MaxT: 3.4, MinT: -6.5, Rain: 2.5},
		{Date: day("2020-01-03"), Radn: 8.1, MaxT: -0.5, MinT: -10.1, Rain: 0.1},
	}
	if diff := cmp.Diff(want, series.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 42.0, series.Latitude)
	assert.Contains(t, logs.String(), "Filled missing weather values")
}

func TestPower_RetriesServerErrors(t *testing.T) {
	ctx, _ := testutil.Context(t)
	handler, calls := powerHandler(t, 2)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	p := NewPower(WithBaseURL(srv.URL), WithRetry(3, time.Millisecond))
	_, err := p.Fetch(ctx, Point{Lon: -93.6, Lat: 42}, day("2020-01-01"), day("2020-01-03"))
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPower_GivesUpAfterRetries(t *testing.T) {
	ctx, _ := testutil.Context(t)
	handler, calls := powerHandler(t, 100)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	p := NewPower(WithBaseURL(srv.URL), WithRetry(1, time.Millisecond))
	_, err := p.Fetch(ctx, Point{Lon: -93.6, Lat: 42}, day("2020-01-01"), day("2020-01-03"))
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_RejectsBadRange(t *testing.T) {
	ctx, _ := testutil.Context(t)
	_, err := NewPower().Fetch(ctx, Point{}, day("2020-02-01"), day("2020-01-01"))
	require.Error(t, err)
}

func TestDaymet_Fetch(t *testing.T) {
	ctx, _ := testutil.Context(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2019-12-31", r.URL.Query().Get("start"))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"data": map[string][]float64{
				"year":          {2019, 2020},
				"yday":          {365, 1},
				"dayl (s)":      {32000, 32400},
				"prcp (mm/day)": {1.5, 0},
				"srad (W/m^2)":  {200, 250},
				"tmax (deg c)":  {2.5, 0.5},
				"tmin (deg c)":  {-5, -9},
			},
		}))
	}))
	defer srv.Close()

	d := NewDaymet(WithBaseURL(srv.URL), WithRetry(0, time.Millisecond))
	series, err := d.Fetch(ctx, Point{Lon: -93.6, Lat: 42}, day("2019-12-31"), day("2020-01-01"))
	require.NoError(t, err)
	require.Len(t, series.Records, 2)
	assert.Equal(t, day("2019-12-31"), series.Records[0].Date)
	assert.InDelta(t, 6.4, series.Records[0].Radn, 1e-9)
	assert.InDelta(t, 8.1, series.Records[1].Radn, 1e-9)
	assert.Equal(t, "daymet", series.Source)
}

// daymetYears serves 365 rows per year, as DAYMET does for leap years too.
func daymetYears(t *testing.T, years ...int) *httptest.Server {
	cols := map[string][]float64{}
	for _, y := range years {
		for d := 1; d <= 365; d++ {
			cols["year"] = append(cols["year"], float64(y))
			cols["yday"] = append(cols["yday"], float64(d))
			cols["dayl (s)"] = append(cols["dayl (s)"], 40000)
			cols["prcp (mm/day)"] = append(cols["prcp (mm/day)"], float64(y-2019))
			cols["srad (W/m^2)"] = append(cols["srad (W/m^2)"], 100)
			cols["tmax (deg c)"] = append(cols["tmax (deg c)"], float64(d%10))
			cols["tmin (deg c)"] = append(cols["tmin (deg c)"], -1)
		}
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": cols}))
	}))
}

func TestDaymet_FillsLeapYearDec31(t *testing.T) {
	ctx, _ := testutil.Context(t)
	srv := daymetYears(t, 2020)
	defer srv.Close()

	series, err := NewDaymet(WithBaseURL(srv.URL)).Fetch(ctx, Point{Lon: -93.6, Lat: 42}, day("2020-01-01"), day("2020-12-31"))
	require.NoError(t, err)
	require.Len(t, series.Records, 366)
	last := series.Records[365]
	assert.Equal(t, day("2020-12-31"), last.Date)
	assert.Equal(t, series.Records[364].MaxT, last.MaxT)
}

func TestDaymet_LeapDayAveragesNeighbours(t *testing.T) {
	ctx, _ := testutil.Context(t)
	srv := daymetYears(t, 2020, 2021)
	defer srv.Close()

	series, err := NewDaymet(WithBaseURL(srv.URL)).Fetch(ctx, Point{}, day("2020-01-01"), day("2021-12-31"))
	require.NoError(t, err)
	require.Len(t, series.Records, 366+365)
	for i := 1; i < len(series.Records); i++ {
		require.Equal(t, series.Records[i-1].Date.AddDate(0, 0, 1), series.Records[i].Date, "gap at %d", i)
	}
	dec31 := series.Records[365]
	assert.Equal(t, day("2020-12-31"), dec31.Date)
	// Dec 30 2020 rains 1 mm, Jan 1 2021 rains 2 mm.
	assert.InDelta(t, 1.5, dec31.Rain, 1e-9)
	assert.InDelta(t, 3.0, dec31.MaxT, 1e-9)
}

func TestDaymet_RaggedColumns(t *testing.T) {
	ctx, _ := testutil.Context(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"year": [2020], "yday": [1, 2], "dayl (s)": [1], "prcp (mm/day)": [1], "srad (W/m^2)": [1], "tmax (deg c)": [1], "tmin (deg c)": [1]}}`)
	}))
	defer srv.Close()

	_, err := NewDaymet(WithBaseURL(srv.URL)).Fetch(ctx, Point{}, day("2020-01-01"), day("2020-01-02"))
	require.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider("DAYMET")
	require.NoError(t, err)
	assert.Equal(t, "daymet", p.Name())

	p, err = NewProvider("")
	require.NoError(t, err)
	assert.Equal(t, "nasa_power", p.Name())

	_, err = NewProvider("gridmet")
	require.Error(t, err)
}

// yearOf builds a year of records whose mean temperature in month m is m.
func yearOf(year int) []Record {
	var recs []Record
	for d := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC); d.Year() == year; d = d.AddDate(0, 0, 1) {
		m := float64(d.Month())
		recs = append(recs, Record{Date: d, MaxT: m + 5, MinT: m - 5})
	}
	return recs
}

func TestTavAmp(t *testing.T) {
	tav, amp := TavAmp(append(yearOf(2001), yearOf(2002)...))
	assert.InDelta(t, 6.5, tav, 1e-9)
	assert.InDelta(t, 11, amp, 1e-9)

	tav, amp = TavAmp(yearOf(2001)[:59])
	assert.InDelta(t, 1.5, tav, 1e-9)
	assert.InDelta(t, 1, amp, 1e-9, "partial years fall back to the monthly spread")

	tav, amp = TavAmp(nil)
	assert.Zero(t, tav)
	assert.Zero(t, amp)
}

func TestMet_WriteParse(t *testing.T) {
	in := &Series{Latitude: 42, Longitude: -93.6, Source: "nasa_power", Records: []Record{
		{Date: day("2020-01-01"), Radn: 7.5, MaxT: 1.2, MinT: -8.0, Rain: 0},
		{Date: day("2020-01-02"), Radn: 7.25, MaxT: 3.4, MinT: -6.5, Rain: 2.5},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteMet(&buf, in))

	text := buf.String()
	assert.True(t, strings.HasPrefix(text, "[weather.met.weather]\n"))
	assert.Contains(t, text, "tav = ")
	assert.Contains(t, text, "2020   2   7.25    3.4   -6.5    2.5\n")

	out, err := ParseMet(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out, cmpopts.EquateApprox(0, 0.051)); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveMet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "met", "point.met")
	require.NoError(t, SaveMet(path, &Series{Records: yearOf(2001)}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 365+7, strings.Count(string(data), "\n"))

	require.Error(t, SaveMet(path, &Series{}))
}

func TestParseMet_MissingHeader(t *testing.T) {
	_, err := ParseMet(strings.NewReader("[weather.met.weather]\nlatitude = 1\n"))
	require.Error(t, err)
	_, err = ParseMet(strings.NewReader("year day radn maxt\n"))
	require.Error(t, err)
}
