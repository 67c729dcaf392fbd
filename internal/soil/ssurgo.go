package soil

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"resty.dev/v3"
)

// SSURGOURL is the USDA Soil Data Access tabular SOAP endpoint.
const SSURGOURL = "https://SDMDataAccess.nrcs.usda.gov/Tabular/SDMTabularService.asmx"

const (
	sdaNamespace  = "http://SDMDataAccess.nrcs.usda.gov/Tabular/SDMTabularService.asmx"
	sdaSOAPAction = sdaNamespace + "/RunQuery"
)

// ErrNoSoil is returned when the service has no horizon data for a point.
var ErrNoSoil = errors.New("no soil data at point")

const horizonQuery = `SELECT co.cokey, co.compname, co.comppct_r, ch.hzdept_r, ch.hzdepb_r,
 ch.sandtotal_r, ch.silttotal_r, ch.claytotal_r, ch.om_r, ch.dbthirdbar_r,
 ch.wthirdbar_r, ch.wfifteenbar_r, ch.ksat_r, ch.ph1to1h2o_r, ch.cec7_r
FROM mapunit mu
 INNER JOIN component co ON mu.mukey = co.mukey
 INNER JOIN chorizon ch ON co.cokey = ch.cokey
WHERE mu.mukey IN (SELECT * FROM SDA_Get_Mukey_from_intersection_with_WktWgs84('point(%.6f %.6f)'))
 AND co.majcompflag = 'Yes'
ORDER BY co.comppct_r DESC, co.cokey, ch.hzdept_r`

// column converts one service column into a model field.
type column struct {
	field   string
	convert func(v float64, cfg *Config) float64
}

func scale(f float64) func(float64, *Config) float64 {
	return func(v float64, _ *Config) float64 { return v * f }
}

var columns = map[string]column{
	"sandtotal_r":   {"ParticleSizeSand", scale(1)},
	"silttotal_r":   {"ParticleSizeSilt", scale(1)},
	"claytotal_r":   {"ParticleSizeClay", scale(1)},
	"dbthirdbar_r":  {"BD", scale(1)},
	"wthirdbar_r":   {"DUL", scale(0.01)},
	"wfifteenbar_r": {"LL15", scale(0.01)},
	"ksat_r":        {"KS", scale(86.4)}, // um/s to mm/day
	"ph1to1h2o_r":   {"PH", scale(1)},
	"cec7_r":        {"CEC", scale(1)},
	"om_r":          {"Carbon", func(v float64, cfg *Config) float64 { return v / cfg.OMToCarbon }},
}

// SSURGO queries the Soil Data Access tabular service.
type SSURGO struct {
	http *resty.Client
	url  string
	cfg  *Config
}

// SSURGOOption configures an SSURGO client.
type SSURGOOption func(*SSURGO)

// WithURL points the client at a different endpoint.
func WithURL(url string) SSURGOOption {
	return func(s *SSURGO) { s.url = url }
}

// WithConfig sets the conversion constants.
func WithConfig(cfg *Config) SSURGOOption {
	return func(s *SSURGO) { s.cfg = cfg }
}

// WithRetry sets the retry count and initial backoff.
func WithRetry(count int, wait time.Duration) SSURGOOption {
	return func(s *SSURGO) {
		s.http.SetRetryCount(count).SetRetryWaitTime(wait)
	}
}

// NewSSURGO returns a client for the public service.
func NewSSURGO(opts ...SSURGOOption) *SSURGO {
	s := &SSURGO{
		http: resty.New().
			SetTimeout(2 * time.Minute).
			SetRetryCount(3).
			SetRetryWaitTime(time.Second).
			SetRetryMaxWaitTime(10 * time.Second).
			SetAllowNonIdempotentRetry(true),
		url: SSURGOURL,
		cfg: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type soapEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	Soap    string   `xml:"xmlns:soap,attr"`
	Body    struct {
		RunQuery struct {
			XMLNS string `xml:"xmlns,attr"`
			Query string `xml:"Query"`
		} `xml:"RunQuery"`
	} `xml:"soap:Body"`
}

func queryEnvelope(query string) ([]byte, error) {
	var env soapEnvelope
	env.Soap = "http://schemas.xmlsoap.org/soap/envelope/"
	env.Body.RunQuery.XMLNS = sdaNamespace
	env.Body.RunQuery.Query = query
	out, err := xml.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// Fetch returns the dominant major component's profile at a point.
func (s *SSURGO) Fetch(ctx context.Context, lon, lat float64) (*Profile, error) {
	logger := ctxlog.FromContext(ctx)
	body, err := queryEnvelope(fmt.Sprintf(horizonQuery, lon, lat))
	if err != nil {
		return nil, err
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/xml; charset=utf-8").
		SetHeader("SOAPAction", sdaSOAPAction).
		SetBody(body).
		Post(s.url)
	if err != nil {
		return nil, fmt.Errorf("ssurgo request at %.4f,%.4f: %w", lon, lat, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ssurgo request at %.4f,%.4f: %s", lon, lat, resp.Status())
	}

	rows, err := parseRows(bytes.NewReader(resp.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("ssurgo response at %.4f,%.4f: %w", lon, lat, err)
	}
	p, err := dominantProfile(rows, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %.4f,%.4f", err, lon, lat)
	}
	logger.Info("Soil profile downloaded.", "component", p.Component, "percent", p.Percent, "horizons", len(p.Horizons))
	return p, nil
}

// parseRows collects every <Table> element of a RunQuery response as a
// column name to text map.
func parseRows(r io.Reader) ([]map[string]string, error) {
	dec := xml.NewDecoder(r)
	var (
		rows []map[string]string
		row  map[string]string
		col  string
		text strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "Table" && row == nil:
				row = map[string]string{}
			case row != nil:
				col = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if col != "" {
				text.Write(t)
			}
		case xml.EndElement:
			switch {
			case row != nil && t.Name.Local == "Table" && col == "":
				rows = append(rows, row)
				row = nil
			case col != "" && t.Name.Local == col:
				row[col] = strings.TrimSpace(text.String())
				col = ""
			}
		}
	}
	return rows, nil
}

func dominantProfile(rows []map[string]string, cfg *Config) (*Profile, error) {
	if len(rows) == 0 {
		return nil, ErrNoSoil
	}
	cokey := rows[0]["cokey"]
	p := &Profile{Component: rows[0]["compname"]}
	p.Percent, _ = strconv.ParseFloat(rows[0]["comppct_r"], 64)

	for _, row := range rows {
		if row["cokey"] != cokey {
			continue
		}
		top, err1 := strconv.ParseFloat(row["hzdept_r"], 64)
		bottom, err2 := strconv.ParseFloat(row["hzdepb_r"], 64)
		if err1 != nil || err2 != nil || bottom <= top {
			continue
		}
		h := Horizon{Top: top * 10, Bottom: bottom * 10, Values: map[string]float64{}}
		for name, c := range columns {
			raw, ok := row[name]
			if !ok || raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			h.Values[c.field] = c.convert(v, cfg)
		}
		p.Horizons = append(p.Horizons, h)
	}
	if len(p.Horizons) == 0 {
		return nil, ErrNoSoil
	}
	return p, nil
}
