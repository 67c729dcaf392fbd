package weather

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MetExtension is the file extension of engine weather files.
const MetExtension = ".met"

// Record is one day of weather.
type Record struct {
	Date time.Time
	Radn float64 // MJ/m^2/day
	MaxT float64 // oC
	MinT float64 // oC
	Rain float64 // mm
}

// Series is a daily weather series for a single point.
type Series struct {
	Latitude  float64
	Longitude float64
	Source    string
	Records   []Record
}

const metLineFmt = "%4d %3d %6.2f %6.1f %6.1f %6.1f\n"

// TavAmp returns the annual average ambient temperature and the annual
// amplitude in mean monthly temperature. The amplitude is averaged over
// complete years; with no complete year it is the spread of the monthly
// means that are available.
func TavAmp(records []Record) (tav, amp float64) {
	type monthKey struct {
		year  int
		month time.Month
	}
	sums := map[monthKey][]float64{}
	var order []monthKey
	for _, r := range records {
		k := monthKey{r.Date.Year(), r.Date.Month()}
		if _, ok := sums[k]; !ok {
			order = append(order, k)
		}
		sums[k] = append(sums[k], (r.MaxT+r.MinT)/2)
	}
	if len(order) == 0 {
		return 0, 0
	}

	monthly := make([]float64, len(order))
	byYear := map[int][]float64{}
	for i, k := range order {
		monthly[i] = stat.Mean(sums[k], nil)
		byYear[k.year] = append(byYear[k.year], monthly[i])
	}
	tav = stat.Mean(monthly, nil)

	var amps []float64
	for _, means := range byYear {
		if len(means) == 12 {
			amps = append(amps, floats.Max(means)-floats.Min(means))
		}
	}
	if len(amps) > 0 {
		amp = stat.Mean(amps, nil)
	} else {
		amp = floats.Max(monthly) - floats.Min(monthly)
	}
	return tav, amp
}

// WriteMet writes s in the engine's met format.
func WriteMet(w io.Writer, s *Series) error {
	if len(s.Records) == 0 {
		return fmt.Errorf("weather series for %.4f,%.4f is empty", s.Longitude, s.Latitude)
	}
	tav, amp := TavAmp(s.Records)

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "[weather.met.weather]")
	if s.Source != "" {
		fmt.Fprintf(bw, "!source: %s\n", s.Source)
	}
	fmt.Fprintf(bw, "latitude = %.4f  (DECIMAL DEGREES)\n", s.Latitude)
	fmt.Fprintf(bw, "longitude = %.4f  (DECIMAL DEGREES)\n", s.Longitude)
	fmt.Fprintf(bw, "tav = %.2f (oC) ! annual average ambient temperature\n", tav)
	fmt.Fprintf(bw, "amp = %.2f (oC) ! annual amplitude in mean monthly temperature\n", amp)
	fmt.Fprintln(bw, "year day radn maxt mint rain")
	fmt.Fprintln(bw, "() () (MJ/m^2) (oC) (oC) (mm)")
	for _, r := range s.Records {
		fmt.Fprintf(bw, metLineFmt, r.Date.Year(), r.Date.YearDay(), r.Radn, r.MaxT, r.MinT, r.Rain)
	}
	return bw.Flush()
}

// SaveMet writes s to path, creating its directory.
func SaveMet(path string, s *Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create met file: %w", err)
	}
	if err := WriteMet(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ParseMet reads a met file. Columns are located by their header names, so
// files with extra columns are accepted.
func ParseMet(r io.Reader) (*Series, error) {
	s := &Series{}
	sc := bufio.NewScanner(r)
	var cols map[string]int
	skipUnits := false
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "", strings.HasPrefix(text, "!"), strings.HasPrefix(text, "["):
			if src, ok := strings.CutPrefix(text, "!source:"); ok {
				s.Source = strings.TrimSpace(src)
			}
			continue
		case strings.Contains(text, "="):
			key, val, _ := strings.Cut(text, "=")
			fields := strings.Fields(val)
			if len(fields) == 0 {
				continue
			}
			v, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				continue
			}
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "latitude":
				s.Latitude = v
			case "longitude":
				s.Longitude = v
			}
			continue
		case cols == nil:
			cols = map[string]int{}
			for i, name := range strings.Fields(strings.ToLower(text)) {
				cols[name] = i
			}
			for _, need := range []string{"year", "day", "radn", "maxt", "mint", "rain"} {
				if _, ok := cols[need]; !ok {
					return nil, fmt.Errorf("met line %d: header lacks column %q", line, need)
				}
			}
			skipUnits = true
			continue
		case skipUnits:
			skipUnits = false
			if strings.HasPrefix(text, "(") {
				continue
			}
		}

		fields := strings.Fields(text)
		get := func(name string) (float64, error) {
			i := cols[name]
			if i >= len(fields) {
				return 0, fmt.Errorf("missing %s", name)
			}
			return strconv.ParseFloat(fields[i], 64)
		}
		var vals [6]float64
		for i, name := range []string{"year", "day", "radn", "maxt", "mint", "rain"} {
			v, err := get(name)
			if err != nil {
				return nil, fmt.Errorf("met line %d: %w", line, err)
			}
			vals[i] = v
		}
		date := time.Date(int(vals[0]), time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(vals[1])-1)
		s.Records = append(s.Records, Record{Date: date, Radn: vals[2], MaxT: vals[3], MinT: vals[4], Rain: vals[5]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if cols == nil {
		return nil, fmt.Errorf("met file has no column header")
	}
	return s, nil
}
