package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"github.com/specialistvlad/apsimgo/internal/edit"
	"github.com/specialistvlad/apsimgo/internal/session"
	"github.com/specialistvlad/apsimgo/internal/soil"
	"github.com/specialistvlad/apsimgo/internal/weather"
)

// Period returns the earliest clock start and latest clock end of the
// selected simulations, all of them when simulations is empty.
func Period(root *apsimx.Node, simulations []string) (start, end time.Time, err error) {
	sims, err := apsimx.Simulations(root, simulations...)
	if err != nil {
		return start, end, err
	}
	for _, sim := range sims {
		for _, clock := range apsimx.FindAll(sim, "Clock", "") {
			fields, err := edit.Inspect(clock)
			if err != nil {
				return start, end, err
			}
			if s, ok := fields["Start"].(time.Time); ok && (start.IsZero() || s.Before(start)) {
				start = s
			}
			if en, ok := fields["End"].(time.Time); ok && en.After(end) {
				end = en
			}
		}
	}
	if start.IsZero() || end.IsZero() {
		return start, end, errors.New("no simulation clock with both Start and End")
	}
	return start, end, nil
}

// AttachWeather downloads daily weather at pt for the model's clock period,
// writes it to path as a met file and points every Weather node of the
// selected simulations at it.
func AttachWeather(ctx context.Context, s *session.Session, p weather.Provider, pt weather.Point, simulations []string, path string) error {
	logger := ctxlog.FromContext(ctx)
	start, end, err := Period(s.Root(), simulations)
	if err != nil {
		return err
	}
	series, err := p.Fetch(ctx, pt, start, end)
	if err != nil {
		return err
	}
	if err := weather.SaveMet(path, series); err != nil {
		return err
	}
	if _, err := s.EditModel("Weather", "", simulations, map[string]any{"FileName": path}); err != nil {
		return err
	}
	logger.Info("Weather file attached.", "source", p.Name(), "path", path, "days", len(series.Records))
	return nil
}

// ReplaceSoil fetches the soil at lon/lat and writes it into every Soil
// node of the selected simulations. Layers follow thickness, or each
// soil's current layering when thickness is empty.
func ReplaceSoil(ctx context.Context, s *session.Session, src SoilSource, lon, lat float64, simulations []string, thickness []float64, cfg *soil.Config) error {
	logger := ctxlog.FromContext(ctx)
	profile, err := src.Fetch(ctx, lon, lat)
	if err != nil {
		return err
	}
	sims, err := apsimx.Simulations(s.Root(), simulations...)
	if err != nil {
		return err
	}
	applied := 0
	for _, sim := range sims {
		for _, node := range apsimx.FindAll(sim, "Soil", "") {
			layers := thickness
			if len(layers) == 0 {
				if layers, err = currentThickness(node); err != nil {
					return err
				}
			}
			relayered, err := soil.Relayer(profile, layers, cfg)
			if err != nil {
				return err
			}
			if err := soil.Apply(node, relayered, cfg); err != nil {
				return err
			}
			for key, v := range map[string]float64{"Latitude": lat, "Longitude": lon} {
				if node.Has(key) {
					if err := node.Set(key, v); err != nil {
						return err
					}
				}
			}
			applied++
		}
	}
	if applied == 0 {
		return errors.New("model has no Soil node to replace")
	}
	logger.Info("Soil profile applied.", "component", profile.Component, "soils", applied)
	return nil
}

func currentThickness(node *apsimx.Node) ([]float64, error) {
	physical := apsimx.FindAll(node, "Physical", "")
	if len(physical) == 0 {
		return nil, fmt.Errorf("soil %s has no Physical section", node.FullPath())
	}
	return physical[0].Float64s("Thickness")
}
