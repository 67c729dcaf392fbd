package app

import (
	"fmt"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
	"github.com/specialistvlad/apsimgo/internal/edit"
	"github.com/specialistvlad/apsimgo/internal/executor"
	"github.com/specialistvlad/apsimgo/internal/session"
	"gopkg.in/yaml.v3"
)

type previewNode struct {
	Path   string         `yaml:"path"`
	Kind   string         `yaml:"kind"`
	Values map[string]any `yaml:"values"`
}

type previewDoc struct {
	Model       string        `yaml:"model"`
	Out         string        `yaml:"out,omitempty"`
	Simulations []string      `yaml:"simulations"`
	Edited      []previewNode `yaml:"edited"`
}

// writePreview prints the edited nodes as YAML instead of running.
func (a *App) writePreview(s *session.Session, edited []*apsimx.Node) error {
	sims, err := s.Simulations()
	if err != nil {
		return err
	}
	doc := previewDoc{Model: s.Source(), Out: a.config.Out, Simulations: sims, Edited: []previewNode{}}
	for _, n := range edited {
		values, err := edit.Inspect(n)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", n.FullPath(), err)
		}
		doc.Edited = append(doc.Edited, previewNode{Path: n.FullPath(), Kind: n.Kind(), Values: values})
	}
	return a.writeYAML(doc)
}

type summaryPoint struct {
	Name     string         `yaml:"name"`
	Dir      string         `yaml:"dir"`
	Status   string         `yaml:"status"`
	Rows     map[string]int `yaml:"rows,omitempty"`
	Duration string         `yaml:"duration"`
	Error    string         `yaml:"error,omitempty"`
}

// writeSummary prints one YAML entry per workflow point.
func (a *App) writeSummary(results []*executor.PointResult) error {
	points := make([]summaryPoint, 0, len(results))
	for _, r := range results {
		sp := summaryPoint{
			Name:     r.Point.Name,
			Dir:      r.Dir,
			Status:   string(executor.StatusSucceeded),
			Rows:     r.Rows,
			Duration: r.Duration.String(),
		}
		if r.Err != nil {
			sp.Status = string(executor.StatusFailed)
			sp.Error = r.Err.Error()
		}
		points = append(points, sp)
	}
	return a.writeYAML(map[string]any{"points": points})
}

func (a *App) writeYAML(v any) error {
	enc := yaml.NewEncoder(a.outW)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return enc.Close()
}
